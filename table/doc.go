// Package table provides retain-counted table handles and the layout
// capsules that give their users a consistent schema view.
//
// # Handle Lifecycle
//
// Open resolves the table's layout from the client's metadata store,
// derives the column-name translator and entity-id factory, opens the
// physical connection, and returns an open handle with a retain count of
// one. Every additional component borrowing the handle brackets its use
// with Retain and Release:
//
//	tbl, err := table.Open(client, "users")
//	...
//	borrowed, err := tbl.Retain()
//	defer borrowed.Release()
//
// The release that drives the count to zero tears the handle down exactly
// once: the connection is closed and the client released. A closed handle
// cannot be reopened; open a new one.
//
// # Capsules
//
// The handle owns the current Capsule, an immutable bundle of the layout
// snapshot and its derived column-name translator. Components needing a
// consistent view read the capsule once per logical operation:
//
//	capsule := tbl.Capsule()
//	store, err := capsule.Translator().ToStore(column)
//
// Do not cache a capsule across operations; a layout update may have
// published a materially newer one. A captured capsule stays valid and
// immutable after a swap, so in-flight operations are never torn.
//
// # Layout Updates
//
// UpdateLayout derives a fresh translator from the new layout and swaps
// the capsule pointer atomically. It never changes the row-key encoding,
// never touches the retain counter, and does not block concurrent
// retain/release.
package table
