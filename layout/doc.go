// Package layout describes table layouts: the versioned schema of a
// table's columns and its row-key encoding.
//
// A TableLayout is a snapshot. Once validated it is treated as read-only
// and may be shared freely across goroutines; a layout update produces a
// whole new TableLayout rather than mutating one in place.
//
// # Column Names
//
// Columns are identified by a two-part name, family plus optional
// qualifier, with the canonical form "family:qualifier":
//
//	col, err := layout.ParseColumnName("info:email")
//
// # Row-Key Formats
//
// Two versioned row-key format families exist. RowKeyFormat (major version
// 1) covers raw, hashed, and hash-prefixed single-component keys.
// RowKeyFormat2 (major version 2) covers raw and formatted composite keys
// with typed, ordered components. The row-key format of a table never
// changes across layout updates.
//
// # Column Name Translation
//
// ColumnNameTranslator maps layout column names to the compact names used
// by the physical store and back. A translator is derived from exactly one
// layout; never pair a translator with a layout from a different point in
// time. The table package bundles the two into a capsule for this reason.
package layout
