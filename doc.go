// Package strata is the client-side schema-resolution and table-handle
// lifecycle core for StrataKV, a sharded, versioned key-value store.
//
// The library answers two coupled questions for code reading and writing
// table rows: which schema and decoder family to apply to a stored cell,
// and how a long-lived table handle keeps a consistent view of its layout
// while the layout can be updated concurrently.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	strata/     Root package with collaborator interfaces and logging
//	├── layout/ Table layouts, column names, row-key formats, translators
//	├── decode/ Immutable per-column cell decode configuration
//	├── keys/   Entity-id factories for versioned row-key formats
//	├── table/  Retain-counted table handles and layout capsules
//	├── meta/   In-memory metadata store and client for tests and embedding
//	└── errors/ Structured error types for debugging
//
// # Quick Start
//
// Open a table, read its layout, and release the handle:
//
//	client := meta.NewClient("prod", store, conns)
//	defer client.Release()
//
//	tbl, err := table.Open(client, "users")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tbl.Release()
//
//	capsule := tbl.Capsule()
//	fmt.Println(capsule.Layout().Name)
//
// # Layout Capsules
//
// A Capsule bundles a layout snapshot with its derived column-name
// translator. Components that need both must read them from one capsule
// rather than calling the handle twice, which could observe a torn state
// across a concurrent layout update. Capsules are immutable; the handle
// publishes a whole new capsule on every layout update.
//
// # Decode Configuration
//
// decode.Config and decode.ColumnMap are immutable values. Mutators return
// new instances, so configurations can be shared across goroutines without
// locking:
//
//	cfg, err := decode.NewConfig().WithReaderSchema(schema)
//	cols := decode.NewColumnMap().WithConfig(column, cfg)
//
// # Thread Safety
//
// Table handles are safe for concurrent use. Every borrowed use of a handle
// must be bracketed by Retain and Release; the release that drives the
// retain count to zero tears the handle down exactly once.
package strata
