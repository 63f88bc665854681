// Package keys encodes and decodes entity ids, the row keys of a table.
//
// A Factory is selected once from the table's versioned row-key format at
// open time and is fixed for the lifetime of the handle; layout updates
// never change row-key encoding. Exactly one of the two known format
// variants must match:
//
//	factory, err := keys.NewFactory(layout.Keys)
//
// An unrecognized variant fails with a typed unsupported_format error, as
// it means the metadata is corrupt or was written by a newer client than
// this one.
//
// Version 1 formats hold a single opaque component, stored raw, as a hash,
// or as a short hash prefix followed by the raw bytes. Version 2 formats
// add typed, ordered components encoded to preserve component-wise
// ordering in the store: strings are NUL-terminated, integers are
// big-endian with the sign bit flipped.
package keys
