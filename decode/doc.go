// Package decode describes how stored cells are decoded: which schema to
// apply and which Avro decoder family to use.
//
// Config is an immutable value with two independent axes. The schema mode
// is a closed three-way choice (table reader schema, writer schema, or a
// caller-specified reader schema); the decoder family picks between the
// Avro specific and generic APIs. Mutators return new values, so a shared
// Config can never change underneath a reader:
//
//	cfg := decode.NewConfig()                  // table reader schema, specific decoder
//	cfg2 := cfg.WithAvroGenericDecoder()       // cfg unchanged
//	cfg3, err := cfg2.WithReaderSchema(schema) // cfg2 unchanged
//
// ColumnMap associates columns with decode configurations for one read
// operation. It is likewise immutable; WithConfig copies on write, so a
// ColumnMap being read by one operation can be extended for another
// without synchronization. Columns without an entry use the caller's
// default Config.
//
// Both types support structural equality, xxHash64 hashing consistent with
// equality, and JSON round-trips that re-validate the construction
// invariant on the way in.
package decode
