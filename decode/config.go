package decode

import (
	"encoding/json"

	"github.com/cespare/xxhash/v2"
	"github.com/hamba/avro/v2"

	"github.com/stratakv/strata-go/errors"
)

// SchemaMode says where the schema used to decode a cell comes from.
type SchemaMode uint8

const (
	// TableReaderSchema decodes with the reader schema declared by the
	// table layout for the column.
	TableReaderSchema SchemaMode = 0x1
	// WriterSchema decodes with the schema the cell was written with.
	WriterSchema SchemaMode = 0x2
	// SpecifiedReaderSchema decodes with a reader schema supplied by the
	// caller on the Config itself.
	SpecifiedReaderSchema SchemaMode = 0x3
)

func (m SchemaMode) String() string {
	switch m {
	case TableReaderSchema:
		return "table_reader_schema"
	case WriterSchema:
		return "writer_schema"
	case SpecifiedReaderSchema:
		return "specified_reader_schema"
	default:
		return "unknown"
	}
}

// DecoderFamily picks the Avro decoder API used to materialize cells.
type DecoderFamily uint8

const (
	// AvroSpecific decodes into generated concrete types.
	AvroSpecific DecoderFamily = 0x1
	// AvroGeneric decodes into generic schema-driven values.
	AvroGeneric DecoderFamily = 0x2
)

func (f DecoderFamily) String() string {
	switch f {
	case AvroSpecific:
		return "avro_specific"
	case AvroGeneric:
		return "avro_generic"
	default:
		return "unknown"
	}
}

// Config is an immutable description of how to decode one column's cells:
// the schema mode and the decoder family, plus the reader schema text when
// the mode calls for one.
//
// The zero value is not valid; obtain instances from NewConfig or
// MakeConfig. Config is comparable: two values are equal iff schema mode,
// decoder family, and reader schema text all match.
type Config struct {
	mode             SchemaMode
	family           DecoderFamily
	readerSchemaJSON string
}

// NewConfig returns the default configuration: decode with the table
// reader schema using the Avro specific decoder.
func NewConfig() Config {
	return Config{mode: TableReaderSchema, family: AvroSpecific}
}

// MakeConfig builds a Config from explicit parts, enforcing the
// construction invariant: a reader schema is present iff the schema mode
// is SpecifiedReaderSchema. Keeping this a closed three-way choice guards
// against ad-hoc boolean flags for "where does the decode schema come
// from".
func MakeConfig(mode SchemaMode, family DecoderFamily, readerSchemaJSON string) (Config, error) {
	switch mode {
	case TableReaderSchema, WriterSchema, SpecifiedReaderSchema:
	default:
		return Config{}, errors.InvalidConfig(errors.OpDecode, "unknown schema mode %d", mode)
	}
	switch family {
	case AvroSpecific, AvroGeneric:
	default:
		return Config{}, errors.InvalidConfig(errors.OpDecode, "unknown decoder family %d", family)
	}
	if mode == SpecifiedReaderSchema && readerSchemaJSON == "" {
		return Config{}, errors.InvalidConfig(errors.OpDecode,
			"schema mode %s requires a reader schema", mode)
	}
	if mode != SpecifiedReaderSchema && readerSchemaJSON != "" {
		return Config{}, errors.InvalidConfig(errors.OpDecode,
			"a reader schema was supplied but schema mode is %s", mode)
	}
	return Config{mode: mode, family: family, readerSchemaJSON: readerSchemaJSON}, nil
}

// WithReaderSchema returns a copy configured to decode with the given
// reader schema. The schema is stored by its canonical text. Fails with an
// invalid input error when schema is nil; use WithWriterSchema or
// WithTableReaderSchema to decode without a specified schema.
func (c Config) WithReaderSchema(schema avro.Schema) (Config, error) {
	if schema == nil {
		return Config{}, errors.InvalidInput(errors.OpDecode,
			"reader schema is nil; call WithWriterSchema or WithTableReaderSchema to use those schemas")
	}
	return Config{mode: SpecifiedReaderSchema, family: c.family, readerSchemaJSON: schema.String()}, nil
}

// WithWriterSchema returns a copy configured to decode with the writer
// schema.
func (c Config) WithWriterSchema() Config {
	return Config{mode: WriterSchema, family: c.family}
}

// WithTableReaderSchema returns a copy configured to decode with the table
// layout's reader schema.
func (c Config) WithTableReaderSchema() Config {
	return Config{mode: TableReaderSchema, family: c.family}
}

// WithAvroSpecificDecoder returns a copy using the Avro specific decoder.
func (c Config) WithAvroSpecificDecoder() Config {
	return Config{mode: c.mode, family: AvroSpecific, readerSchemaJSON: c.readerSchemaJSON}
}

// WithAvroGenericDecoder returns a copy using the Avro generic decoder.
func (c Config) WithAvroGenericDecoder() Config {
	return Config{mode: c.mode, family: AvroGeneric, readerSchemaJSON: c.readerSchemaJSON}
}

// SchemaMode returns the configured schema mode.
func (c Config) SchemaMode() SchemaMode {
	return c.mode
}

// DecoderFamily returns the configured decoder family.
func (c Config) DecoderFamily() DecoderFamily {
	return c.family
}

// UsesTableReaderSchema reports whether cells decode with the table
// layout's reader schema.
func (c Config) UsesTableReaderSchema() bool {
	return c.mode == TableReaderSchema
}

// UsesWriterSchema reports whether cells decode with their writer schema.
func (c Config) UsesWriterSchema() bool {
	return c.mode == WriterSchema
}

// UsesReaderSchema reports whether a specified reader schema is
// configured.
func (c Config) UsesReaderSchema() bool {
	return c.mode == SpecifiedReaderSchema
}

// UsesAvroSpecificDecoder reports whether the specific decoder is
// configured.
func (c Config) UsesAvroSpecificDecoder() bool {
	return c.family == AvroSpecific
}

// UsesAvroGenericDecoder reports whether the generic decoder is
// configured.
func (c Config) UsesAvroGenericDecoder() bool {
	return c.family == AvroGeneric
}

// ReaderSchemaJSON returns the stored reader schema text, empty when no
// specified reader schema is configured.
func (c Config) ReaderSchemaJSON() string {
	return c.readerSchemaJSON
}

// ReaderSchema parses and returns the specified reader schema, or nil when
// none is configured.
func (c Config) ReaderSchema() (avro.Schema, error) {
	if c.readerSchemaJSON == "" {
		return nil, nil
	}
	schema, err := avro.Parse(c.readerSchemaJSON)
	if err != nil {
		return nil, errors.Wrap(errors.OpDecode, errors.KindInvalidConfig, err, "parse stored reader schema")
	}
	return schema, nil
}

// Hash returns an xxHash64 of the configuration, consistent with equality.
func (c Config) Hash() uint64 {
	var d xxhash.Digest
	d.Reset()
	_, _ = d.Write([]byte{byte(c.mode), byte(c.family)})
	_, _ = d.WriteString(c.readerSchemaJSON)
	return d.Sum64()
}

type configJSON struct {
	SchemaMode    string `json:"schema_mode"`
	DecoderFamily string `json:"decoder_family"`
	ReaderSchema  string `json:"reader_schema,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(configJSON{
		SchemaMode:    c.mode.String(),
		DecoderFamily: c.family.String(),
		ReaderSchema:  c.readerSchemaJSON,
	})
}

// UnmarshalJSON implements json.Unmarshaler, re-validating the
// construction invariant.
func (c *Config) UnmarshalJSON(data []byte) error {
	var doc configJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(errors.OpDecode, errors.KindInvalidInput, err, "parse decode config")
	}

	mode, err := parseSchemaMode(doc.SchemaMode)
	if err != nil {
		return err
	}
	family, err := parseDecoderFamily(doc.DecoderFamily)
	if err != nil {
		return err
	}

	cfg, err := MakeConfig(mode, family, doc.ReaderSchema)
	if err != nil {
		return err
	}
	*c = cfg
	return nil
}

func parseSchemaMode(s string) (SchemaMode, error) {
	switch s {
	case "table_reader_schema":
		return TableReaderSchema, nil
	case "writer_schema":
		return WriterSchema, nil
	case "specified_reader_schema":
		return SpecifiedReaderSchema, nil
	default:
		return 0, errors.InvalidConfig(errors.OpDecode, "unknown schema mode %q", s)
	}
}

func parseDecoderFamily(s string) (DecoderFamily, error) {
	switch s {
	case "avro_specific":
		return AvroSpecific, nil
	case "avro_generic":
		return AvroGeneric, nil
	default:
		return 0, errors.InvalidConfig(errors.OpDecode, "unknown decoder family %q", s)
	}
}
