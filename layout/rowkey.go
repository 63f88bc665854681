package layout

import (
	"github.com/coreos/go-semver/semver"

	"github.com/stratakv/strata-go/errors"
)

// RowKeyEncoding selects how entity ids are encoded into store row keys.
type RowKeyEncoding uint8

const (
	// EncodingRaw stores the single key component verbatim.
	EncodingRaw RowKeyEncoding = 0x1
	// EncodingHash stores only a hash of the key component.
	EncodingHash RowKeyEncoding = 0x2
	// EncodingHashPrefix prepends a short hash to the raw component to
	// spread rows across shards while keeping keys invertible.
	EncodingHashPrefix RowKeyEncoding = 0x3
	// EncodingFormatted encodes typed, ordered components with an optional
	// salt prefix. Only valid with RowKeyFormat2.
	EncodingFormatted RowKeyEncoding = 0x4
)

func (e RowKeyEncoding) String() string {
	switch e {
	case EncodingRaw:
		return "raw"
	case EncodingHash:
		return "hash"
	case EncodingHashPrefix:
		return "hash_prefix"
	case EncodingFormatted:
		return "formatted"
	default:
		return "unknown"
	}
}

// ComponentType is the type of one component of a formatted row key.
type ComponentType uint8

const (
	ComponentString  ComponentType = 0x1 // UTF-8 string, no NUL bytes
	ComponentInteger ComponentType = 0x2 // signed 32-bit integer
	ComponentLong    ComponentType = 0x3 // signed 64-bit integer
)

func (t ComponentType) String() string {
	switch t {
	case ComponentString:
		return "string"
	case ComponentInteger:
		return "integer"
	case ComponentLong:
		return "long"
	default:
		return "unknown"
	}
}

// KeyComponent is one typed component of a formatted row key.
type KeyComponent struct {
	Name     string
	Type     ComponentType
	Nullable bool
}

// HashSalt configures the hash prefix of a formatted row key.
type HashSalt struct {
	// HashSize is the number of hash bytes prepended to the key, 1 to 8.
	HashSize int
}

// KeysFormat is the versioned row-key format descriptor of a table.
// Exactly two variants exist: RowKeyFormat (major version 1) and
// RowKeyFormat2 (major version 2). The set is sealed; an unrecognized
// variant is a client/version mismatch, not a recoverable condition.
type KeysFormat interface {
	// FormatVersion returns the semver version string of the format.
	FormatVersion() string

	// Validate checks the descriptor for internal consistency.
	Validate() error

	sealedKeysFormat()
}

// RowKeyFormat is the major-version-1 row-key format: a single string
// component stored raw, hashed, or hash-prefixed.
type RowKeyFormat struct {
	// Version is the format version, major version 1.
	Version string
	// Encoding is one of EncodingRaw, EncodingHash, EncodingHashPrefix.
	Encoding RowKeyEncoding
	// HashSize is the number of hash bytes used by the hash and
	// hash-prefix encodings, 1 to 8. Defaults to 2 when zero.
	HashSize int
}

// FormatVersion implements KeysFormat.
func (f *RowKeyFormat) FormatVersion() string { return f.Version }

func (*RowKeyFormat) sealedKeysFormat() {}

// Validate implements KeysFormat.
func (f *RowKeyFormat) Validate() error {
	v, err := semver.NewVersion(f.Version)
	if err != nil {
		return errors.Wrap(errors.OpKeys, errors.KindUnsupportedFormat, err,
			"invalid row-key format version "+f.Version)
	}
	if v.Major != 1 {
		return errors.UnsupportedFormat(errors.OpKeys,
			"row-key format version %s is not a version 1 format", f.Version)
	}
	switch f.Encoding {
	case EncodingRaw, EncodingHash, EncodingHashPrefix:
	default:
		return errors.UnsupportedFormat(errors.OpKeys,
			"encoding %s is not valid for a version 1 row-key format", f.Encoding)
	}
	if f.HashSize < 0 || f.HashSize > 8 {
		return errors.InvalidInput(errors.OpKeys, "hash size %d out of range [0, 8]", f.HashSize)
	}
	return nil
}

// RowKeyFormat2 is the major-version-2 row-key format: raw single-component
// keys or formatted composite keys with typed components and an optional
// salt prefix.
type RowKeyFormat2 struct {
	// Version is the format version, major version 2.
	Version string
	// Encoding is EncodingRaw or EncodingFormatted.
	Encoding RowKeyEncoding
	// Salt, if set, prepends a hash of the first component to the key.
	// Only valid with EncodingFormatted.
	Salt *HashSalt
	// Components are the ordered, typed key components. Required for
	// EncodingFormatted. Nullable components must form a trailing run.
	Components []KeyComponent
}

// FormatVersion implements KeysFormat.
func (f *RowKeyFormat2) FormatVersion() string { return f.Version }

func (*RowKeyFormat2) sealedKeysFormat() {}

// Validate implements KeysFormat.
func (f *RowKeyFormat2) Validate() error {
	v, err := semver.NewVersion(f.Version)
	if err != nil {
		return errors.Wrap(errors.OpKeys, errors.KindUnsupportedFormat, err,
			"invalid row-key format version "+f.Version)
	}
	if v.Major != 2 {
		return errors.UnsupportedFormat(errors.OpKeys,
			"row-key format version %s is not a version 2 format", f.Version)
	}

	switch f.Encoding {
	case EncodingRaw:
		if f.Salt != nil || len(f.Components) > 0 {
			return errors.InvalidInput(errors.OpKeys,
				"raw encoding takes neither salt nor components")
		}
		return nil
	case EncodingFormatted:
	default:
		return errors.UnsupportedFormat(errors.OpKeys,
			"encoding %s is not valid for a version 2 row-key format", f.Encoding)
	}

	if len(f.Components) == 0 {
		return errors.InvalidInput(errors.OpKeys, "formatted encoding requires at least one component")
	}
	if f.Salt != nil && (f.Salt.HashSize < 1 || f.Salt.HashSize > 8) {
		return errors.InvalidInput(errors.OpKeys, "salt hash size %d out of range [1, 8]", f.Salt.HashSize)
	}

	seen := make(map[string]bool, len(f.Components))
	nullableSeen := false
	for i, c := range f.Components {
		if c.Name == "" {
			return errors.InvalidInput(errors.OpKeys, "component %d has no name", i)
		}
		if seen[c.Name] {
			return errors.InvalidInput(errors.OpKeys, "duplicate component name %q", c.Name)
		}
		seen[c.Name] = true

		switch c.Type {
		case ComponentString, ComponentInteger, ComponentLong:
		default:
			return errors.UnsupportedFormat(errors.OpKeys, "component %q has unknown type", c.Name)
		}

		if c.Nullable {
			nullableSeen = true
		} else if nullableSeen {
			return errors.InvalidInput(errors.OpKeys,
				"non-nullable component %q follows a nullable component", c.Name)
		}
	}
	if f.Components[0].Nullable {
		return errors.InvalidInput(errors.OpKeys, "the first key component may not be nullable")
	}

	return nil
}

// SameFormatVersion reports whether two key formats have the same format
// version. Layout updates must preserve the row-key format version, since
// row-key encoding is fixed for the lifetime of a table handle.
func SameFormatVersion(a, b KeysFormat) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.FormatVersion() == b.FormatVersion()
}
