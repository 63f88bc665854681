package keys

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/stratakv/strata-go/errors"
	"github.com/stratakv/strata-go/layout"
)

// defaultHashSize is the hash-prefix width used when a version 1 format
// leaves HashSize unset.
const defaultHashSize = 2

// EntityID is a row identity: the logical components supplied by the
// caller and the store key they encode to. Immutable.
type EntityID interface {
	// StoreKey returns the encoded row key. Callers must not modify the
	// returned slice.
	StoreKey() []byte

	// Components returns the logical key components, or nil when the
	// encoding is not invertible (hashed keys read back from the store).
	Components() []any
}

// Factory builds entity ids for one row-key format.
type Factory interface {
	// FromComponents encodes caller-supplied components into an entity id.
	FromComponents(components ...any) (EntityID, error)

	// FromStoreKey decodes a store row key back into an entity id.
	FromStoreKey(key []byte) (EntityID, error)

	// Format returns the row-key format this factory encodes for.
	Format() layout.KeysFormat
}

// NewFactory selects the entity-id factory for a row-key format
// descriptor. Exactly one of the two known variants must match; any other
// descriptor fails with an unsupported_format error, since it signals
// metadata corruption or a client/version mismatch rather than a
// retryable condition.
func NewFactory(format layout.KeysFormat) (Factory, error) {
	switch f := format.(type) {
	case *layout.RowKeyFormat:
		if err := f.Validate(); err != nil {
			return nil, err
		}
		size := f.HashSize
		if size == 0 {
			size = defaultHashSize
		}
		switch f.Encoding {
		case layout.EncodingRaw:
			return &rawFactory{format: f}, nil
		case layout.EncodingHash:
			return &hashFactory{format: f}, nil
		default:
			return &hashPrefixFactory{format: f, hashSize: size}, nil
		}
	case *layout.RowKeyFormat2:
		if err := f.Validate(); err != nil {
			return nil, err
		}
		if f.Encoding == layout.EncodingRaw {
			return &rawFactory{format: f}, nil
		}
		return &formattedFactory{format: f}, nil
	default:
		return nil, errors.UnsupportedFormat(errors.OpKeys,
			"unrecognized row-key format variant %T", format)
	}
}

type entityID struct {
	components []any
	storeKey   []byte
}

func (e *entityID) StoreKey() []byte {
	return e.storeKey
}

func (e *entityID) Components() []any {
	return e.components
}

// hashBytes returns the first size bytes of the big-endian xxHash64 of
// data.
func hashBytes(data []byte, size int) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], xxhash.Sum64(data))
	return buf[:size]
}

// componentBytes coerces a single opaque key component to bytes.
func componentBytes(c any) ([]byte, error) {
	switch v := c.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.InvalidInput(errors.OpKeys,
			"key component must be string or []byte, got %T", c)
	}
}
