package keys

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/stratakv/strata-go/errors"
	"github.com/stratakv/strata-go/layout"
)

// formattedFactory encodes typed, ordered components. The encoding
// preserves component-wise ordering of the logical key in the byte order
// of the store key: strings are NUL-terminated, integers are big-endian
// with the sign bit flipped. An optional salt prefix hashes the first
// component to spread rows across shards.
type formattedFactory struct {
	format *layout.RowKeyFormat2
}

func (f *formattedFactory) Format() layout.KeysFormat { return f.format }

func (f *formattedFactory) FromComponents(components ...any) (EntityID, error) {
	specs := f.format.Components
	if len(components) > len(specs) {
		return nil, errors.InvalidInput(errors.OpKeys,
			"row-key format takes at most %d components, got %d", len(specs), len(components))
	}

	encoded := make([][]byte, 0, len(components))
	kept := make([]any, 0, len(components))
	for i, spec := range specs {
		if i >= len(components) || components[i] == nil {
			// Absent components must be a trailing run of nullables.
			for j := i; j < len(components); j++ {
				if components[j] != nil {
					return nil, errors.InvalidInput(errors.OpKeys,
						"component %q is set after an absent component", specs[j].Name)
				}
			}
			if !spec.Nullable {
				return nil, errors.InvalidInput(errors.OpKeys,
					"component %q is required", spec.Name)
			}
			break
		}

		data, value, err := encodeComponent(spec, components[i])
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, data)
		kept = append(kept, value)
	}

	var key []byte
	if salt := f.format.Salt; salt != nil {
		key = append(key, hashBytes(encoded[0], salt.HashSize)...)
	}
	for _, data := range encoded {
		key = append(key, data...)
	}

	return &entityID{components: kept, storeKey: key}, nil
}

func (f *formattedFactory) FromStoreKey(key []byte) (EntityID, error) {
	rest := key
	if salt := f.format.Salt; salt != nil {
		if len(rest) < salt.HashSize {
			return nil, errors.InvalidInput(errors.OpKeys,
				"store key shorter than its %d-byte salt", salt.HashSize)
		}
		rest = rest[salt.HashSize:]
	}

	var components []any
	var firstComponent []byte
	for _, spec := range f.format.Components {
		if len(rest) == 0 {
			if !spec.Nullable {
				return nil, errors.InvalidInput(errors.OpKeys,
					"store key ends before required component %q", spec.Name)
			}
			break
		}
		value, data, remainder, err := decodeComponent(spec, rest)
		if err != nil {
			return nil, err
		}
		if firstComponent == nil {
			firstComponent = data
		}
		components = append(components, value)
		rest = remainder
	}
	if len(rest) != 0 {
		return nil, errors.InvalidInput(errors.OpKeys,
			"%d trailing bytes after the last key component", len(rest))
	}

	if salt := f.format.Salt; salt != nil {
		if !bytes.Equal(key[:salt.HashSize], hashBytes(firstComponent, salt.HashSize)) {
			return nil, errors.InvalidInput(errors.OpKeys, "salt does not match key material")
		}
	}

	return &entityID{components: components, storeKey: bytes.Clone(key)}, nil
}

// encodeComponent returns the encoded bytes and the normalized component
// value (string, int32, or int64).
func encodeComponent(spec layout.KeyComponent, c any) ([]byte, any, error) {
	switch spec.Type {
	case layout.ComponentString:
		s, ok := c.(string)
		if !ok {
			return nil, nil, errors.InvalidInput(errors.OpKeys,
				"component %q must be a string, got %T", spec.Name, c)
		}
		if bytes.IndexByte([]byte(s), 0) >= 0 {
			return nil, nil, errors.InvalidInput(errors.OpKeys,
				"component %q may not contain NUL bytes", spec.Name)
		}
		data := make([]byte, 0, len(s)+1)
		data = append(data, s...)
		data = append(data, 0)
		return data, s, nil

	case layout.ComponentInteger:
		var v int32
		switch n := c.(type) {
		case int32:
			v = n
		case int:
			if n < math.MinInt32 || n > math.MaxInt32 {
				return nil, nil, errors.InvalidInput(errors.OpKeys,
					"component %q overflows a 32-bit integer", spec.Name)
			}
			v = int32(n)
		default:
			return nil, nil, errors.InvalidInput(errors.OpKeys,
				"component %q must be an integer, got %T", spec.Name, c)
		}
		var data [4]byte
		// Flipping the sign bit makes the big-endian byte order match the
		// signed numeric order.
		binary.BigEndian.PutUint32(data[:], uint32(v)^(1<<31))
		return data[:], v, nil

	case layout.ComponentLong:
		var v int64
		switch n := c.(type) {
		case int64:
			v = n
		case int:
			v = int64(n)
		default:
			return nil, nil, errors.InvalidInput(errors.OpKeys,
				"component %q must be a long, got %T", spec.Name, c)
		}
		var data [8]byte
		binary.BigEndian.PutUint64(data[:], uint64(v)^(1<<63))
		return data[:], v, nil

	default:
		return nil, nil, errors.UnsupportedFormat(errors.OpKeys,
			"component %q has unknown type", spec.Name)
	}
}

// decodeComponent returns the component value, its encoded bytes, and the
// unconsumed remainder of the key.
func decodeComponent(spec layout.KeyComponent, key []byte) (any, []byte, []byte, error) {
	switch spec.Type {
	case layout.ComponentString:
		end := bytes.IndexByte(key, 0)
		if end < 0 {
			return nil, nil, nil, errors.InvalidInput(errors.OpKeys,
				"unterminated string component %q", spec.Name)
		}
		return string(key[:end]), key[:end+1], key[end+1:], nil

	case layout.ComponentInteger:
		if len(key) < 4 {
			return nil, nil, nil, errors.InvalidInput(errors.OpKeys,
				"truncated integer component %q", spec.Name)
		}
		v := int32(binary.BigEndian.Uint32(key[:4]) ^ (1 << 31))
		return v, key[:4], key[4:], nil

	case layout.ComponentLong:
		if len(key) < 8 {
			return nil, nil, nil, errors.InvalidInput(errors.OpKeys,
				"truncated long component %q", spec.Name)
		}
		v := int64(binary.BigEndian.Uint64(key[:8]) ^ (1 << 63))
		return v, key[:8], key[8:], nil

	default:
		return nil, nil, nil, errors.UnsupportedFormat(errors.OpKeys,
			"component %q has unknown type", spec.Name)
	}
}
