package keys

import (
	"bytes"

	"github.com/stratakv/strata-go/errors"
	"github.com/stratakv/strata-go/layout"
)

// rawFactory stores the single key component verbatim. Used by version 1
// raw formats and version 2 formats with raw encoding.
type rawFactory struct {
	format layout.KeysFormat
}

func (f *rawFactory) Format() layout.KeysFormat { return f.format }

func (f *rawFactory) FromComponents(components ...any) (EntityID, error) {
	data, err := singleComponent(components)
	if err != nil {
		return nil, err
	}
	key := bytes.Clone(data)
	return &entityID{components: []any{key}, storeKey: key}, nil
}

func (f *rawFactory) FromStoreKey(key []byte) (EntityID, error) {
	if len(key) == 0 {
		return nil, errors.InvalidInput(errors.OpKeys, "empty store key")
	}
	dup := bytes.Clone(key)
	return &entityID{components: []any{dup}, storeKey: dup}, nil
}

// hashFactory stores only the full 8-byte hash of the component. The
// encoding is not invertible, so ids decoded from store keys carry no
// components.
type hashFactory struct {
	format layout.KeysFormat
}

func (f *hashFactory) Format() layout.KeysFormat { return f.format }

func (f *hashFactory) FromComponents(components ...any) (EntityID, error) {
	data, err := singleComponent(components)
	if err != nil {
		return nil, err
	}
	return &entityID{
		components: []any{bytes.Clone(data)},
		storeKey:   hashBytes(data, 8),
	}, nil
}

func (f *hashFactory) FromStoreKey(key []byte) (EntityID, error) {
	if len(key) != 8 {
		return nil, errors.InvalidInput(errors.OpKeys,
			"hashed store key must be 8 bytes, got %d", len(key))
	}
	return &entityID{storeKey: bytes.Clone(key)}, nil
}

// hashPrefixFactory prepends a short hash of the component to the raw
// component, spreading rows across shards while keeping keys invertible.
type hashPrefixFactory struct {
	format   layout.KeysFormat
	hashSize int
}

func (f *hashPrefixFactory) Format() layout.KeysFormat { return f.format }

func (f *hashPrefixFactory) FromComponents(components ...any) (EntityID, error) {
	data, err := singleComponent(components)
	if err != nil {
		return nil, err
	}
	key := make([]byte, 0, f.hashSize+len(data))
	key = append(key, hashBytes(data, f.hashSize)...)
	key = append(key, data...)
	return &entityID{components: []any{bytes.Clone(data)}, storeKey: key}, nil
}

func (f *hashPrefixFactory) FromStoreKey(key []byte) (EntityID, error) {
	if len(key) <= f.hashSize {
		return nil, errors.InvalidInput(errors.OpKeys,
			"store key shorter than its %d-byte hash prefix", f.hashSize)
	}
	data := key[f.hashSize:]
	if !bytes.Equal(key[:f.hashSize], hashBytes(data, f.hashSize)) {
		return nil, errors.InvalidInput(errors.OpKeys, "hash prefix does not match key material")
	}
	dup := bytes.Clone(data)
	return &entityID{components: []any{dup}, storeKey: bytes.Clone(key)}, nil
}

func singleComponent(components []any) ([]byte, error) {
	if len(components) != 1 {
		return nil, errors.InvalidInput(errors.OpKeys,
			"this row-key format takes exactly one component, got %d", len(components))
	}
	data, err := componentBytes(components[0])
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.InvalidInput(errors.OpKeys, "key component may not be empty")
	}
	return data, nil
}
