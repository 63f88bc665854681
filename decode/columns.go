package decode

import (
	"encoding/json"
	"maps"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/stratakv/strata-go/errors"
	"github.com/stratakv/strata-go/layout"
)

// ColumnMap is an immutable mapping from columns to decode configurations,
// keyed by the canonical column name. Columns without an entry decode with
// the caller's default Config.
//
// WithConfig never mutates the receiver, even internally. The receiver may
// be concurrently read by another operation while a derived value is being
// built, so copy-on-write here is a correctness requirement rather than an
// optimization.
type ColumnMap struct {
	configs map[string]Config
}

// NewColumnMap returns an empty mapping.
func NewColumnMap() ColumnMap {
	return ColumnMap{}
}

// WithConfig returns a new mapping equal to the receiver except that
// column now maps to cfg.
func (m ColumnMap) WithConfig(column layout.ColumnName, cfg Config) ColumnMap {
	next := make(map[string]Config, len(m.configs)+1)
	maps.Copy(next, m.configs)
	next[column.String()] = cfg
	return ColumnMap{configs: next}
}

// IsEmpty reports whether no column has a configuration.
func (m ColumnMap) IsEmpty() bool {
	return len(m.configs) == 0
}

// Len returns the number of configured columns.
func (m ColumnMap) Len() int {
	return len(m.configs)
}

// Contains reports whether the column has a configuration.
func (m ColumnMap) Contains(column layout.ColumnName) bool {
	_, ok := m.configs[column.String()]
	return ok
}

// Config returns the configuration for a column and whether one exists.
func (m ColumnMap) Config(column layout.ColumnName) (Config, bool) {
	cfg, ok := m.configs[column.String()]
	return cfg, ok
}

// Columns returns the configured column names, sorted by canonical form.
func (m ColumnMap) Columns() []layout.ColumnName {
	names := make([]layout.ColumnName, 0, len(m.configs))
	for key := range m.configs {
		name, err := layout.ParseColumnName(key)
		if err != nil {
			// Keys only enter through ColumnName.String() or a validated
			// unmarshal, so they always re-parse.
			continue
		}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return names[i].String() < names[j].String()
	})
	return names
}

// Equal reports structural map equality with another ColumnMap. Two maps
// built through different call sequences are equal when they end in the
// same column-to-config mapping.
func (m ColumnMap) Equal(other ColumnMap) bool {
	return maps.Equal(m.configs, other.configs)
}

// Hash returns an order-independent xxHash64 of the mapping, consistent
// with Equal.
func (m ColumnMap) Hash() uint64 {
	var sum uint64
	for key, cfg := range m.configs {
		var d xxhash.Digest
		d.Reset()
		_, _ = d.WriteString(key)
		_, _ = d.Write([]byte{0})
		_, _ = d.Write([]byte{byte(cfg.SchemaMode()), byte(cfg.DecoderFamily())})
		_, _ = d.WriteString(cfg.ReaderSchemaJSON())
		sum ^= d.Sum64()
	}
	return sum
}

// MarshalJSON implements json.Marshaler.
func (m ColumnMap) MarshalJSON() ([]byte, error) {
	if m.configs == nil {
		return json.Marshal(map[string]Config{})
	}
	return json.Marshal(m.configs)
}

// UnmarshalJSON implements json.Unmarshaler. Column names and decode
// configurations are both re-validated.
func (m *ColumnMap) UnmarshalJSON(data []byte) error {
	var configs map[string]Config
	if err := json.Unmarshal(data, &configs); err != nil {
		return errors.Wrap(errors.OpDecode, errors.KindInvalidInput, err, "parse column decode configs")
	}
	for key := range configs {
		if _, err := layout.ParseColumnName(key); err != nil {
			return err
		}
	}
	m.configs = configs
	return nil
}
