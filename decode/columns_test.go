package decode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratakv/strata-go/layout"
)

func mustColumn(t *testing.T, name string) layout.ColumnName {
	t.Helper()
	col, err := layout.ParseColumnName(name)
	require.NoError(t, err)
	return col
}

func TestNewColumnMap_Empty(t *testing.T) {
	m := NewColumnMap()
	assert.True(t, m.IsEmpty())
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Columns())
}

func TestColumnMap_WithConfig(t *testing.T) {
	email := mustColumn(t, "info:email")

	m := NewColumnMap().WithConfig(email, NewConfig())

	assert.False(t, m.IsEmpty())
	assert.True(t, m.Contains(email))

	cfg, ok := m.Config(email)
	require.True(t, ok)
	assert.Equal(t, NewConfig(), cfg)

	_, ok = m.Config(mustColumn(t, "info:name"))
	assert.False(t, ok)
}

func TestColumnMap_CopyOnWrite(t *testing.T) {
	email := mustColumn(t, "info:email")
	name := mustColumn(t, "info:name")

	empty := NewColumnMap()
	one := empty.WithConfig(email, NewConfig())
	two := one.WithConfig(name, NewConfig().WithWriterSchema())

	// Each derivation leaves its receiver untouched.
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, 1, one.Len())
	assert.False(t, one.Contains(name))
	assert.Equal(t, 2, two.Len())
}

func TestColumnMap_Overwrite(t *testing.T) {
	email := mustColumn(t, "info:email")

	m := NewColumnMap().WithConfig(email, NewConfig())
	m2 := m.WithConfig(email, NewConfig().WithWriterSchema())

	cfg, ok := m2.Config(email)
	require.True(t, ok)
	assert.True(t, cfg.UsesWriterSchema())
	assert.Equal(t, 1, m2.Len())

	cfg, ok = m.Config(email)
	require.True(t, ok)
	assert.True(t, cfg.UsesTableReaderSchema())
}

func TestColumnMap_Equal(t *testing.T) {
	email := mustColumn(t, "info:email")
	name := mustColumn(t, "info:name")

	a := NewColumnMap()
	b := NewColumnMap()
	assert.True(t, a.Equal(b))

	a = a.WithConfig(email, NewConfig())
	assert.False(t, a.Equal(b))

	b = b.WithConfig(email, NewConfig())
	assert.True(t, a.Equal(b))

	// Different call sequences ending in the same mapping compare equal.
	writer := NewConfig().WithWriterSchema()
	seq1 := NewColumnMap().WithConfig(email, NewConfig()).WithConfig(name, writer)
	seq2 := NewColumnMap().
		WithConfig(name, NewConfig()).
		WithConfig(email, NewConfig()).
		WithConfig(name, writer)
	assert.True(t, seq1.Equal(seq2))
}

func TestColumnMap_HashConsistentWithEqual(t *testing.T) {
	email := mustColumn(t, "info:email")
	name := mustColumn(t, "info:name")

	a := NewColumnMap().WithConfig(email, NewConfig()).WithConfig(name, NewConfig().WithWriterSchema())
	b := NewColumnMap().WithConfig(name, NewConfig().WithWriterSchema()).WithConfig(email, NewConfig())

	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), NewColumnMap().Hash())
}

func TestColumnMap_Columns(t *testing.T) {
	m := NewColumnMap().
		WithConfig(mustColumn(t, "info:name"), NewConfig()).
		WithConfig(mustColumn(t, "info:email"), NewConfig()).
		WithConfig(mustColumn(t, "derived:score"), NewConfig())

	cols := m.Columns()
	require.Len(t, cols, 3)
	assert.Equal(t, "derived:score", cols[0].String())
	assert.Equal(t, "info:email", cols[1].String())
	assert.Equal(t, "info:name", cols[2].String())
}

func TestColumnMap_JSONRoundTrip(t *testing.T) {
	m := NewColumnMap().
		WithConfig(mustColumn(t, "info:email"), NewConfig()).
		WithConfig(mustColumn(t, "info:name"), NewConfig().WithWriterSchema().WithAvroGenericDecoder())

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var reborn ColumnMap
	require.NoError(t, json.Unmarshal(data, &reborn))
	assert.True(t, m.Equal(reborn))

	// Empty maps round-trip too.
	data, err = json.Marshal(NewColumnMap())
	require.NoError(t, err)
	var empty ColumnMap
	require.NoError(t, json.Unmarshal(data, &empty))
	assert.True(t, empty.IsEmpty())
}
