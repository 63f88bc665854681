package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColumnName(t *testing.T) {
	tests := []struct {
		input        string
		family       string
		qualifier    string
		hasQualifier bool
		canonical    string
	}{
		{input: "info:email", family: "info", qualifier: "email", hasQualifier: true, canonical: "info:email"},
		{input: "info", family: "info", canonical: "info"},
		{input: "info:", family: "info", canonical: "info"},
		{input: "purchases:2024-01-02", family: "purchases", qualifier: "2024-01-02", hasQualifier: true, canonical: "purchases:2024-01-02"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			col, err := ParseColumnName(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.family, col.Family())
			assert.Equal(t, tt.qualifier, col.Qualifier())
			assert.Equal(t, tt.hasQualifier, col.HasQualifier())
			assert.Equal(t, tt.canonical, col.String())
		})
	}
}

func TestParseColumnName_EmptyFamily(t *testing.T) {
	_, err := ParseColumnName("")
	assert.Error(t, err)

	_, err = ParseColumnName(":email")
	assert.Error(t, err)
}

func TestNewColumnName_FamilyWithColon(t *testing.T) {
	_, err := NewColumnName("in:fo", "email")
	assert.Error(t, err)
}

func TestColumnName_Equality(t *testing.T) {
	a, err := NewColumnName("info", "email")
	require.NoError(t, err)
	b, err := ParseColumnName("info:email")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, a.Hash(), b.Hash())

	c, err := ParseColumnName("info:name")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a.Hash(), c.Hash())
}
