package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratakv/strata-go/errors"
)

const usersLayoutYAML = `
name: users
layout_id: "3"
version: 1.3.0
description: user profiles
keys:
  version: 2.0.0
  encoding: formatted
  salt:
    hash_size: 2
  components:
    - name: login
      type: string
    - name: run
      type: long
      nullable: true
locality_groups:
  - id: 1
    name: default
    max_versions: 3
    families:
      - id: 1
        name: info
        columns:
          - id: 1
            name: email
            reader_schema: '"string"'
            writer_schema: '"string"'
          - id: 2
            name: age
            reader_schema: '"int"'
            writer_schema: '"int"'
      - id: 2
        name: purchases
`

func TestParseYAML(t *testing.T) {
	l, err := ParseYAML([]byte(usersLayoutYAML))
	require.NoError(t, err)

	assert.Equal(t, "users", l.Name)
	assert.Equal(t, "3", l.LayoutID)
	assert.Equal(t, "1.3.0", l.Version)

	keys, ok := l.Keys.(*RowKeyFormat2)
	require.True(t, ok)
	assert.Equal(t, EncodingFormatted, keys.Encoding)
	require.NotNil(t, keys.Salt)
	assert.Equal(t, 2, keys.Salt.HashSize)
	require.Len(t, keys.Components, 2)
	assert.Equal(t, ComponentString, keys.Components[0].Type)
	assert.True(t, keys.Components[1].Nullable)

	require.Len(t, l.LocalityGroups, 1)
	require.Len(t, l.LocalityGroups[0].Families, 2)
	assert.True(t, l.LocalityGroups[0].Families[1].MapType())
}

func TestParseYAML_V1Keys(t *testing.T) {
	doc := `
name: events
layout_id: "1"
version: 1.0.0
keys:
  version: 1.0.0
  encoding: hash_prefix
  hash_size: 2
locality_groups:
  - id: 1
    name: default
    families:
      - id: 1
        name: raw
`
	l, err := ParseYAML([]byte(doc))
	require.NoError(t, err)

	keys, ok := l.Keys.(*RowKeyFormat)
	require.True(t, ok)
	assert.Equal(t, EncodingHashPrefix, keys.Encoding)
	assert.Equal(t, 2, keys.HashSize)
}

func TestParseYAML_Rejections(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind errors.Kind
	}{
		{
			name: "not yaml",
			doc:  "{{nope",
			kind: errors.KindInvalidInput,
		},
		{
			name: "unknown encoding",
			doc: `
name: t
version: 1.0.0
keys: {version: 1.0.0, encoding: sorted}
locality_groups: [{id: 1, name: default, families: [{id: 1, name: f}]}]
`,
			kind: errors.KindUnsupportedFormat,
		},
		{
			name: "unknown component type",
			doc: `
name: t
version: 1.0.0
keys:
  version: 2.0.0
  encoding: formatted
  components: [{name: c, type: uuid}]
locality_groups: [{id: 1, name: default, families: [{id: 1, name: f}]}]
`,
			kind: errors.KindUnsupportedFormat,
		},
		{
			name: "unsupported keys major version",
			doc: `
name: t
version: 1.0.0
keys: {version: 3.0.0, encoding: raw}
locality_groups: [{id: 1, name: default, families: [{id: 1, name: f}]}]
`,
			kind: errors.KindUnsupportedFormat,
		},
		{
			name: "fails layout validation",
			doc: `
name: ""
version: 1.0.0
keys: {version: 1.0.0, encoding: raw}
locality_groups: [{id: 1, name: default, families: [{id: 1, name: f}]}]
`,
			kind: errors.KindInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, tt.kind), "got %v", err)
		})
	}
}
