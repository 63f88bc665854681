package layout

import (
	"github.com/coreos/go-semver/semver"
	"gopkg.in/yaml.v3"

	"github.com/stratakv/strata-go/errors"
)

// YAML layout descriptors are the human-editable form of a table layout,
// used for table creation and for seeding local metadata stores. The
// persisted, byte-level layout codec lives outside this library.

type layoutDoc struct {
	Name           string     `yaml:"name"`
	LayoutID       string     `yaml:"layout_id"`
	Version        string     `yaml:"version"`
	Description    string     `yaml:"description"`
	Keys           keysDoc    `yaml:"keys"`
	LocalityGroups []groupDoc `yaml:"locality_groups"`
}

type keysDoc struct {
	Version    string         `yaml:"version"`
	Encoding   string         `yaml:"encoding"`
	HashSize   int            `yaml:"hash_size"`
	Salt       *saltDoc       `yaml:"salt"`
	Components []componentDoc `yaml:"components"`
}

type saltDoc struct {
	HashSize int `yaml:"hash_size"`
}

type componentDoc struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
}

type groupDoc struct {
	ID          int         `yaml:"id"`
	Name        string      `yaml:"name"`
	MaxVersions int         `yaml:"max_versions"`
	TTLSeconds  int         `yaml:"ttl_seconds"`
	Families    []familyDoc `yaml:"families"`
}

type familyDoc struct {
	ID          int         `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Columns     []columnDoc `yaml:"columns"`
}

type columnDoc struct {
	ID           int    `yaml:"id"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	ReaderSchema string `yaml:"reader_schema"`
	WriterSchema string `yaml:"writer_schema"`
}

// ParseYAML parses and validates a YAML table-layout descriptor.
func ParseYAML(data []byte) (*TableLayout, error) {
	var doc layoutDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.OpLayout, errors.KindInvalidInput, err, "parse layout descriptor")
	}

	keys, err := parseKeysDoc(doc.Keys)
	if err != nil {
		return nil, err
	}

	l := &TableLayout{
		Name:        doc.Name,
		LayoutID:    doc.LayoutID,
		Version:     doc.Version,
		Description: doc.Description,
		Keys:        keys,
	}
	for _, g := range doc.LocalityGroups {
		lg := LocalityGroup{
			ID:          g.ID,
			Name:        g.Name,
			MaxVersions: g.MaxVersions,
			TTLSeconds:  g.TTLSeconds,
		}
		for _, f := range g.Families {
			fam := Family{
				ID:          f.ID,
				Name:        f.Name,
				Description: f.Description,
			}
			for _, c := range f.Columns {
				fam.Columns = append(fam.Columns, Column{
					ID:           c.ID,
					Name:         c.Name,
					Description:  c.Description,
					ReaderSchema: c.ReaderSchema,
					WriterSchema: c.WriterSchema,
				})
			}
			lg.Families = append(lg.Families, fam)
		}
		l.LocalityGroups = append(l.LocalityGroups, lg)
	}

	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func parseKeysDoc(doc keysDoc) (KeysFormat, error) {
	v, err := semver.NewVersion(doc.Version)
	if err != nil {
		return nil, errors.Wrap(errors.OpKeys, errors.KindUnsupportedFormat, err,
			"invalid row-key format version "+doc.Version)
	}

	encoding, err := parseEncoding(doc.Encoding)
	if err != nil {
		return nil, err
	}

	switch v.Major {
	case 1:
		return &RowKeyFormat{
			Version:  doc.Version,
			Encoding: encoding,
			HashSize: doc.HashSize,
		}, nil
	case 2:
		f := &RowKeyFormat2{
			Version:  doc.Version,
			Encoding: encoding,
		}
		if doc.Salt != nil {
			f.Salt = &HashSalt{HashSize: doc.Salt.HashSize}
		}
		for _, c := range doc.Components {
			ct, err := parseComponentType(c.Type)
			if err != nil {
				return nil, err
			}
			f.Components = append(f.Components, KeyComponent{
				Name:     c.Name,
				Type:     ct,
				Nullable: c.Nullable,
			})
		}
		return f, nil
	default:
		return nil, errors.UnsupportedFormat(errors.OpKeys,
			"row-key format version %s is not supported by this client", doc.Version)
	}
}

func parseEncoding(s string) (RowKeyEncoding, error) {
	switch s {
	case "raw":
		return EncodingRaw, nil
	case "hash":
		return EncodingHash, nil
	case "hash_prefix":
		return EncodingHashPrefix, nil
	case "formatted":
		return EncodingFormatted, nil
	default:
		return 0, errors.UnsupportedFormat(errors.OpKeys, "unknown row-key encoding %q", s)
	}
}

func parseComponentType(s string) (ComponentType, error) {
	switch s {
	case "string":
		return ComponentString, nil
	case "integer":
		return ComponentInteger, nil
	case "long":
		return ComponentLong, nil
	default:
		return 0, errors.UnsupportedFormat(errors.OpKeys, "unknown key component type %q", s)
	}
}
