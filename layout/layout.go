package layout

import (
	"github.com/coreos/go-semver/semver"
	"github.com/hamba/avro/v2"

	"github.com/stratakv/strata-go/errors"
)

// Layout versions this client can interpret. A layout outside this range
// was written by an incompatible client or server generation.
var (
	MinSupportedVersion = semver.New("1.0.0")
	MaxSupportedVersion = semver.New("1.3.0")
)

// CheckVersionSupported verifies that a layout version falls inside the
// range this client supports.
func CheckVersionSupported(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrap(errors.OpLayout, errors.KindUnsupportedFormat, err,
			"invalid layout version "+version)
	}
	if v.LessThan(*MinSupportedVersion) || MaxSupportedVersion.LessThan(*v) {
		return errors.UnsupportedFormat(errors.OpLayout,
			"layout version %s outside supported range [%s, %s]",
			version, MinSupportedVersion, MaxSupportedVersion)
	}
	return nil
}

// Column is one named column of a group-type family. Reader and writer
// schemas are Avro schema JSON; the reader schema is what the table
// declares cells should be decoded with by default.
type Column struct {
	ID           int
	Name         string
	Description  string
	ReaderSchema string
	WriterSchema string
}

// Family is a named group of columns inside a locality group. A family
// with no declared columns is map-type: qualifiers are arbitrary and
// supplied by writers at runtime.
type Family struct {
	ID          int
	Name        string
	Description string
	Columns     []Column
}

// MapType reports whether the family accepts arbitrary qualifiers.
func (f *Family) MapType() bool {
	return len(f.Columns) == 0
}

// LocalityGroup is a set of families stored together in the physical
// store, sharing retention settings.
type LocalityGroup struct {
	ID          int
	Name        string
	MaxVersions int
	TTLSeconds  int
	Families    []Family
}

// TableLayout is a snapshot of the versioned schema of one table: its
// locality groups, families, columns, and row-key format.
//
// A TableLayout is treated as read-only once Validate has accepted it.
// Layout updates produce a new TableLayout; nothing mutates an existing
// snapshot.
type TableLayout struct {
	// Name is the table name in the metadata store.
	Name string
	// LayoutID distinguishes successive layouts of the same table.
	LayoutID string
	// Version is the layout schema version, checked against the client's
	// supported range at table-open time.
	Version string
	// Description is free-form documentation.
	Description string
	// Keys is the row-key format. Never changed by a layout update.
	Keys KeysFormat
	// LocalityGroups hold the families and columns of the table.
	LocalityGroups []LocalityGroup
}

// Validate checks the layout for internal consistency: a parseable
// version, a valid row-key format, unique group/family/column names and
// ids, and parseable Avro schemas on declared columns.
func (l *TableLayout) Validate() error {
	if l.Name == "" {
		return errors.InvalidInput(errors.OpLayout, "table layout has no name")
	}
	if _, err := semver.NewVersion(l.Version); err != nil {
		return errors.Wrap(errors.OpLayout, errors.KindUnsupportedFormat, err,
			"invalid layout version "+l.Version).WithTable(l.Name)
	}
	if l.Keys == nil {
		return errors.InvalidInput(errors.OpLayout, "table layout has no row-key format").WithTable(l.Name)
	}
	if err := l.Keys.Validate(); err != nil {
		return err
	}
	if len(l.LocalityGroups) == 0 {
		return errors.InvalidInput(errors.OpLayout, "table layout has no locality groups").WithTable(l.Name)
	}

	groupNames := make(map[string]bool)
	groupIDs := make(map[int]bool)
	familyNames := make(map[string]bool)
	for gi := range l.LocalityGroups {
		lg := &l.LocalityGroups[gi]
		if lg.Name == "" {
			return errors.InvalidInput(errors.OpLayout, "locality group %d has no name", gi).WithTable(l.Name)
		}
		if groupNames[lg.Name] {
			return errors.InvalidInput(errors.OpLayout, "duplicate locality group %q", lg.Name).WithTable(l.Name)
		}
		if groupIDs[lg.ID] {
			return errors.InvalidInput(errors.OpLayout, "duplicate locality group id %d", lg.ID).WithTable(l.Name)
		}
		groupNames[lg.Name] = true
		groupIDs[lg.ID] = true

		familyIDs := make(map[int]bool)
		for fi := range lg.Families {
			fam := &lg.Families[fi]
			if fam.Name == "" {
				return errors.InvalidInput(errors.OpLayout,
					"family %d in locality group %q has no name", fi, lg.Name).WithTable(l.Name)
			}
			// Family names are unique table-wide so column names stay
			// unambiguous without naming the locality group.
			if familyNames[fam.Name] {
				return errors.InvalidInput(errors.OpLayout, "duplicate family %q", fam.Name).WithTable(l.Name)
			}
			if familyIDs[fam.ID] {
				return errors.InvalidInput(errors.OpLayout,
					"duplicate family id %d in locality group %q", fam.ID, lg.Name).WithTable(l.Name)
			}
			familyNames[fam.Name] = true
			familyIDs[fam.ID] = true

			if err := validateColumns(l.Name, fam); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateColumns(table string, fam *Family) error {
	colNames := make(map[string]bool)
	colIDs := make(map[int]bool)
	for _, col := range fam.Columns {
		if col.Name == "" {
			return errors.InvalidInput(errors.OpLayout,
				"column in family %q has no name", fam.Name).WithTable(table)
		}
		if colNames[col.Name] || colIDs[col.ID] {
			return errors.InvalidInput(errors.OpLayout,
				"duplicate column %q in family %q", col.Name, fam.Name).WithTable(table)
		}
		colNames[col.Name] = true
		colIDs[col.ID] = true

		for _, schema := range []string{col.ReaderSchema, col.WriterSchema} {
			if schema == "" {
				continue
			}
			if _, err := avro.Parse(schema); err != nil {
				return errors.Wrap(errors.OpLayout, errors.KindInvalidInput, err,
					"invalid schema on column "+fam.Name+":"+col.Name).WithTable(table)
			}
		}
	}
	return nil
}

// FindFamily returns the locality group and family for a family name.
func (l *TableLayout) FindFamily(family string) (*LocalityGroup, *Family, bool) {
	for gi := range l.LocalityGroups {
		lg := &l.LocalityGroups[gi]
		for fi := range lg.Families {
			if lg.Families[fi].Name == family {
				return lg, &lg.Families[fi], true
			}
		}
	}
	return nil, nil, false
}

// FindColumn returns the column declaration for a fully-qualified column
// name. Map-type families have no declarations, so lookups in them report
// not found.
func (l *TableLayout) FindColumn(name ColumnName) (*Column, bool) {
	_, fam, ok := l.FindFamily(name.Family())
	if !ok {
		return nil, false
	}
	for ci := range fam.Columns {
		if fam.Columns[ci].Name == name.Qualifier() {
			return &fam.Columns[ci], true
		}
	}
	return nil, false
}

// ColumnNames returns the fully-qualified names of every declared column,
// in locality group order.
func (l *TableLayout) ColumnNames() []ColumnName {
	var names []ColumnName
	for _, lg := range l.LocalityGroups {
		for _, fam := range lg.Families {
			for _, col := range fam.Columns {
				names = append(names, ColumnName{family: fam.Name, qualifier: col.Name})
			}
		}
	}
	return names
}
