package layout

import (
	"strconv"
	"strings"

	"github.com/stratakv/strata-go/errors"
)

// StoreColumnName is the compact column name used by the physical store:
// the locality group id as the store family and "familyID:columnID" (or
// "familyID:qualifier" for map-type families) as the store qualifier.
type StoreColumnName struct {
	Family    string
	Qualifier string
}

func (s StoreColumnName) String() string {
	return s.Family + ":" + s.Qualifier
}

// ColumnNameTranslator converts between layout column names and store
// column names for one layout snapshot.
//
// A translator is derived from exactly one TableLayout and is read-only
// after construction. Pairing a translator with a layout from a different
// point in time produces garbage translations; always obtain both from the
// same capsule.
type ColumnNameTranslator struct {
	layout   *TableLayout
	toStore  map[ColumnName]StoreColumnName
	toLayout map[StoreColumnName]ColumnName
	// map-type families, keyed by layout family name and by store prefix.
	mapFamilies map[string]storeFamily
	mapByPrefix map[storeFamily]string
}

type storeFamily struct {
	group  string
	family string
}

// NewColumnNameTranslator derives a translator from a layout. Pure; no
// I/O. The caller must have validated the layout.
func NewColumnNameTranslator(l *TableLayout) *ColumnNameTranslator {
	t := &ColumnNameTranslator{
		layout:      l,
		toStore:     make(map[ColumnName]StoreColumnName),
		toLayout:    make(map[StoreColumnName]ColumnName),
		mapFamilies: make(map[string]storeFamily),
		mapByPrefix: make(map[storeFamily]string),
	}

	for _, lg := range l.LocalityGroups {
		groupID := strconv.Itoa(lg.ID)
		for _, fam := range lg.Families {
			famID := strconv.Itoa(fam.ID)
			if fam.MapType() {
				sf := storeFamily{group: groupID, family: famID}
				t.mapFamilies[fam.Name] = sf
				t.mapByPrefix[sf] = fam.Name
				continue
			}
			for _, col := range fam.Columns {
				layoutName := ColumnName{family: fam.Name, qualifier: col.Name}
				storeName := StoreColumnName{
					Family:    groupID,
					Qualifier: famID + ":" + strconv.Itoa(col.ID),
				}
				t.toStore[layoutName] = storeName
				t.toLayout[storeName] = layoutName
			}
		}
	}

	return t
}

// Layout returns the layout this translator was derived from.
func (t *ColumnNameTranslator) Layout() *TableLayout {
	return t.layout
}

// ToStore translates a layout column name to its store column name.
func (t *ColumnNameTranslator) ToStore(name ColumnName) (StoreColumnName, error) {
	if sf, ok := t.mapFamilies[name.Family()]; ok {
		if !name.HasQualifier() {
			return StoreColumnName{}, errors.InvalidInput(errors.OpLayout,
				"map-type family requires a qualifier").WithColumn(name.String())
		}
		return StoreColumnName{
			Family:    sf.group,
			Qualifier: sf.family + ":" + name.Qualifier(),
		}, nil
	}

	storeName, ok := t.toStore[name]
	if !ok {
		return StoreColumnName{}, errors.NotFound(errors.OpLayout, "column", name.String()).
			WithTable(t.layout.Name)
	}
	return storeName, nil
}

// ToLayout translates a store column name back to its layout column name.
func (t *ColumnNameTranslator) ToLayout(name StoreColumnName) (ColumnName, error) {
	if layoutName, ok := t.toLayout[name]; ok {
		return layoutName, nil
	}

	famID, qualifier, ok := strings.Cut(name.Qualifier, ":")
	if ok {
		sf := storeFamily{group: name.Family, family: famID}
		if family, found := t.mapByPrefix[sf]; found {
			return ColumnName{family: family, qualifier: qualifier}, nil
		}
	}

	return ColumnName{}, errors.NotFound(errors.OpLayout, "store column", name.String()).
		WithTable(t.layout.Name)
}
