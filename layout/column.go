package layout

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/stratakv/strata-go/errors"
)

// ColumnName identifies a column by family and optional qualifier.
// The canonical string form is "family:qualifier", or just "family" when
// no qualifier is set. ColumnName is a comparable value type; two names
// are equal iff their canonical forms are equal.
type ColumnName struct {
	family    string
	qualifier string
}

// NewColumnName builds a column name from its parts. The family may not be
// empty and may not contain ':'.
func NewColumnName(family, qualifier string) (ColumnName, error) {
	if family == "" {
		return ColumnName{}, errors.InvalidInput(errors.OpLayout, "column family may not be empty")
	}
	if strings.Contains(family, ":") {
		return ColumnName{}, errors.InvalidInput(errors.OpLayout, "column family %q may not contain ':'", family)
	}
	return ColumnName{family: family, qualifier: qualifier}, nil
}

// ParseColumnName parses a canonical "family:qualifier" string.
// "family" and "family:" both parse to a name without a qualifier.
func ParseColumnName(name string) (ColumnName, error) {
	family, qualifier, _ := strings.Cut(name, ":")
	return NewColumnName(family, qualifier)
}

// Family returns the family part of the name.
func (c ColumnName) Family() string {
	return c.family
}

// Qualifier returns the qualifier part of the name, empty if unset.
func (c ColumnName) Qualifier() string {
	return c.qualifier
}

// HasQualifier reports whether the name carries a qualifier.
func (c ColumnName) HasQualifier() bool {
	return c.qualifier != ""
}

// String returns the canonical form of the name.
func (c ColumnName) String() string {
	if c.qualifier == "" {
		return c.family
	}
	return c.family + ":" + c.qualifier
}

// Hash returns the xxHash64 of the canonical form.
func (c ColumnName) Hash() uint64 {
	return xxhash.Sum64String(c.String())
}
