package table

import (
	"github.com/stratakv/strata-go/layout"
)

// Capsule bundles a table layout snapshot with the objects derived from
// it, so that users observe one moment of the table's schema rather than
// a torn mix of two. The capsule is immutable and is replaced whole when
// the layout updates.
//
// Capsules represent a snapshot; fetch a fresh one per logical operation
// instead of caching one across operations.
//
// The capsule deliberately excludes the entity-id factory: no layout
// update may change row-key encoding, so the factory lives on the handle
// for its whole lifetime.
type Capsule struct {
	layout     *layout.TableLayout
	translator *layout.ColumnNameTranslator
	table      *Handle
}

// Layout returns the layout snapshot of this capsule.
func (c *Capsule) Layout() *layout.TableLayout {
	return c.layout
}

// Translator returns the column-name translator derived from this
// capsule's layout.
func (c *Capsule) Translator() *layout.ColumnNameTranslator {
	return c.translator
}

// Table returns the handle this capsule belongs to.
func (c *Capsule) Table() *Handle {
	return c.table
}
