package meta

import (
	"sync"

	"github.com/stratakv/strata-go/errors"
	"github.com/stratakv/strata-go/layout"
)

// Store is an in-memory metadata store mapping table names to their most
// recent layout. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	layouts map[string]*layout.TableLayout
}

// NewStore creates an empty metadata store.
func NewStore() *Store {
	return &Store{
		layouts: make(map[string]*layout.TableLayout),
	}
}

// PutLayout validates a layout and records it as the current layout of
// its table, replacing any previous one.
func (s *Store) PutLayout(l *layout.TableLayout) error {
	if err := l.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[l.Name] = l
	return nil
}

// ResolveLayout returns the current layout for a table, or a not_found
// error if the table has none.
func (s *Store) ResolveLayout(table string) (*layout.TableLayout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.layouts[table]
	if !ok {
		return nil, errors.NotFound(errors.OpMeta, "layout for table", table)
	}
	return l, nil
}

// DeleteLayout removes the layout of a table. Deleting an absent layout
// is a not_found error.
func (s *Store) DeleteLayout(table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.layouts[table]; !ok {
		return errors.NotFound(errors.OpMeta, "layout for table", table)
	}
	delete(s.layouts, table)
	return nil
}

// Tables returns the names of tables with a layout.
func (s *Store) Tables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.layouts))
	for name := range s.layouts {
		names = append(names, name)
	}
	return names
}
