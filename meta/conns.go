package meta

import (
	"sync"
	"sync/atomic"

	strata "github.com/stratakv/strata-go"
	"github.com/stratakv/strata-go/errors"
)

// ConnectionFactory is an in-memory connection factory backed by a
// registered set of physical table names. Opening an unregistered name
// fails with a not_found error, mimicking a physical table that does not
// exist.
type ConnectionFactory struct {
	mu     sync.Mutex
	tables map[string]bool
	opened []*Connection
}

// NewConnectionFactory creates a factory with the given physical tables
// registered.
func NewConnectionFactory(physicalNames ...string) *ConnectionFactory {
	f := &ConnectionFactory{
		tables: make(map[string]bool, len(physicalNames)),
	}
	for _, name := range physicalNames {
		f.tables[name] = true
	}
	return f
}

// CreateTable registers a physical table.
func (f *ConnectionFactory) CreateTable(physicalName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[physicalName] = true
}

// DropTable unregisters a physical table. Existing connections are
// unaffected.
func (f *ConnectionFactory) DropTable(physicalName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tables, physicalName)
}

// Open implements strata.ConnectionFactory.
func (f *ConnectionFactory) Open(physicalName string) (strata.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.tables[physicalName] {
		return nil, errors.NotFound(errors.OpMeta, "physical table", physicalName)
	}
	conn := &Connection{name: physicalName}
	f.opened = append(f.opened, conn)
	return conn, nil
}

// OpenConnections returns the number of connections handed out that have
// not been closed. Used to check for leaks.
func (f *ConnectionFactory) OpenConnections() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, conn := range f.opened {
		if !conn.closed.Load() {
			n++
		}
	}
	return n
}

// Connection is an in-memory physical table connection. Closing twice is
// a state error.
type Connection struct {
	name   string
	closed atomic.Bool
}

// Name implements strata.Connection.
func (c *Connection) Name() string {
	return c.name
}

// Close implements strata.Connection.
func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return errors.State(errors.OpLifecycle, "connection to %s already closed", c.name)
	}
	return nil
}

// Closed reports whether the connection has been closed.
func (c *Connection) Closed() bool {
	return c.closed.Load()
}
