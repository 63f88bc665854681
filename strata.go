package strata

import (
	"github.com/stratakv/strata-go/layout"
)

// MetaStore resolves table layouts from the store's metadata.
type MetaStore interface {
	// ResolveLayout returns the most recent layout persisted for the named
	// table, or a not_found error if the table has no layout.
	ResolveLayout(table string) (*layout.TableLayout, error)
}

// Connection is an open channel to one physical table in the store.
// Connections are acquired through a ConnectionFactory and must be closed
// by their owner.
type Connection interface {
	// Name returns the physical table name this connection is bound to.
	Name() string

	// Close releases the connection. Closing twice is an error.
	Close() error
}

// ConnectionFactory opens connections to physical tables.
type ConnectionFactory interface {
	// Open opens a connection to the named physical table. Returns a
	// not_found error if no physical table backs the name.
	Open(physicalName string) (Connection, error)
}

// Client is a shared handle on one StrataKV instance. It is the
// collaborator a table handle depends on: the table retains the client for
// its whole lifetime and releases it during teardown.
type Client interface {
	// Instance returns the name of the StrataKV instance.
	Instance() string

	// Meta returns the metadata store for this instance.
	Meta() MetaStore

	// Connections returns the factory for physical table connections.
	Connections() ConnectionFactory

	// Retain increments the client's retain count. Fails with a state
	// error if the client is already closed.
	Retain() (Client, error)

	// Release decrements the retain count; the release that reaches zero
	// tears the client down.
	Release() error
}
