package meta

import (
	"sync/atomic"

	"go.uber.org/zap"

	strata "github.com/stratakv/strata-go"
	"github.com/stratakv/strata-go/errors"
)

// Client is a retain-counted in-memory strata.Client. Table handles
// retain the client they were opened through for their whole lifetime, so
// the client follows the same lifecycle discipline as the handles: the
// release that drives its count to zero closes it.
type Client struct {
	instance string
	meta     strata.MetaStore
	conns    strata.ConnectionFactory

	open        atomic.Bool
	retainCount atomic.Int32
}

// NewClient creates an open client with a retain count of one.
func NewClient(instance string, meta strata.MetaStore, conns strata.ConnectionFactory) *Client {
	c := &Client{
		instance: instance,
		meta:     meta,
		conns:    conns,
	}
	c.open.Store(true)
	c.retainCount.Store(1)
	return c
}

// Instance implements strata.Client.
func (c *Client) Instance() string {
	return c.instance
}

// Meta implements strata.Client.
func (c *Client) Meta() strata.MetaStore {
	return c.meta
}

// Connections implements strata.Client.
func (c *Client) Connections() strata.ConnectionFactory {
	return c.conns
}

// Retain implements strata.Client.
func (c *Client) Retain() (strata.Client, error) {
	counter := c.retainCount.Add(1) - 1
	if counter < 1 {
		return nil, errors.State(errors.OpLifecycle,
			"cannot retain closed client %s: retain counter was %d", c.instance, counter)
	}
	return c, nil
}

// Release implements strata.Client.
func (c *Client) Release() error {
	counter := c.retainCount.Add(-1)
	if counter < 0 {
		return errors.State(errors.OpLifecycle,
			"cannot release closed client %s: retain counter is now %d", c.instance, counter)
	}
	if counter == 0 {
		if !c.open.CompareAndSwap(true, false) {
			return errors.State(errors.OpLifecycle, "client %s already closed", c.instance)
		}
		strata.Logger().Debug("client closed", zap.String("instance", c.instance))
	}
	return nil
}

// Open reports whether the client has not yet been torn down.
func (c *Client) Open() bool {
	return c.open.Load()
}
