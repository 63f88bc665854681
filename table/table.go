package table

import (
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	strata "github.com/stratakv/strata-go"
	"github.com/stratakv/strata-go/errors"
	"github.com/stratakv/strata-go/keys"
	"github.com/stratakv/strata-go/layout"
)

// Handle is an open, retain-counted handle on one table. It owns the
// current layout capsule, the physical connection, and a fixed entity-id
// factory. Handles are shared: readers, writers, and region enumerators
// borrow the same handle and bracket their use with Retain and Release.
//
// Handles are safe for concurrent use.
type Handle struct {
	client       strata.Client
	name         string
	physicalName string
	conn         strata.Connection
	eidFactory   keys.Factory

	// capsule is the current layout snapshot, swapped whole on update.
	capsule atomic.Pointer[Capsule]

	// open and retainCount guard teardown: the release whose decrement
	// lands on zero performs teardown, and the open flag's CAS makes the
	// teardown itself happen exactly once.
	open        atomic.Bool
	retainCount atomic.Int32

	observers []LayoutObserver
	obsMu     sync.RWMutex

	// constructorStack is captured when cleanup logging runs at debug, to
	// point leaked handles back at their creation site.
	constructorStack string
}

// physicalTableName is the name of the store table backing a client-level
// table.
func physicalTableName(instance, table string) string {
	return "strata." + instance + ".table." + table
}

// Open opens a handle on the named table.
//
// Open resolves the table's layout through the client's metadata store,
// checks the layout version against this client's supported range,
// derives the column-name translator and entity-id factory, and opens the
// physical connection. On success the client is retained, the handle is
// open, and its retain count is one.
//
// A missing layout surfaces as a not_found error. A layout whose physical
// table is missing surfaces as an inconsistency error and is logged at
// error level, since the metadata store and the physical store have
// drifted. Collaborator I/O errors propagate to the caller unwrapped; Open
// does not retry. On any failure, resources acquired before it are
// released.
func Open(client strata.Client, name string) (*Handle, error) {
	t := &Handle{
		client:       client,
		name:         name,
		physicalName: physicalTableName(client.Instance(), name),
	}

	cleanupLog := strata.CleanupLogger()
	if cleanupLog.Core().Enabled(zapcore.DebugLevel) {
		t.constructorStack = string(debug.Stack())
	}

	strata.Logger().Debug("opening table",
		zap.String("table", t.String()),
		zap.String("client_version", strata.SoftwareVersion))

	l, err := client.Meta().ResolveLayout(name)
	if err != nil {
		return nil, err
	}
	if err := layout.CheckVersionSupported(l.Version); err != nil {
		return nil, err
	}

	factory, err := keys.NewFactory(l.Keys)
	if err != nil {
		return nil, err
	}
	t.eidFactory = factory
	t.capsule.Store(&Capsule{
		layout:     l,
		translator: layout.NewColumnNameTranslator(l),
		table:      t,
	})

	conn, err := client.Connections().Open(t.physicalName)
	if err != nil {
		if errors.IsKind(err, errors.KindNotFound) {
			// A layout exists in the metadata store but no physical table
			// backs it: the two stores have drifted.
			strata.Logger().Error("layout exists but physical table does not",
				zap.String("table", t.String()),
				zap.String("physical_table", t.physicalName))
			return nil, errors.Inconsistency(errors.OpOpen, name,
				"table layout exists but physical table "+t.physicalName+" does not")
		}
		return nil, err
	}
	t.conn = conn

	// Retain the client only once open can no longer fail.
	if _, err := client.Retain(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	t.open.Store(true)
	t.retainCount.Store(1)
	runtime.SetFinalizer(t, (*Handle).finalize)

	return t, nil
}

// Name returns the table name.
func (t *Handle) Name() string {
	return t.name
}

// PhysicalName returns the name of the store table backing this handle.
func (t *Handle) PhysicalName() string {
	return t.physicalName
}

// Client returns the client this handle was opened through.
func (t *Handle) Client() strata.Client {
	return t.client
}

// Connection returns the physical connection owned by this handle. Valid
// only while the handle is open.
func (t *Handle) Connection() strata.Connection {
	return t.conn
}

func (t *Handle) String() string {
	return t.client.Instance() + "/" + t.name
}

// Capsule returns the current layout capsule. Non-blocking; always the
// latest published snapshot. Use one capsule for all reads within a
// logical operation, and do not cache it across operations.
func (t *Handle) Capsule() *Capsule {
	return t.capsule.Load()
}

// Layout returns the current layout snapshot. If an operation needs the
// layout and the translator together, read both from one Capsule instead.
func (t *Handle) Layout() *layout.TableLayout {
	return t.Capsule().Layout()
}

// Translator returns the current column-name translator. If an operation
// needs the layout and the translator together, read both from one
// Capsule instead.
func (t *Handle) Translator() *layout.ColumnNameTranslator {
	return t.Capsule().Translator()
}

// EntityIDFactory returns the entity-id factory for this table. The
// factory is fixed at open time; row-key encoding never changes across
// layout updates.
func (t *Handle) EntityIDFactory() keys.Factory {
	return t.eidFactory
}

// EntityID builds an entity id from logical key components.
func (t *Handle) EntityID(components ...any) (keys.EntityID, error) {
	return t.eidFactory.FromComponents(components...)
}

// Retain increments the handle's retain count and returns the handle.
// Fails with a state error if the handle is already closed, which means
// the caller kept using a handle after its last release.
func (t *Handle) Retain() (*Handle, error) {
	counter := t.retainCount.Add(1) - 1
	if counter < 1 {
		return nil, errors.State(errors.OpLifecycle,
			"cannot retain closed table %s: retain counter was %d", t.String(), counter)
	}
	return t, nil
}

// Release decrements the handle's retain count. The release whose
// decrement reaches zero tears the handle down: the physical connection
// is closed and the client released, exactly once. Releasing a handle
// whose count is already zero fails with a state error.
func (t *Handle) Release() error {
	counter := t.retainCount.Add(-1)
	if counter < 0 {
		return errors.State(errors.OpLifecycle,
			"cannot release closed table %s: retain counter is now %d", t.String(), counter)
	}
	if counter == 0 {
		return t.closeResources()
	}
	return nil
}

// closeResources tears down the resources owned by this handle. Guarded by
// the open flag so a second teardown fails loudly instead of double
// closing.
func (t *Handle) closeResources() error {
	if !t.open.CompareAndSwap(true, false) {
		return errors.State(errors.OpLifecycle, "table %s already closed", t.String())
	}

	strata.Logger().Debug("closing table", zap.String("table", t.String()))
	runtime.SetFinalizer(t, nil)

	var firstErr error
	if t.conn != nil {
		if err := t.conn.Close(); err != nil {
			firstErr = err
		}
	}
	if err := t.client.Release(); err != nil && firstErr == nil {
		firstErr = err
	}

	strata.Logger().Debug("table closed", zap.String("table", t.String()))
	return firstErr
}

// UpdateLayout publishes a new layout for this table by swapping in a
// whole new capsule. In-flight operations keep whichever capsule they
// already captured; it stays valid and immutable. The retain counter is
// untouched and concurrent retain/release is never blocked.
//
// The new layout must belong to this table and must keep the row-key
// format version unchanged, since row-key encoding is fixed for the
// lifetime of a handle.
func (t *Handle) UpdateLayout(l *layout.TableLayout) error {
	if !t.open.Load() {
		return errors.State(errors.OpUpdate, "cannot update layout of closed table %s", t.String())
	}
	if err := l.Validate(); err != nil {
		return err
	}
	if l.Name != t.name {
		return errors.InvalidInput(errors.OpUpdate,
			"layout is for table %q, handle is for table %q", l.Name, t.name)
	}

	current := t.capsule.Load()
	if !layout.SameFormatVersion(current.layout.Keys, l.Keys) {
		return errors.InvalidInput(errors.OpUpdate,
			"layout update may not change the row-key format version (have %s)",
			current.layout.Keys.FormatVersion())
	}

	next := &Capsule{
		layout:     l,
		translator: layout.NewColumnNameTranslator(l),
		table:      t,
	}
	old := t.capsule.Swap(next)

	strata.Logger().Debug("layout updated",
		zap.String("table", t.String()),
		zap.String("layout_id", l.LayoutID))

	t.notify(old, next)
	return nil
}

// finalize is a safety net, not part of normal control flow: it fires only
// when a handle that was never fully released is garbage collected, logs
// the leak, and closes the resources.
func (t *Handle) finalize() {
	if !t.open.Load() {
		return
	}

	log := strata.CleanupLogger()
	log.Warn("finalizing table handle that was never released; use Release()",
		zap.String("table", t.String()),
		zap.Int32("retain_count", t.retainCount.Load()))
	if t.constructorStack != "" {
		log.Debug("leaked table handle was constructed through",
			zap.String("table", t.String()),
			zap.String("stack", t.constructorStack))
	}

	_ = t.closeResources()
}
