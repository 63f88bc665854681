package table

import (
	"io"
	"sync"
	"testing"

	"github.com/stratakv/strata-go/errors"
	"github.com/stratakv/strata-go/layout"
	"github.com/stratakv/strata-go/meta"
)

func mustColumn(t *testing.T, name string) layout.ColumnName {
	t.Helper()
	c, err := layout.ParseColumnName(name)
	if err != nil {
		t.Fatalf("ParseColumnName(%q) failed: %v", name, err)
	}
	return c
}

func testLayout(name, layoutID string) *layout.TableLayout {
	return &layout.TableLayout{
		Name:     name,
		LayoutID: layoutID,
		Version:  "1.3.0",
		Keys: &layout.RowKeyFormat2{
			Version:  "2.0.0",
			Encoding: layout.EncodingFormatted,
			Components: []layout.KeyComponent{
				{Name: "login", Type: layout.ComponentString},
			},
		},
		LocalityGroups: []layout.LocalityGroup{{
			ID:          1,
			Name:        "default",
			MaxVersions: 3,
			Families: []layout.Family{{
				ID:   1,
				Name: "info",
				Columns: []layout.Column{
					{ID: 1, Name: "email", ReaderSchema: `"string"`, WriterSchema: `"string"`},
				},
			}},
		}},
	}
}

// newTestClient builds a client whose metadata store and connection
// factory both know the given tables.
func newTestClient(t *testing.T, tables ...string) (*meta.Client, *meta.Store, *meta.ConnectionFactory) {
	t.Helper()

	store := meta.NewStore()
	physical := make([]string, 0, len(tables))
	for _, name := range tables {
		if err := store.PutLayout(testLayout(name, "1")); err != nil {
			t.Fatalf("PutLayout(%s) failed: %v", name, err)
		}
		physical = append(physical, physicalTableName("test", name))
	}
	conns := meta.NewConnectionFactory(physical...)
	return meta.NewClient("test", store, conns), store, conns
}

func TestOpen(t *testing.T) {
	client, _, conns := newTestClient(t, "users")

	h, err := Open(client, "users")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if h.Name() != "users" {
		t.Errorf("Name() = %q, want %q", h.Name(), "users")
	}
	if want := "strata.test.table.users"; h.PhysicalName() != want {
		t.Errorf("PhysicalName() = %q, want %q", h.PhysicalName(), want)
	}
	if h.String() != "test/users" {
		t.Errorf("String() = %q, want %q", h.String(), "test/users")
	}
	if h.Client() != client {
		t.Error("Client() did not return the opening client")
	}

	capsule := h.Capsule()
	if capsule == nil {
		t.Fatal("Capsule() returned nil")
	}
	if capsule.Layout().Name != "users" {
		t.Errorf("capsule layout name = %q, want %q", capsule.Layout().Name, "users")
	}
	if capsule.Translator() == nil {
		t.Error("capsule has no translator")
	}
	if capsule.Table() != h {
		t.Error("capsule does not point back at its handle")
	}

	eid, err := h.EntityID("alice")
	if err != nil {
		t.Fatalf("EntityID failed: %v", err)
	}
	if len(eid.StoreKey()) == 0 {
		t.Error("EntityID produced an empty store key")
	}

	if n := conns.OpenConnections(); n != 1 {
		t.Errorf("open connections = %d, want 1", n)
	}

	if err := h.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if n := conns.OpenConnections(); n != 0 {
		t.Errorf("open connections after release = %d, want 0", n)
	}
}

type failingMeta struct {
	err error
}

func (m *failingMeta) ResolveLayout(table string) (*layout.TableLayout, error) {
	return nil, m.err
}

func TestOpenErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) *meta.Client
		kind  errors.Kind
	}{
		{
			name: "layout not found",
			setup: func(t *testing.T) *meta.Client {
				client, _, _ := newTestClient(t)
				return client
			},
			kind: errors.KindNotFound,
		},
		{
			name: "unsupported layout version",
			setup: func(t *testing.T) *meta.Client {
				client, store, _ := newTestClient(t, "users")
				l := testLayout("users", "2")
				l.Version = "9.0.0"
				if err := store.PutLayout(l); err != nil {
					t.Fatalf("PutLayout failed: %v", err)
				}
				return client
			},
			kind: errors.KindUnsupportedFormat,
		},
		{
			name: "physical table missing",
			setup: func(t *testing.T) *meta.Client {
				client, _, conns := newTestClient(t, "users")
				conns.DropTable(physicalTableName("test", "users"))
				return client
			},
			kind: errors.KindInconsistency,
		},
		{
			name: "metadata store io error",
			setup: func(t *testing.T) *meta.Client {
				bad := &failingMeta{err: errors.IO(errors.OpMeta, io.ErrUnexpectedEOF, "metadata store unreachable")}
				return meta.NewClient("test", bad, meta.NewConnectionFactory())
			},
			kind: errors.KindIO,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := tt.setup(t)

			_, err := Open(client, "users")
			if err == nil {
				t.Fatal("Open succeeded, want error")
			}
			if !errors.IsKind(err, tt.kind) {
				t.Errorf("Open error kind mismatch, got %v", err)
			}

			if n := client.Connections().(*meta.ConnectionFactory).OpenConnections(); n != 0 {
				t.Errorf("failed open leaked %d connections", n)
			}
			// A failed open must not have retained the client.
			if err := client.Release(); err != nil {
				t.Errorf("client release after failed open: %v", err)
			}
			if client.Open() {
				t.Error("client still open after its last release")
			}
		})
	}
}

func TestRetainRelease(t *testing.T) {
	client, _, conns := newTestClient(t, "users")

	h, err := Open(client, "users")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := h.Retain(); err != nil {
		t.Fatalf("Retain failed: %v", err)
	}
	if err := h.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	// One retain remains from Open; the handle must still be usable.
	if n := conns.OpenConnections(); n != 1 {
		t.Errorf("open connections = %d, want 1", n)
	}

	if err := h.Release(); err != nil {
		t.Fatalf("final Release failed: %v", err)
	}
	if n := conns.OpenConnections(); n != 0 {
		t.Errorf("open connections after final release = %d, want 0", n)
	}

	if _, err := h.Retain(); !errors.IsKind(err, errors.KindState) {
		t.Errorf("Retain on closed handle = %v, want state error", err)
	}
	if err := h.Release(); !errors.IsKind(err, errors.KindState) {
		t.Errorf("Release on closed handle = %v, want state error", err)
	}
}

func TestReleaseTearsDownOnce(t *testing.T) {
	client, _, conns := newTestClient(t, "users")

	h, err := Open(client, "users")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	conn := h.Connection().(*meta.Connection)

	// Churn the counter from many goroutines; the count from Open keeps
	// it above zero throughout.
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.Retain(); err != nil {
				t.Errorf("Retain failed: %v", err)
				return
			}
			if err := h.Release(); err != nil {
				t.Errorf("Release failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if conn.Closed() {
		t.Fatal("connection closed while the handle was still retained")
	}
	if err := h.Release(); err != nil {
		t.Fatalf("final Release failed: %v", err)
	}

	if !conn.Closed() {
		t.Error("connection not closed after final release")
	}
	if n := conns.OpenConnections(); n != 0 {
		t.Errorf("open connections = %d, want 0", n)
	}
	if err := client.Release(); err != nil {
		t.Fatalf("client release failed: %v", err)
	}
	if client.Open() {
		t.Error("client still open after its last release")
	}
}

type recordingObserver struct {
	mu    sync.Mutex
	calls [][2]*Capsule
}

func (o *recordingObserver) OnLayoutUpdate(old, current *Capsule) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, [2]*Capsule{old, current})
}

func TestUpdateLayout(t *testing.T) {
	client, _, _ := newTestClient(t, "users")

	h, err := Open(client, "users")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer h.Release()

	obs := &recordingObserver{}
	h.Subscribe(obs)

	before := h.Capsule()
	next := testLayout("users", "2")
	next.LocalityGroups[0].Families[0].Columns = append(
		next.LocalityGroups[0].Families[0].Columns,
		layout.Column{ID: 2, Name: "name", ReaderSchema: `"string"`, WriterSchema: `"string"`},
	)
	if err := h.UpdateLayout(next); err != nil {
		t.Fatalf("UpdateLayout failed: %v", err)
	}

	// The published capsule reflects the new layout; the captured one is
	// untouched.
	if h.Layout().LayoutID != "2" {
		t.Errorf("layout id = %q, want %q", h.Layout().LayoutID, "2")
	}
	if before.Layout().LayoutID != "1" {
		t.Errorf("captured capsule changed: layout id = %q", before.Layout().LayoutID)
	}
	if _, ok := before.Layout().FindColumn(mustColumn(t, "info:name")); ok {
		t.Error("captured capsule sees the new column")
	}
	if _, ok := h.Layout().FindColumn(mustColumn(t, "info:name")); !ok {
		t.Error("current capsule does not see the new column")
	}

	if len(obs.calls) != 1 {
		t.Fatalf("observer called %d times, want 1", len(obs.calls))
	}
	if obs.calls[0][0] != before || obs.calls[0][1] != h.Capsule() {
		t.Error("observer did not receive the swapped capsule pair")
	}

	h.Unsubscribe(obs)
	if err := h.UpdateLayout(testLayout("users", "3")); err != nil {
		t.Fatalf("UpdateLayout failed: %v", err)
	}
	if len(obs.calls) != 1 {
		t.Errorf("unsubscribed observer called %d times, want 1", len(obs.calls))
	}
}

func TestUpdateLayoutRejections(t *testing.T) {
	tests := []struct {
		name   string
		layout func() *layout.TableLayout
		kind   errors.Kind
	}{
		{
			name: "wrong table",
			layout: func() *layout.TableLayout {
				return testLayout("orders", "2")
			},
			kind: errors.KindInvalidInput,
		},
		{
			name: "invalid layout",
			layout: func() *layout.TableLayout {
				l := testLayout("users", "2")
				l.LocalityGroups = nil
				return l
			},
			kind: errors.KindInvalidInput,
		},
		{
			name: "row-key format version change",
			layout: func() *layout.TableLayout {
				l := testLayout("users", "2")
				l.Keys = &layout.RowKeyFormat{Version: "1.0.0", Encoding: layout.EncodingRaw}
				return l
			},
			kind: errors.KindInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _, _ := newTestClient(t, "users")
			h, err := Open(client, "users")
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer h.Release()

			before := h.Capsule()
			err = h.UpdateLayout(tt.layout())
			if err == nil {
				t.Fatal("UpdateLayout succeeded, want error")
			}
			if !errors.IsKind(err, tt.kind) {
				t.Errorf("UpdateLayout error kind mismatch, got %v", err)
			}
			if h.Capsule() != before {
				t.Error("rejected update swapped the capsule")
			}
		})
	}
}

func TestUpdateLayoutClosed(t *testing.T) {
	client, _, _ := newTestClient(t, "users")
	h, err := Open(client, "users")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := h.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	if err := h.UpdateLayout(testLayout("users", "2")); !errors.IsKind(err, errors.KindState) {
		t.Errorf("UpdateLayout on closed handle = %v, want state error", err)
	}
}
