package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"JackTrack/internal/cli/api"
	"JackTrack/internal/cli/blob"
	"JackTrack/internal/cli/model"
	"JackTrack/internal/cli/netstate"
	"JackTrack/internal/cli/repo/sqlite"
)

// fakeRemote — REST-сервер в памяти с журналом запросов.
type fakeRemote struct {
	mu      sync.Mutex
	records map[string]map[string]map[string]any // resource → id → body
	calls   []string
	bodies  map[string][]map[string]any // "POST /trees" → тела
	fail    map[string]int               // "GET /trees/x" → статус
	before  func(r *http.Request)
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		records: map[string]map[string]map[string]any{},
		bodies:  map[string][]map[string]any{},
		fail:    map[string]int{},
	}
}

func (f *fakeRemote) put(resource string, rec map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.records[resource] == nil {
		f.records[resource] = map[string]map[string]any{}
	}
	f.records[resource][rec["id"].(string)] = rec
}

func (f *fakeRemote) get(resource, id string) (map[string]any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[resource][id]
	return rec, ok
}

func (f *fakeRemote) failWith(call string, status int) {
	f.mu.Lock()
	f.fail[call] = status
	f.mu.Unlock()
}

func (f *fakeRemote) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeRemote) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRemote) sent(call string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[call]
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.before != nil {
		f.before(r)
	}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	resource, id := parts[0], ""
	if len(parts) > 1 {
		id = parts[1]
	}
	call := r.Method + " " + r.URL.Path

	var body map[string]any
	if r.Body != nil {
		b, _ := io.ReadAll(r.Body)
		if len(b) > 0 {
			_ = json.Unmarshal(b, &body)
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	if body != nil {
		f.bodies[call] = append(f.bodies[call], body)
	}
	status, failing := f.fail[call]
	f.mu.Unlock()
	if failing {
		http.Error(w, "injected", status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && id == "":
		f.mu.Lock()
		data := []map[string]any{}
		for _, rec := range f.records[resource] {
			data = append(data, rec)
		}
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
	case r.Method == http.MethodGet:
		rec, ok := f.get(resource, id)
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(rec)
	case r.Method == http.MethodPost:
		if _, ok := f.get(resource, body["id"].(string)); ok {
			w.WriteHeader(http.StatusConflict)
			return
		}
		f.put(resource, body)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	case r.Method == http.MethodPut:
		if _, ok := f.get(resource, id); !ok {
			http.NotFound(w, r)
			return
		}
		f.put(resource, body)
		_ = json.NewEncoder(w).Encode(body)
	case r.Method == http.MethodDelete:
		if _, ok := f.get(resource, id); !ok {
			http.NotFound(w, r)
			return
		}
		f.mu.Lock()
		delete(f.records[resource], id)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// recordingNotifier запоминает уведомления вместо постановки в очередь.
type recordingNotifier struct {
	mu    sync.Mutex
	tasks []Task
}

func (n *recordingNotifier) Notify(kind, id string) {
	n.mu.Lock()
	n.tasks = append(n.tasks, Task{Kind: kind, ID: id})
	n.mu.Unlock()
}

func (n *recordingNotifier) all() []Task {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Task(nil), n.tasks...)
}

// memStore — объектное хранилище в памяти.
type memStore struct {
	mu   sync.Mutex
	keys []string
}

func (m *memStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	_, _ = io.Copy(io.Discard, body)
	m.mu.Lock()
	m.keys = append(m.keys, key)
	m.mu.Unlock()
	return nil
}

func (m *memStore) PublicURL(key string) string { return "https://cdn.example.com/" + key }

type harness[T model.Entity] struct {
	svc    *EntityService[T]
	coord  *Coordinator[T]
	table  *sqlite.Table[T]
	tombs  *sqlite.Tombstones
	remote *fakeRemote
	server *httptest.Server
	gate   *netstate.Gate
	notes  *recordingNotifier
	store  *memStore
}

func newHarness[T model.Entity](t *testing.T, kind Kind[T], schema sqlite.Schema[T], online bool) *harness[T] {
	t.Helper()
	db := sqlite.NewDB(filepath.Join(t.TempDir(), "jacktrack.db"))
	t.Cleanup(func() { _ = db.Close() })

	h := &harness[T]{
		table:  sqlite.NewTable(db, schema),
		tombs:  sqlite.NewTombstones(db),
		remote: newFakeRemote(),
		gate:   netstate.NewGate(online),
		notes:  &recordingNotifier{},
		store:  &memStore{},
	}
	h.server = httptest.NewServer(h.remote)
	t.Cleanup(h.server.Close)

	client := api.NewClient(h.server.URL, "", 2*time.Second)
	h.svc = NewEntityService(kind, h.table, h.tombs, h.notes, nil)
	h.coord = NewCoordinator(kind, h.table, CoordinatorDeps{
		Tombstones: h.tombs,
		Remote:     client.Resource(kind.Resource),
		Uploader:   blob.NewUploader(h.store, nil),
		Net:        h.gate,
	})
	return h
}

func newTreeHarness(t *testing.T, online bool) *harness[*model.Tree] {
	return newHarness(t, TreeKind(), sqlite.TreeSchema(), online)
}

func newFlowerHarness(t *testing.T, online bool) *harness[*model.Flower] {
	return newHarness(t, FlowerKind(), sqlite.FlowerSchema(), online)
}
