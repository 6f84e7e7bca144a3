package elasticsearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/todo-organizer/internal/domain/entity"
)

type recorded struct {
	method string
	path   string
	body   map[string]any
}

type fakeCluster struct {
	mu       sync.Mutex
	requests []recorded
	respond  func(r *http.Request) (int, string)
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{method: r.Method, path: r.URL.Path, body: body})
	f.mu.Unlock()

	status, out := http.StatusOK, `{}`
	if f.respond != nil {
		status, out = f.respond(r)
	}
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, out)
}

func (f *fakeCluster) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newIndex(t *testing.T, f *fakeCluster) *TaskIndex {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	client, err := es.NewClient(es.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewTaskIndex(client, "tasks")
}

func TestTaskIndex_Index(t *testing.T) {
	f := &fakeCluster{}
	x := newIndex(t, f)

	task := entity.Task{ID: "t1", OwnerID: "u1", ListID: "l1", Title: "Buy milk", Note: "2l", UpdatedAt: time.Unix(0, 0)}
	require.NoError(t, x.Index(context.Background(), task))

	got := f.last()
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/tasks/_doc/t1", got.path)
	assert.Equal(t, "u1", got.body["owner"])
	assert.Equal(t, "Buy milk", got.body["title"])
}

func TestTaskIndex_DeleteMissingIsNotAnError(t *testing.T) {
	f := &fakeCluster{respond: func(*http.Request) (int, string) {
		return http.StatusNotFound, `{"result":"not_found"}`
	}}
	x := newIndex(t, f)

	assert.NoError(t, x.Delete(context.Background(), "t1"))
	assert.Equal(t, http.MethodDelete, f.last().method)
}

func TestTaskIndex_DeleteByOwnerFiltersOnOwner(t *testing.T) {
	f := &fakeCluster{}
	x := newIndex(t, f)

	require.NoError(t, x.DeleteByOwner(context.Background(), "u1"))

	got := f.last()
	assert.Equal(t, "/tasks/_delete_by_query", got.path)
	query := got.body["query"].(map[string]any)
	assert.Equal(t, map[string]any{"owner": "u1"}, query["term"])
}

func TestTaskIndex_SearchReturnsHitIDs(t *testing.T) {
	f := &fakeCluster{respond: func(*http.Request) (int, string) {
		return http.StatusOK, `{"hits":{"hits":[{"_id":"t2"},{"_id":"t1"}]}}`
	}}
	x := newIndex(t, f)

	ids, err := x.Search(context.Background(), "u1", "milk", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2", "t1"}, ids)
	assert.Equal(t, "/tasks/_search", f.last().path)
}

func TestTaskIndex_SearchError(t *testing.T) {
	f := &fakeCluster{respond: func(*http.Request) (int, string) {
		return http.StatusInternalServerError, `{"error":"boom"}`
	}}
	x := newIndex(t, f)

	_, err := x.Search(context.Background(), "u1", "milk", 10)
	assert.Error(t, err)
}

func TestTaskIndex_EnsureIndexCreatesWhenMissing(t *testing.T) {
	f := &fakeCluster{respond: func(r *http.Request) (int, string) {
		if r.Method == http.MethodHead {
			return http.StatusNotFound, ``
		}
		return http.StatusOK, `{"acknowledged":true}`
	}}
	x := newIndex(t, f)

	require.NoError(t, x.EnsureIndex(context.Background()))

	got := f.last()
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/tasks", got.path)
	assert.Contains(t, got.body, "mappings")
}
