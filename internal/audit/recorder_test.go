package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"chantier_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewEvent(t *testing.T) {
	e := NewEvent(EventSitesSynced, "u1", map[string]interface{}{"chantierIds": []string{"a"}})
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, EventSitesSynced, e.Type)
	assert.False(t, e.OccurredAt.IsZero())
	assert.Equal(t, "admin-uid", e.WithActor("admin-uid").Actor)
	assert.Empty(t, e.Actor)
}

func TestLogRecorder_Record(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := NewLogRecorder(zap.New(core))

	require.NoError(t, r.Record(context.Background(), NewEvent(EventRoleInferred, "u1", nil)))
	entries := logs.FilterMessage("Audit event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "role_inferred", entries[0].ContextMap()["type"])
}

func TestNewRecorder_FallsBackToLog(t *testing.T) {
	r := NewRecorder(&config.Config{}, zap.NewNop())
	_, ok := r.(*logRecorder)
	assert.True(t, ok)

	r = NewRecorder(&config.Config{ElasticsearchURL: "http://127.0.0.1:1", AuditIndex: "access_audit"}, zap.NewNop())
	_, ok = r.(*logRecorder)
	assert.True(t, ok)
}

// fakeElasticsearch answers just enough of the API for the recorder.
type fakeElasticsearch struct {
	mu      sync.Mutex
	created bool
	indexed map[string]Event
}

func (f *fakeElasticsearch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		_, _ = w.Write([]byte(`{"version":{"number":"8.18.0"},"tagline":"You Know, for Search"}`))
	case r.Method == http.MethodHead:
		if !f.created {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && strings.Count(r.URL.Path, "/") == 1:
		f.created = true
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	case strings.Contains(r.URL.Path, "/_doc/"):
		var e Event
		_ = json.NewDecoder(r.Body).Decode(&e)
		f.indexed[e.ID] = e
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func TestElasticRecorder_CreatesIndexAndIndexes(t *testing.T) {
	fake := &fakeElasticsearch{indexed: map[string]Event{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	r := NewRecorder(&config.Config{ElasticsearchURL: srv.URL, AuditIndex: "access_audit"}, zap.NewNop())
	_, ok := r.(*elasticRecorder)
	require.True(t, ok)
	assert.True(t, fake.created)

	event := NewEvent(EventEmailBackfilled, "u1", map[string]interface{}{"email": "a@b.fr"})
	require.NoError(t, r.Record(context.Background(), event))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, "u1", fake.indexed[event.ID].UID)
}
