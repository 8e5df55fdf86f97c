package web

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nissyi-gh/flowboard/internal/model"
	"github.com/nissyi-gh/flowboard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*store.TaskStore, http.Handler, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	s := store.New()
	srv := NewServer(s, log.New(&logs, "", 0))
	srv.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	return s, srv.Handler(), &logs
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCreateAndBoard(t *testing.T) {
	_, h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/tasks", `{"title":"Buy milk","deadline":"2099-01-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[taskJSON](t, rec)
	assert.Equal(t, "pending", created.Status)
	assert.NotEmpty(t, created.ID)

	rec = do(t, h, http.MethodGet, "/api/board", "")
	require.Equal(t, http.StatusOK, rec.Code)
	board := decode[boardJSON](t, rec)
	require.Len(t, board.Pending, 1)
	assert.Equal(t, "Buy milk", board.Pending[0].Title)
	assert.Equal(t, "2099-01-01", board.Pending[0].Deadline)
	assert.NotNil(t, board.Removed, "empty lists encode as []")
}

func TestCreateValidation(t *testing.T) {
	s, h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/tasks", `{"title":"  ","deadline":"tomorrow"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, rec)
	assert.Equal(t, "required", body.Fields["title"])
	assert.Contains(t, body.Fields["deadline"], "invalid date")
	assert.Zero(t, s.Len())

	rec = do(t, h, http.MethodPost, "/api/tasks", `{"title":"x","colour":"red"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusActions(t *testing.T) {
	s, h, _ := newTestServer(t)
	task := s.Create(model.TaskInput{Title: "a"})

	rec := do(t, h, http.MethodPost, "/api/tasks/"+task.ID+"/complete", "")
	assert.True(t, decode[resultJSON](t, rec).OK)
	got, _ := s.Get(task.ID)
	assert.Equal(t, model.StatusCompleted, got.Status)

	rec = do(t, h, http.MethodPost, "/api/tasks/"+task.ID+"/remove", "")
	assert.True(t, decode[resultJSON](t, rec).OK)
	got, _ = s.Get(task.ID)
	assert.Equal(t, model.StatusRemoved, got.Status)

	rec = do(t, h, http.MethodPost, "/api/tasks/"+task.ID+"/status", `{"status":"pending"}`)
	assert.True(t, decode[resultJSON](t, rec).OK)
	got, _ = s.Get(task.ID)
	assert.Equal(t, model.StatusPending, got.Status)

	rec = do(t, h, http.MethodPost, "/api/tasks/"+task.ID+"/status", `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownIDIsNotAnError(t *testing.T) {
	s, h, _ := newTestServer(t)
	s.Create(model.TaskInput{Title: "a"})
	before := s.List()

	for _, path := range []string{"/api/tasks/missing/complete", "/api/tasks/missing/remove"} {
		rec := do(t, h, http.MethodPost, path, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decode[resultJSON](t, rec).OK)
	}
	rec := do(t, h, http.MethodPut, "/api/tasks/missing", `{"title":"x"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[resultJSON](t, rec).OK)

	assert.Equal(t, before, s.List())

	rec = do(t, h, http.MethodGet, "/api/tasks/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateAndHistory(t *testing.T) {
	s, h, _ := newTestServer(t)
	task := s.Create(model.TaskInput{Title: "a"})

	rec := do(t, h, http.MethodPut, "/api/tasks/"+task.ID, `{"title":"b","description":"more"}`)
	require.True(t, decode[resultJSON](t, rec).OK)

	rec = do(t, h, http.MethodGet, "/api/tasks/"+task.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Task    taskJSON      `json:"task"`
		History []historyJSON `json:"history"`
	}](t, rec)
	assert.Equal(t, "b", body.Task.Title)
	assert.Equal(t, "pending", body.Task.Status)
	require.Len(t, body.History, 2)
	assert.Equal(t, store.EventUpdated, body.History[1].Event)
}

func TestDrop(t *testing.T) {
	s, h, _ := newTestServer(t)
	task := s.Create(model.TaskInput{Title: "a"})

	rec := do(t, h, http.MethodPost, "/api/drop", `{"task_id":"`+task.ID+`","source":{"list":"pending","index":0}}`)
	assert.False(t, decode[resultJSON](t, rec).OK)

	rec = do(t, h, http.MethodPost, "/api/drop", `{"task_id":"`+task.ID+`","source":{"list":"pending","index":0},"destination":{"list":"overdue","index":0}}`)
	assert.True(t, decode[resultJSON](t, rec).OK)
	got, _ := s.Get(task.ID)
	assert.Equal(t, model.StatusOverdue, got.Status)
}

func TestRefreshOverdue(t *testing.T) {
	s, h, _ := newTestServer(t)
	d := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	task := s.Create(model.TaskInput{Title: "old", Deadline: &d})

	rec := do(t, h, http.MethodPost, "/api/overdue/refresh", "")
	assert.Equal(t, 1, decode[map[string]int](t, rec)["changed"])
	got, _ := s.Get(task.ID)
	assert.Equal(t, model.StatusOverdue, got.Status)
}

func TestImport(t *testing.T) {
	s, h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/import", "tasks:\n  - title: one\n  - title: two\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[map[string]int](t, rec)["imported"])
	assert.Equal(t, 2, s.Len())

	rec = do(t, h, http.MethodPost, "/api/import", "tasks: []\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMiddlewareSetsRequestIDAndLogs(t *testing.T) {
	_, h, logs := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
	req.Header.Set("X-Request-Id", "abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc123", rec.Header().Get("X-Request-Id"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(logs.Bytes()), &entry))
	assert.Equal(t, "http_request", entry["msg"])
	assert.Equal(t, "abc123", entry["request_id"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])
}

func TestMiddlewareGeneratesRequestID(t *testing.T) {
	_, h, logs := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/board", "")

	rid := rec.Header().Get("X-Request-Id")
	_, err := uuid.Parse(rid)
	require.NoError(t, err, rid)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(logs.Bytes()), &entry))
	assert.Equal(t, rid, entry["request_id"])
}

func TestRecoverReturnsJSON(t *testing.T) {
	var logs bytes.Buffer
	logger := log.New(&logs, "", 0)
	h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), withRequestID, withRecover(logger))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/board", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
	assert.Contains(t, logs.String(), "panic_recovered")
}
