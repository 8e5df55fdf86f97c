// Package web exposes the task store's action interface as a JSON API.
package web

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/nissyi-gh/flowboard/internal/dnd"
	"github.com/nissyi-gh/flowboard/internal/form"
	"github.com/nissyi-gh/flowboard/internal/importer"
	"github.com/nissyi-gh/flowboard/internal/model"
	"github.com/nissyi-gh/flowboard/internal/store"
)

const maxBodyBytes = 1 << 20

type Server struct {
	store  *store.TaskStore
	logger *log.Logger
	now    func() time.Time
}

func NewServer(s *store.TaskStore, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{store: s, logger: logger, now: time.Now}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/board", s.boardHandler)
	mux.HandleFunc("POST /api/tasks", s.createHandler)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskHandler)
	mux.HandleFunc("PUT /api/tasks/{id}", s.updateHandler)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.completeHandler)
	mux.HandleFunc("POST /api/tasks/{id}/remove", s.removeHandler)
	mux.HandleFunc("POST /api/tasks/{id}/status", s.statusHandler)
	mux.HandleFunc("POST /api/drop", s.dropHandler)
	mux.HandleFunc("POST /api/overdue/refresh", s.refreshHandler)
	mux.HandleFunc("POST /api/import", s.importHandler)

	return chain(mux, withRequestID, withRecover(s.logger), withAccessLog(s.logger))
}

type taskJSON struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    string    `json:"deadline,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type historyJSON struct {
	Event   string    `json:"event"`
	Details string    `json:"details"`
	At      time.Time `json:"at"`
}

type boardJSON struct {
	Pending   []taskJSON `json:"pending"`
	Completed []taskJSON `json:"completed"`
	Overdue   []taskJSON `json:"overdue"`
	Removed   []taskJSON `json:"removed"`
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
}

type resultJSON struct {
	OK bool `json:"ok"`
}

func toTaskJSON(t model.Task) taskJSON {
	return taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Deadline:    t.DeadlineString(),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskList(tasks []model.Task) []taskJSON {
	out := make([]taskJSON, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskJSON(t))
	}
	return out
}

func (s *Server) boardHandler(w http.ResponseWriter, r *http.Request) {
	lists := s.store.ByStatus()
	writeJSON(w, http.StatusOK, boardJSON{
		Pending:   toTaskList(lists.Pending),
		Completed: toTaskList(lists.Completed),
		Overdue:   toTaskList(lists.Overdue),
		Removed:   toTaskList(lists.Removed),
	})
}

func (s *Server) taskHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	task, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	history := []historyJSON{}
	for _, h := range s.store.History(id) {
		history = append(history, historyJSON{Event: h.Event, Details: h.Details, At: h.At})
	}

	writeJSON(w, http.StatusOK, struct {
		Task    taskJSON      `json:"task"`
		History []historyJSON `json:"history"`
	}{Task: toTaskJSON(task), History: history})
}

func (s *Server) createHandler(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in, err := form.Validate(req.Title, req.Description, req.Deadline)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	task := s.store.Create(in)
	writeJSON(w, http.StatusCreated, toTaskJSON(task))
}

func (s *Server) updateHandler(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in, err := form.Validate(req.Title, req.Description, req.Deadline)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resultJSON{OK: s.store.Update(r.PathValue("id"), in)})
}

func (s *Server) completeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, resultJSON{OK: s.store.MarkComplete(r.PathValue("id"))})
}

func (s *Server) removeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, resultJSON{OK: s.store.Remove(r.PathValue("id"))})
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := model.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resultJSON{OK: s.store.SetStatus(r.PathValue("id"), status)})
}

func (s *Server) dropHandler(w http.ResponseWriter, r *http.Request) {
	var drop dnd.Drop
	if err := decodeJSON(r, &drop); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resultJSON{OK: dnd.Apply(s.store, drop)})
}

func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	changed := s.store.RefreshOverdue(s.now())
	writeJSON(w, http.StatusOK, map[string]int{"changed": changed})
}

func (s *Server) importHandler(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := importer.Import(s.store, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func writeValidationError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  err.Error(),
		"fields": form.FieldErrors(err),
	})
}
