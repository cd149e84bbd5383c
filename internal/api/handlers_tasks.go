package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"taskpro/internal/service"
	"taskpro/internal/validate"
)

// TaskHandler serves the owner-scoped task table.
type TaskHandler struct {
	store  Store
	logger *slog.Logger
}

type affectedResponse struct {
	Affected int64 `json:"affected"`
}

// ownerOf resolves the owner a request acts on. A user_id that names
// someone other than the caller is rejected.
func ownerOf(w http.ResponseWriter, r *http.Request, claimed string) (string, bool) {
	caller := identityFrom(r.Context()).UserID
	if claimed != "" && claimed != caller {
		writeError(w, http.StatusForbidden, "forbidden")
		return "", false
	}
	return caller, true
}

// List handles GET /tasks?user_id=
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerOf(w, r, r.URL.Query().Get("user_id"))
	if !ok {
		return
	}
	tasks, err := h.store.ListTasks(r.Context(), owner)
	if err != nil {
		h.logger.Error("list tasks failed", "error", err)
		writeServiceError(w, err)
		return
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create handles POST /tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	row, ok := h.decodeRow(w, r)
	if !ok {
		return
	}
	task, err := h.store.InsertTask(r.Context(), row)
	if err != nil {
		h.logger.Error("insert task failed", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// Update handles PATCH /tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	row, ok := h.decodeRow(w, r)
	if !ok {
		return
	}
	n, err := h.store.UpdateTask(r.Context(), chi.URLParam(r, "id"), row)
	if err != nil {
		h.logger.Error("update task failed", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, affectedResponse{Affected: n})
}

// Delete handles DELETE /tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerOf(w, r, r.URL.Query().Get("user_id"))
	if !ok {
		return
	}
	n, err := h.store.DeleteTask(r.Context(), chi.URLParam(r, "id"), owner)
	if err != nil {
		h.logger.Error("delete task failed", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, affectedResponse{Affected: n})
}

// decodeRow reads a task row, pins it to the caller and re-checks the
// rules the client is expected to have applied.
func (h *TaskHandler) decodeRow(w http.ResponseWriter, r *http.Request) (service.TaskRow, bool) {
	var row service.TaskRow
	if err := decodeJSON(r, &row); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return row, false
	}
	owner, ok := ownerOf(w, r, row.UserID)
	if !ok {
		return row, false
	}
	row.UserID = owner
	if row.Status == "" {
		row.Status = service.StatusPending
	}
	if row.Priority == "" {
		row.Priority = service.PriorityMedium
	}

	in := validate.TaskInput{Title: row.Title, Status: row.Status, Priority: row.Priority}
	if row.Description != nil {
		in.Description = *row.Description
	}
	if err := in.Validate(); err != nil {
		var fe *validate.FieldError
		if errors.As(err, &fe) {
			writeError(w, http.StatusBadRequest, fe.Message)
		} else {
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return row, false
	}
	return row, true
}

// ProfileHandler serves the caller's own profile row.
type ProfileHandler struct {
	store Store
}

// Get handles GET /profiles/{id}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerOf(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	p, err := h.store.GetProfile(r.Context(), owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
