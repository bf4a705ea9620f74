package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/taskboard/internal/auth"
	"github.com/sakif/taskboard/internal/service"
)

// TaskHandler manages CRUD operations for the per-user task list.
//
// Every route here sits behind RequireAuth, so the identity in the request
// context is always present. The handler never trusts a user ID from the
// request body or URL — ownership always comes from the verified token.
type TaskHandler struct {
	tasks  *service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

// identity pulls the authenticated user out of the request context.
// Returns false (after writing a 401) only if the middleware was bypassed,
// which would be a wiring bug rather than a client error.
func (h *TaskHandler) identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
	}
	return id, ok
}

// HandleList returns all of the authenticated user's tasks, newest first.
//
// HTTP: GET /api/tasks
// Auth: Required
// RESPONSE: 200 {"tasks": [...]}
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(r.Context(), identity.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

// createTaskRequest is the body for task creation. Description is optional.
type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// HandleCreate adds a task to the authenticated user's list.
//
// HTTP: POST /api/tasks
// Auth: Required
// REQUEST BODY: {"title": "buy milk", "description": "2 liters"}
// RESPONSE: 201 {"message": "...", "task": {...}}
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid task JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	task, err := h.tasks.Create(r.Context(), req.Title, req.Description, identity.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "task created successfully",
		"task":    task,
	})
}

// HandleGet returns a single task owned by the authenticated user.
//
// HTTP: GET /api/tasks/{id}
// Auth: Required
// RESPONSE: 200 {"task": {...}}
//
// A task owned by someone else answers 404, exactly like a task that does
// not exist — the API never confirms another user's task IDs.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), r.PathValue("id"), identity.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"task": task})
}

// HandleUpdate applies a partial update to a task.
//
// HTTP: PUT /api/tasks/{id}
// Auth: Required
// REQUEST BODY: any subset of {"title", "description", "completed"}
// RESPONSE: 200 {"message": "...", "task": {...}}
//
// Omitted fields keep their current values. TaskChanges uses pointer fields
// so the decoder can tell "field absent" apart from "field set to zero" —
// {"completed": false} genuinely un-completes a task.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var changes service.TaskChanges
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		h.logger.Warn("invalid task JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	task, err := h.tasks.Update(r.Context(), r.PathValue("id"), changes, identity.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "task updated successfully",
		"task":    task,
	})
}

// HandleDelete removes a task from the authenticated user's list.
//
// HTTP: DELETE /api/tasks/{id}
// Auth: Required
// RESPONSE: 200 {"message": "..."}
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), r.PathValue("id"), identity.ID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted successfully"})
}
