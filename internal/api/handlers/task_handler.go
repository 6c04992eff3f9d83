package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/tasktrack-be/internal/api/respond"
	"github.com/isdelr/tasktrack-be/internal/models"
	"github.com/isdelr/tasktrack-be/internal/services"
	"github.com/isdelr/tasktrack-be/internal/validation"
)

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	service services.TaskServiceProvider
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service services.TaskServiceProvider) *TaskHandler {
	return &TaskHandler{service: service}
}

// GetForProject lists the tasks of the project in the path.
func (h *TaskHandler) GetForProject(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.ListForProject(r.Context(), identity(r).UserID, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.List(w, tasks, len(tasks))
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.Get(r.Context(), identity(r).UserID, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Success(w, http.StatusOK, task)
}

// Create adds a task to the project in the path. The body must name a project
// as well, but the path decides where the task goes.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, _ := validation.Payload[models.TaskRequest](r.Context())

	task, err := h.service.Create(r.Context(), identity(r).UserID, chi.URLParam(r, "id"), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Success(w, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, _ := validation.Payload[models.TaskUpdateRequest](r.Context())

	task, err := h.service.Update(r.Context(), identity(r).UserID, chi.URLParam(r, "id"), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Success(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), identity(r).UserID, chi.URLParam(r, "id")); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Success(w, http.StatusOK, struct{}{})
}
