package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/tasktrack-be/internal/api/respond"
	"github.com/isdelr/tasktrack-be/internal/models"
	"github.com/isdelr/tasktrack-be/internal/services"
	"github.com/isdelr/tasktrack-be/internal/validation"
)

// ProjectHandler handles HTTP requests for projects.
type ProjectHandler struct {
	service services.ProjectServiceProvider
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(service services.ProjectServiceProvider) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// GetAll lists the caller's projects.
func (h *ProjectHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.List(r.Context(), identity(r).UserID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.List(w, projects, len(projects))
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.Get(r.Context(), identity(r).UserID, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Success(w, http.StatusOK, project)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, _ := validation.Payload[models.ProjectRequest](r.Context())

	project, err := h.service.Create(r.Context(), identity(r).UserID, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Success(w, http.StatusCreated, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, _ := validation.Payload[models.ProjectUpdateRequest](r.Context())

	project, err := h.service.Update(r.Context(), identity(r).UserID, chi.URLParam(r, "id"), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Success(w, http.StatusOK, project)
}

// Delete removes a project together with its tasks.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), identity(r).UserID, chi.URLParam(r, "id")); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Success(w, http.StatusOK, struct{}{})
}
