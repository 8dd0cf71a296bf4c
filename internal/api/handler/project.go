package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/peopleregistry/peopleregistry/internal/api/models"
	"github.com/peopleregistry/peopleregistry/internal/api/response"
	"github.com/peopleregistry/peopleregistry/internal/project"
)

// ProjectHandler handles project CRUD endpoints.
type ProjectHandler struct {
	projectService *project.Service
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *project.Service) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// List handles GET /v1/projects - paginated project listing.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 20, 100)
	cursor := r.URL.Query().Get("cursor")

	page, err := h.projectService.List(r.Context(), limit, cursor)
	if err != nil {
		response.InternalError(w, r, "failed to list projects")
		return
	}

	response.JSON(w, r, http.StatusOK, page)
}

// Get handles GET /v1/projects/{projectId}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")

	p, err := h.projectService.Get(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			response.NotFound(w, r, "project not found")
			return
		}
		response.InternalError(w, r, "failed to fetch project")
		return
	}

	response.JSON(w, r, http.StatusOK, p)
}

// Create handles POST /v1/projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ProjectCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	p, err := h.projectService.Create(r.Context(), &req)
	if err != nil {
		var validationErr *project.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "validation error", validationErr.Errors)
			return
		}
		response.InternalError(w, r, "failed to create project")
		return
	}

	response.Created(w, r, "/v1/projects/"+p.ID, p)
}

// Update handles PATCH /v1/projects/{projectId} - partial update.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")

	var req models.ProjectUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	p, err := h.projectService.Update(r.Context(), projectID, &req)
	if err != nil {
		var validationErr *project.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "validation error", validationErr.Errors)
			return
		}
		if errors.Is(err, project.ErrProjectNotFound) {
			response.NotFound(w, r, "project not found")
			return
		}
		response.InternalError(w, r, "failed to update project")
		return
	}

	response.JSON(w, r, http.StatusOK, p)
}

// Delete handles DELETE /v1/projects/{projectId}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")

	if err := h.projectService.Delete(r.Context(), projectID); err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			response.NotFound(w, r, "project not found")
			return
		}
		response.InternalError(w, r, "failed to delete project")
		return
	}

	response.NoContent(w, r)
}
