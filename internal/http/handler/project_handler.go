package handler

import (
	"net/http"
	"time"

	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/repository"
	"github.com/opsdesk/admin-api/internal/service"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	logger         *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// List godoc
// @Summary List projects
// @Description Get paginated list of projects with optional filters
// @Tags Projects
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search name or description"
// @Param status query string false "Filter by status" Enums(planning, in_progress, review, completed, cancelled)
// @Param priority query string false "Filter by priority" Enums(low, medium, high, urgent)
// @Param clientId query int false "Filter by client"
// @Param assignedTo query int false "Filter by assignee"
// @Param overdue query bool false "Only overdue projects"
// @Param sortBy query string false "Sort field" Enums(createdAt, dueDate, name, priority, status)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ProjectDTO}
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	filters := &repository.ProjectFilters{
		Search:     r.URL.Query().Get("search"),
		Status:     queryEnum[domain.ProjectStatus](r, "status"),
		Priority:   queryEnum[domain.Priority](r, "priority"),
		ClientID:   queryUint(r, "clientId"),
		AssignedTo: queryUint(r, "assignedTo"),
	}
	if overdue := queryBool(r, "overdue"); overdue != nil && *overdue {
		now := time.Now().UTC()
		filters.OverdueAt = &now
	}

	result, err := h.projectService.List(r.Context(), page, pageSize, filters, parseSort(r))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Options godoc
// @Summary Project options for a client
// @Description Id and name pairs of the client's projects, for dependent selects
// @Tags Projects
// @Produce json
// @Param clientId query int true "Client ID"
// @Success 200 {array} domain.ProjectOptionDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/options [get]
func (h *ProjectHandler) Options(w http.ResponseWriter, r *http.Request) {
	clientID := queryUint(r, "clientId")
	if clientID == nil {
		respondWithError(w, http.StatusBadRequest, "clientId is required")
		return
	}
	options, err := h.projectService.OptionsForClient(r.Context(), *clientID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, options)
}

// GetByID godoc
// @Summary Get project by ID
// @Tags Projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} domain.ProjectDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "project")
	if !ok {
		return
	}
	project, err := h.projectService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// Create godoc
// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body domain.CreateProjectRequest true "Project data"
// @Success 201 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	project, err := h.projectService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, project)
}

// Update godoc
// @Summary Update project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param request body domain.UpdateProjectRequest true "Project data"
// @Success 200 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "project")
	if !ok {
		return
	}
	var req domain.UpdateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	project, err := h.projectService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// Delete godoc
// @Summary Delete project
// @Tags Projects
// @Param id path int true "Project ID"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "project")
	if !ok {
		return
	}
	if err := h.projectService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkDelete godoc
// @Summary Delete several projects
// @Description Best-effort delete. Missing records are skipped, failures are reported.
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body domain.BulkActionRequest true "Project IDs"
// @Success 200 {object} domain.BatchResult
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/bulk-delete [post]
func (h *ProjectHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.projectService.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
