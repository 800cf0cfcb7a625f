package handler

import (
	"net/http"

	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/repository"
	"github.com/opsdesk/admin-api/internal/service"
	"go.uber.org/zap"
)

type ContentHandler struct {
	contentService *service.ContentService
	logger         *zap.Logger
}

func NewContentHandler(contentService *service.ContentService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
		logger:         logger,
	}
}

// List godoc
// @Summary List content
// @Tags Content
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search title, description or tags"
// @Param type query string false "Filter by type" Enums(image, video, document, marketing_material)
// @Param status query string false "Filter by status" Enums(draft, approved, archived)
// @Param category query string false "Filter by category"
// @Param clientId query int false "Filter by client"
// @Param projectId query int false "Filter by project"
// @Param createdBy query int false "Filter by creator"
// @Param sortBy query string false "Sort field" Enums(createdAt, title, fileSize)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ContentDTO}
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /content [get]
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	filters := &repository.ContentFilters{
		Search:    r.URL.Query().Get("search"),
		Type:      queryEnum[domain.ContentType](r, "type"),
		Status:    queryEnum[domain.ContentStatus](r, "status"),
		Category:  r.URL.Query().Get("category"),
		ClientID:  queryUint(r, "clientId"),
		ProjectID: queryUint(r, "projectId"),
		CreatedBy: queryUint(r, "createdBy"),
	}
	result, err := h.contentService.List(r.Context(), page, pageSize, filters, parseSort(r))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get content by ID
// @Tags Content
// @Produce json
// @Param id path int true "Content ID"
// @Success 200 {object} domain.ContentDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /content/{id} [get]
func (h *ContentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "content")
	if !ok {
		return
	}
	content, err := h.contentService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, content)
}

// Create godoc
// @Summary Create content
// @Description Registers an already stored file as a draft content item
// @Tags Content
// @Accept json
// @Produce json
// @Param request body domain.CreateContentRequest true "Content data"
// @Success 201 {object} domain.ContentDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /content [post]
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateContentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	content, err := h.contentService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, content)
}

// Update godoc
// @Summary Update content
// @Tags Content
// @Accept json
// @Produce json
// @Param id path int true "Content ID"
// @Param request body domain.UpdateContentRequest true "Content data"
// @Success 200 {object} domain.ContentDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /content/{id} [put]
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "content")
	if !ok {
		return
	}
	var req domain.UpdateContentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	content, err := h.contentService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, content)
}

// Approve godoc
// @Summary Approve content
// @Description Moves a draft to approved and records the approver
// @Tags Content
// @Produce json
// @Param id path int true "Content ID"
// @Success 200 {object} domain.ContentDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Content is not a draft"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /content/{id}/approve [post]
func (h *ContentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "content")
	if !ok {
		return
	}
	content, err := h.contentService.Approve(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, content)
}

// BulkApprove godoc
// @Summary Approve several content items
// @Tags Content
// @Accept json
// @Produce json
// @Param request body domain.BulkActionRequest true "Content IDs"
// @Success 200 {object} domain.BatchResult
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /content/bulk-approve [post]
func (h *ContentHandler) BulkApprove(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.contentService.BulkApprove(r.Context(), req.IDs)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Delete godoc
// @Summary Delete content
// @Description Deletes the record and its stored file
// @Tags Content
// @Param id path int true "Content ID"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /content/{id} [delete]
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "content")
	if !ok {
		return
	}
	if err := h.contentService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkDelete godoc
// @Summary Delete several content items
// @Tags Content
// @Accept json
// @Produce json
// @Param request body domain.BulkActionRequest true "Content IDs"
// @Success 200 {object} domain.BatchResult
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /content/bulk-delete [post]
func (h *ContentHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.contentService.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
