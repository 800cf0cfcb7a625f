package handler

import (
	"net/http"

	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/repository"
	"github.com/opsdesk/admin-api/internal/service"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	documentService *service.DocumentService
	logger          *zap.Logger
}

func NewDocumentHandler(documentService *service.DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          logger,
	}
}

// @Summary List documents
// @Tags Documents
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search title, description or file name"
// @Param category query string false "Filter by category" Enums(contract, proposal, invoice, receipt, other)
// @Param clientId query int false "Filter by client"
// @Param projectId query int false "Filter by project"
// @Param confidential query bool false "Filter by confidentiality"
// @Param sortBy query string false "Sort field" Enums(createdAt, title, fileSize)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.DocumentDTO}
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents [get]
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	filters := &repository.DocumentFilters{
		Search:         r.URL.Query().Get("search"),
		Category:       queryEnum[domain.DocumentCategory](r, "category"),
		ClientID:       queryUint(r, "clientId"),
		ProjectID:      queryUint(r, "projectId"),
		IsConfidential: queryBool(r, "confidential"),
	}
	result, err := h.documentService.List(r.Context(), page, pageSize, filters, parseSort(r))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Get document metadata
// @Tags Documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} domain.DocumentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "document")
	if !ok {
		return
	}
	doc, err := h.documentService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// @Summary Register document
// @Description Requires upload_documents
// @Tags Documents
// @Accept json
// @Produce json
// @Param request body domain.CreateDocumentRequest true "Document metadata"
// @Success 201 {object} domain.DocumentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents [post]
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDocumentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	doc, err := h.documentService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, doc)
}

// @Summary Update document
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param request body domain.UpdateDocumentRequest true "Document metadata"
// @Success 200 {object} domain.DocumentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id} [put]
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "document")
	if !ok {
		return
	}
	var req domain.UpdateDocumentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	doc, err := h.documentService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// @Summary Delete document
// @Description Deletes the record and its stored file
// @Tags Documents
// @Param id path int true "Document ID"
// @Success 204
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "document")
	if !ok {
		return
	}
	if err := h.documentService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Delete several documents
// @Tags Documents
// @Accept json
// @Produce json
// @Param request body domain.BulkActionRequest true "Document IDs"
// @Success 200 {object} domain.BatchResult
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/bulk-delete [post]
func (h *DocumentHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.documentService.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
