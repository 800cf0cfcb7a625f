package handler

import (
	"net/http"

	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/repository"
	"github.com/opsdesk/admin-api/internal/service"
	"go.uber.org/zap"
)

type ClientHandler struct {
	clientService *service.ClientService
	logger        *zap.Logger
}

func NewClientHandler(clientService *service.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		logger:        logger,
	}
}

// List godoc
// @Summary List clients
// @Tags Clients
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search name, company or email"
// @Param status query string false "Filter by status" Enums(active, inactive, prospective)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ClientDTO}
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients [get]
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	filters := &repository.ClientFilters{
		Search: r.URL.Query().Get("search"),
		Status: queryEnum[domain.ClientStatus](r, "status"),
	}
	result, err := h.clientService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get client by ID
// @Tags Clients
// @Produce json
// @Param id path int true "Client ID"
// @Success 200 {object} domain.ClientDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id} [get]
func (h *ClientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "client")
	if !ok {
		return
	}
	client, err := h.clientService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

// Create godoc
// @Summary Create client
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body domain.CreateClientRequest true "Client data"
// @Success 201 {object} domain.ClientDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients [post]
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateClientRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	client, err := h.clientService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, client)
}

// Update godoc
// @Summary Update client
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path int true "Client ID"
// @Param request body domain.UpdateClientRequest true "Client data"
// @Success 200 {object} domain.ClientDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "client")
	if !ok {
		return
	}
	var req domain.UpdateClientRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	client, err := h.clientService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

// Delete godoc
// @Summary Delete client
// @Tags Clients
// @Param id path int true "Client ID"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "client")
	if !ok {
		return
	}
	if err := h.clientService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkDelete godoc
// @Summary Delete several clients
// @Description Best-effort delete. Missing records are skipped, failures are reported.
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body domain.BulkActionRequest true "Client IDs"
// @Success 200 {object} domain.BatchResult
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/bulk-delete [post]
func (h *ClientHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.clientService.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
