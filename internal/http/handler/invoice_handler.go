package handler

import (
	"net/http"
	"time"

	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/repository"
	"github.com/opsdesk/admin-api/internal/service"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	itemService    *service.InvoiceItemService
	logger         *zap.Logger
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, itemService *service.InvoiceItemService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		itemService:    itemService,
		logger:         logger,
	}
}

// List godoc
// @Summary List invoices
// @Description Get paginated list of invoices with optional filters
// @Tags Invoices
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search invoice number or notes"
// @Param status query string false "Filter by status" Enums(draft, sent, paid, overdue, cancelled)
// @Param clientId query int false "Filter by client"
// @Param projectId query int false "Filter by project"
// @Param unpaid query bool false "Only draft, sent and overdue invoices"
// @Param overdue query bool false "Only invoices past their due date that are not paid"
// @Param sortBy query string false "Sort field" Enums(createdAt, dueDate, issueDate, totalAmount, invoiceNumber)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.InvoiceDTO}
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices [get]
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	filters := &repository.InvoiceFilters{
		Search:    r.URL.Query().Get("search"),
		Status:    queryEnum[domain.InvoiceStatus](r, "status"),
		ClientID:  queryUint(r, "clientId"),
		ProjectID: queryUint(r, "projectId"),
	}
	if unpaid := queryBool(r, "unpaid"); unpaid != nil {
		filters.Unpaid = *unpaid
	}
	if overdue := queryBool(r, "overdue"); overdue != nil && *overdue {
		now := time.Now().UTC()
		filters.OverdueAt = &now
	}

	result, err := h.invoiceService.List(r.Context(), page, pageSize, filters, parseSort(r))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get invoice by ID
// @Tags Invoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 200 {object} domain.InvoiceDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "invoice")
	if !ok {
		return
	}
	invoice, err := h.invoiceService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}

// Create godoc
// @Summary Create invoice
// @Description Create an invoice. Tax and total are derived from subtotal and tax rate.
// @Tags Invoices
// @Accept json
// @Produce json
// @Param request body domain.CreateInvoiceRequest true "Invoice data"
// @Success 201 {object} domain.InvoiceDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Invoice number already in use"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices [post]
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInvoiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	invoice, err := h.invoiceService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, invoice)
}

// Update godoc
// @Summary Update invoice
// @Description Update an invoice. Tax and total are recomputed.
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path int true "Invoice ID"
// @Param request body domain.UpdateInvoiceRequest true "Invoice data"
// @Success 200 {object} domain.InvoiceDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "invoice")
	if !ok {
		return
	}
	var req domain.UpdateInvoiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	invoice, err := h.invoiceService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}

// Delete godoc
// @Summary Delete invoice
// @Tags Invoices
// @Param id path int true "Invoice ID"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "invoice")
	if !ok {
		return
	}
	if err := h.invoiceService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkDelete godoc
// @Summary Delete several invoices
// @Description Best-effort delete. Missing records are skipped, failures are reported.
// @Tags Invoices
// @Accept json
// @Produce json
// @Param request body domain.BulkActionRequest true "Invoice IDs"
// @Success 200 {object} domain.BatchResult
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/bulk-delete [post]
func (h *InvoiceHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.invoiceService.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ListItems godoc
// @Summary List invoice line items
// @Tags Invoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 200 {array} domain.InvoiceItemDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id}/items [get]
func (h *InvoiceHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	invoiceID, ok := parseID(w, r, "id", "invoice")
	if !ok {
		return
	}
	items, err := h.itemService.List(r.Context(), invoiceID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// CreateItem godoc
// @Summary Add invoice line item
// @Description Amount is computed as quantity times rate
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path int true "Invoice ID"
// @Param request body domain.CreateInvoiceItemRequest true "Line item"
// @Success 201 {object} domain.InvoiceItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id}/items [post]
func (h *InvoiceHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	invoiceID, ok := parseID(w, r, "id", "invoice")
	if !ok {
		return
	}
	var req domain.CreateInvoiceItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	item, err := h.itemService.Create(r.Context(), invoiceID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// UpdateItem godoc
// @Summary Update invoice line item
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path int true "Invoice ID"
// @Param itemId path int true "Item ID"
// @Param request body domain.UpdateInvoiceItemRequest true "Line item"
// @Success 200 {object} domain.InvoiceItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id}/items/{itemId} [put]
func (h *InvoiceHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	invoiceID, ok := parseID(w, r, "id", "invoice")
	if !ok {
		return
	}
	itemID, ok := parseID(w, r, "itemId", "item")
	if !ok {
		return
	}
	var req domain.UpdateInvoiceItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	item, err := h.itemService.Update(r.Context(), invoiceID, itemID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// DeleteItem godoc
// @Summary Delete invoice line item
// @Tags Invoices
// @Param id path int true "Invoice ID"
// @Param itemId path int true "Item ID"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id}/items/{itemId} [delete]
func (h *InvoiceHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	invoiceID, ok := parseID(w, r, "id", "invoice")
	if !ok {
		return
	}
	itemID, ok := parseID(w, r, "itemId", "item")
	if !ok {
		return
	}
	if err := h.itemService.Delete(r.Context(), invoiceID, itemID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkDeleteItems godoc
// @Summary Delete several line items of an invoice
// @Description Best-effort delete. Items not on the invoice are skipped.
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path int true "Invoice ID"
// @Param request body domain.BulkActionRequest true "Item IDs"
// @Success 200 {object} domain.BatchResult
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id}/items/bulk-delete [post]
func (h *InvoiceHandler) BulkDeleteItems(w http.ResponseWriter, r *http.Request) {
	invoiceID, ok := parseID(w, r, "id", "invoice")
	if !ok {
		return
	}
	var req domain.BulkActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.itemService.BulkDelete(r.Context(), invoiceID, req.IDs)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
