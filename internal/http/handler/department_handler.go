package handler

import (
	"net/http"

	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/service"
	"go.uber.org/zap"
)

type DepartmentHandler struct {
	departmentService *service.DepartmentService
	logger            *zap.Logger
}

func NewDepartmentHandler(departmentService *service.DepartmentService, logger *zap.Logger) *DepartmentHandler {
	return &DepartmentHandler{
		departmentService: departmentService,
		logger:            logger,
	}
}

// @Summary List departments
// @Tags Departments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search name"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.DepartmentDTO}
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /departments [get]
func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	result, err := h.departmentService.List(r.Context(), page, pageSize, r.URL.Query().Get("search"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Get department by ID
// @Tags Departments
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} domain.DepartmentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /departments/{id} [get]
func (h *DepartmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "department")
	if !ok {
		return
	}
	dept, err := h.departmentService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, dept)
}

// @Summary Create department
// @Tags Departments
// @Accept json
// @Produce json
// @Param request body domain.CreateDepartmentRequest true "Department data"
// @Success 201 {object} domain.DepartmentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /departments [post]
func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDepartmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	dept, err := h.departmentService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, dept)
}

// @Summary Update department
// @Tags Departments
// @Accept json
// @Produce json
// @Param id path int true "Department ID"
// @Param request body domain.UpdateDepartmentRequest true "Department data"
// @Success 200 {object} domain.DepartmentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /departments/{id} [put]
func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "department")
	if !ok {
		return
	}
	var req domain.UpdateDepartmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	dept, err := h.departmentService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, dept)
}

// @Summary Delete department
// @Description Fails with 409 while employees still belong to the department
// @Tags Departments
// @Param id path int true "Department ID"
// @Success 204
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /departments/{id} [delete]
func (h *DepartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "department")
	if !ok {
		return
	}
	if err := h.departmentService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkDelete godoc
// @Summary Delete several departments
// @Description Best-effort delete. Missing records and departments that still have employees are skipped.
// @Tags Departments
// @Accept json
// @Produce json
// @Param request body domain.BulkActionRequest true "Department IDs"
// @Success 200 {object} domain.BatchResult
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /departments/bulk-delete [post]
func (h *DepartmentHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.departmentService.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
