package handler

import (
	"net/http"

	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/repository"
	"github.com/opsdesk/admin-api/internal/service"
	"go.uber.org/zap"
)

type EmployeeHandler struct {
	employeeService *service.EmployeeService
	logger          *zap.Logger
}

func NewEmployeeHandler(employeeService *service.EmployeeService, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		employeeService: employeeService,
		logger:          logger,
	}
}

// @Summary List employees
// @Tags Employees
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search name, email, code or position"
// @Param status query string false "Filter by status" Enums(active, inactive, terminated)
// @Param departmentId query int false "Filter by department"
// @Param sortBy query string false "Sort field" Enums(createdAt, lastName, hireDate, position)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.EmployeeDTO}
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /employees [get]
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	filters := &repository.EmployeeFilters{
		Search:       r.URL.Query().Get("search"),
		Status:       queryEnum[domain.EmployeeStatus](r, "status"),
		DepartmentID: queryUint(r, "departmentId"),
	}
	result, err := h.employeeService.List(r.Context(), page, pageSize, filters, parseSort(r))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Get employee by ID
// @Tags Employees
// @Produce json
// @Param id path int true "Employee ID"
// @Success 200 {object} domain.EmployeeDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /employees/{id} [get]
func (h *EmployeeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "employee")
	if !ok {
		return
	}
	emp, err := h.employeeService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, emp)
}

// @Summary Create employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param request body domain.CreateEmployeeRequest true "Employee data"
// @Success 201 {object} domain.EmployeeDTO
// @Failure 409 {object} domain.APIError "Employee code or email already in use"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /employees [post]
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateEmployeeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	emp, err := h.employeeService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, emp)
}

// @Summary Update employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path int true "Employee ID"
// @Param request body domain.UpdateEmployeeRequest true "Employee data"
// @Success 200 {object} domain.EmployeeDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /employees/{id} [put]
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "employee")
	if !ok {
		return
	}
	var req domain.UpdateEmployeeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	emp, err := h.employeeService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, emp)
}

// @Summary Delete employee
// @Tags Employees
// @Param id path int true "Employee ID"
// @Success 204
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /employees/{id} [delete]
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "employee")
	if !ok {
		return
	}
	if err := h.employeeService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkDelete godoc
// @Summary Delete several employees
// @Description Best-effort delete. Missing records are skipped, failures are reported.
// @Tags Employees
// @Accept json
// @Produce json
// @Param request body domain.BulkActionRequest true "Employee IDs"
// @Success 200 {object} domain.BatchResult
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /employees/bulk-delete [post]
func (h *EmployeeHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.employeeService.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
