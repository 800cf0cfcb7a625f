package handler

import (
	"net/http"

	"github.com/opsdesk/admin-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// @Summary Get dashboard stats
// @Description Returns four stat cards chosen by the caller's role.
// @Description
// @Description - manager: clients, active projects, outstanding invoices, active employees
// @Description - content_writer: pending and approved content, own projects, clients
// @Description - designer: open, overdue and recently completed tasks, projects with own tasks
// @Description - hr: employees, hires this month, work anniversaries, departments
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardDTO
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dashboard/stats [get]
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.GetStats(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
