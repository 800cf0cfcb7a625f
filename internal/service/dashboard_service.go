package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/opsdesk/admin-api/internal/auth"
	"github.com/opsdesk/admin-api/internal/derive"
	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/policy"
	"github.com/opsdesk/admin-api/internal/repository"
	"go.uber.org/zap"
)

// Stat card tones beyond the derive tones
const (
	tonePrimary = "primary"
	toneInfo    = "info"
)

type DashboardService struct {
	clientRepo     *repository.ClientRepository
	projectRepo    *repository.ProjectRepository
	taskRepo       *repository.TaskRepository
	invoiceRepo    *repository.InvoiceRepository
	employeeRepo   *repository.EmployeeRepository
	departmentRepo *repository.DepartmentRepository
	contentRepo    *repository.ContentRepository
	policy         *policy.Engine
	logger         *zap.Logger
}

func NewDashboardService(
	clientRepo *repository.ClientRepository,
	projectRepo *repository.ProjectRepository,
	taskRepo *repository.TaskRepository,
	invoiceRepo *repository.InvoiceRepository,
	employeeRepo *repository.EmployeeRepository,
	departmentRepo *repository.DepartmentRepository,
	contentRepo *repository.ContentRepository,
	engine *policy.Engine,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		clientRepo:     clientRepo,
		projectRepo:    projectRepo,
		taskRepo:       taskRepo,
		invoiceRepo:    invoiceRepo,
		employeeRepo:   employeeRepo,
		departmentRepo: departmentRepo,
		contentRepo:    contentRepo,
		policy:         engine,
		logger:         logger,
	}
}

// statQuery produces one card; count is evaluated lazily so a failing query
// aborts the remaining ones
type statQuery struct {
	label       string
	description string
	tone        string
	count       func(ctx context.Context) (int64, error)
}

// GetStats returns the stat cards for the caller's role
func (s *DashboardService) GetStats(ctx context.Context) (*domain.DashboardDTO, error) {
	user, err := requirePermission(ctx, s.policy, domain.PermViewDashboard)
	if err != nil {
		return nil, err
	}

	queries := s.queriesFor(user)
	stats := make([]domain.StatDTO, 0, len(queries))
	for _, q := range queries {
		n, err := q.count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to compute %q: %w", q.label, err)
		}
		stats = append(stats, domain.StatDTO{
			Label:       q.label,
			Value:       strconv.FormatInt(n, 10),
			Description: q.description,
			Tone:        q.tone,
		})
	}

	return &domain.DashboardDTO{Role: user.Role, Stats: stats}, nil
}

func (s *DashboardService) queriesFor(user *auth.UserContext) []statQuery {
	now := nowUTC()
	switch user.Role {
	case domain.RoleManager:
		return []statQuery{
			{"Total Clients", "Active and prospective clients", string(derive.ToneSuccess), s.clientRepo.Count},
			{"Active Projects", "Currently in progress", tonePrimary, func(ctx context.Context) (int64, error) {
				return s.projectRepo.CountByStatus(ctx, domain.ProjectStatusInProgress)
			}},
			{"Outstanding Invoices", "Awaiting payment", string(derive.ToneWarning), s.invoiceRepo.CountUnpaid},
			{"Active Employees", "Current workforce", toneInfo, s.employeeRepo.CountActive},
		}

	case domain.RoleContentWriter:
		return []statQuery{
			{"Pending Content", "Awaiting approval", string(derive.ToneWarning), func(ctx context.Context) (int64, error) {
				return s.contentRepo.CountByStatus(ctx, domain.ContentStatusDraft)
			}},
			{"Approved Content", "Ready to use", string(derive.ToneSuccess), func(ctx context.Context) (int64, error) {
				return s.contentRepo.CountByStatus(ctx, domain.ContentStatusApproved)
			}},
			{"My Projects", "Projects with my content", tonePrimary, func(ctx context.Context) (int64, error) {
				return s.projectRepo.CountWithContentBy(ctx, user.UserID)
			}},
			{"Total Clients", "Available for projects", toneInfo, s.clientRepo.Count},
		}

	case domain.RoleDesigner:
		return []statQuery{
			{"My Open Tasks", "Tasks to complete", string(derive.ToneWarning), func(ctx context.Context) (int64, error) {
				return s.taskRepo.CountOpenForUser(ctx, user.UserID)
			}},
			{"Overdue Tasks", "Past due date", string(derive.ToneDanger), func(ctx context.Context) (int64, error) {
				return s.taskRepo.CountOverdueForUser(ctx, user.UserID, now)
			}},
			{"Completed This Week", "Tasks finished", string(derive.ToneSuccess), func(ctx context.Context) (int64, error) {
				return s.taskRepo.CountCompletedSince(ctx, user.UserID, repository.StartOfWeek(now))
			}},
			{"Active Projects", "Projects I'm working on", tonePrimary, func(ctx context.Context) (int64, error) {
				return s.projectRepo.CountWithTasksFor(ctx, user.UserID)
			}},
		}

	case domain.RoleHR:
		monthStart := repository.StartOfDay(now).AddDate(0, 0, 1-now.Day())
		return []statQuery{
			{"Total Employees", "Active employees", string(derive.ToneSuccess), s.employeeRepo.CountActive},
			{"New Hires This Month", "Recent additions", toneInfo, func(ctx context.Context) (int64, error) {
				return s.employeeRepo.CountHiredBetween(ctx, monthStart, monthStart.AddDate(0, 1, 0))
			}},
			{"Work Anniversaries", "This month", string(derive.ToneWarning), func(ctx context.Context) (int64, error) {
				return s.employeeRepo.CountAnniversaries(ctx, now)
			}},
			{"Departments", "Company departments", tonePrimary, s.departmentRepo.Count},
		}
	}
	return nil
}
