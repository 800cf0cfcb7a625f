package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/mapper"
	"github.com/opsdesk/admin-api/internal/policy"
	"github.com/opsdesk/admin-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProjectService struct {
	projectRepo *repository.ProjectRepository
	clientRepo  *repository.ClientRepository
	policy      *policy.Engine
	logger      *zap.Logger
}

func NewProjectService(
	projectRepo *repository.ProjectRepository,
	clientRepo *repository.ClientRepository,
	engine *policy.Engine,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		clientRepo:  clientRepo,
		policy:      engine,
		logger:      logger,
	}
}

func (s *ProjectService) List(ctx context.Context, page, pageSize int, filters *repository.ProjectFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewProjects); err != nil {
		return nil, err
	}
	page, pageSize = clampPage(page, pageSize)

	projects, total, err := s.projectRepo.List(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	now := nowUTC()
	dtos := make([]domain.ProjectDTO, len(projects))
	for i := range projects {
		dtos[i] = mapper.ToProjectDTO(&projects[i], now)
	}
	return paginated(dtos, total, page, pageSize), nil
}

func (s *ProjectService) GetByID(ctx context.Context, id uint) (*domain.ProjectDTO, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewProjects); err != nil {
		return nil, err
	}
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("project", err)
	}
	dto := mapper.ToProjectDTO(project, nowUTC())
	return &dto, nil
}

// OptionsForClient returns the projects selectable once a client has been chosen
func (s *ProjectService) OptionsForClient(ctx context.Context, clientID uint) ([]domain.ProjectOptionDTO, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewProjects); err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project options: %w", err)
	}
	options := make([]domain.ProjectOptionDTO, len(projects))
	for i := range projects {
		options[i] = mapper.ToProjectOptionDTO(&projects[i])
	}
	return options, nil
}

func (s *ProjectService) Create(ctx context.Context, req *domain.CreateProjectRequest) (*domain.ProjectDTO, error) {
	user, err := requireCreate(ctx, s.policy, domain.ResourceProjects)
	if err != nil {
		return nil, err
	}

	project := &domain.Project{CreatedBy: user.UserID}
	if err := s.applyRequest(ctx, project, req); err != nil {
		return nil, err
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("project created",
		zap.Uint("project_id", project.ID),
		zap.Uint("client_id", project.ClientID),
		zap.Uint("user_id", user.UserID))

	return s.GetByID(ctx, project.ID)
}

func (s *ProjectService) Update(ctx context.Context, id uint, req *domain.UpdateProjectRequest) (*domain.ProjectDTO, error) {
	user, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("project", err)
	}
	if !s.policy.CanEdit(user.Role, domain.ResourceProjects, project, user.UserID) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, domain.PermEditProjects)
	}

	if err := s.applyRequest(ctx, project, req); err != nil {
		return nil, err
	}
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.logger.Info("project updated",
		zap.Uint("project_id", project.ID),
		zap.String("status", string(project.Status)),
		zap.Uint("user_id", user.UserID))

	return s.GetByID(ctx, project.ID)
}

func (s *ProjectService) Delete(ctx context.Context, id uint) error {
	user, err := requirePermission(ctx, s.policy, domain.PermDeleteProjects)
	if err != nil {
		return err
	}
	if err := s.remove(ctx, id); err != nil {
		return err
	}
	s.logger.Info("project deleted", zap.Uint("project_id", id), zap.Uint("user_id", user.UserID))
	return nil
}

// BulkDelete deletes each project independently and reports per-record outcomes
func (s *ProjectService) BulkDelete(ctx context.Context, ids []uint) (*domain.BatchResult, error) {
	user, err := requirePermission(ctx, s.policy, domain.PermDeleteProjects)
	if err != nil {
		return nil, err
	}
	result := deleteEach(ctx, "project", ids, s.remove, s.logger)
	s.logger.Info("project bulk delete",
		zap.Int("processed", len(result.Processed)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Uint("user_id", user.UserID))
	return result, nil
}

func (s *ProjectService) remove(ctx context.Context, id uint) error {
	if _, err := s.projectRepo.GetByID(ctx, id); err != nil {
		return lookupError("project", err)
	}
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func (s *ProjectService) applyRequest(ctx context.Context, project *domain.Project, req *domain.CreateProjectRequest) error {
	if req.Budget.IsNegative() {
		return fmt.Errorf("%w: budget must not be negative", ErrInvalidInput)
	}
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return err
	}
	due, err := parseDate("dueDate", req.DueDate)
	if err != nil {
		return err
	}
	completed, err := parseDate("completedDate", req.CompletedDate)
	if err != nil {
		return err
	}

	if _, err := s.clientRepo.GetByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: client %d does not exist", ErrInvalidInput, req.ClientID)
		}
		return fmt.Errorf("failed to get client: %w", err)
	}

	project.ClientID = req.ClientID
	project.Client = nil
	project.Name = req.Name
	project.Description = req.Description
	project.Status = req.Status
	if project.Status == "" {
		project.Status = domain.ProjectStatusPlanning
	}
	project.Priority = req.Priority
	if project.Priority == "" {
		project.Priority = domain.PriorityMedium
	}
	project.StartDate = start
	project.DueDate = due
	project.CompletedDate = completed
	if project.Status == domain.ProjectStatusCompleted && project.CompletedDate == nil {
		today := repository.StartOfDay(nowUTC())
		project.CompletedDate = &today
	}
	project.Budget = req.Budget
	project.EstimatedHours = req.EstimatedHours
	project.ActualHours = req.ActualHours
	project.AssignedTo = req.AssignedTo
	return nil
}
