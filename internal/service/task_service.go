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

// bulkCompletable are the statuses a bulk completion accepts
var bulkCompletable = map[domain.TaskStatus]bool{
	domain.TaskStatusTodo:       true,
	domain.TaskStatusInProgress: true,
	domain.TaskStatusReview:     true,
}

type TaskService struct {
	taskRepo    *repository.TaskRepository
	projectRepo *repository.ProjectRepository
	userRepo    *repository.UserRepository
	policy      *policy.Engine
	logger      *zap.Logger
}

func NewTaskService(
	taskRepo *repository.TaskRepository,
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	engine *policy.Engine,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		policy:      engine,
		logger:      logger,
	}
}

func (s *TaskService) List(ctx context.Context, page, pageSize int, filters *repository.TaskFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewTasks); err != nil {
		return nil, err
	}
	page, pageSize = clampPage(page, pageSize)

	tasks, total, err := s.taskRepo.List(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	now := nowUTC()
	dtos := make([]domain.TaskDTO, len(tasks))
	for i := range tasks {
		dtos[i] = mapper.ToTaskDTO(&tasks[i], now)
	}
	return paginated(dtos, total, page, pageSize), nil
}

func (s *TaskService) GetByID(ctx context.Context, id uint) (*domain.TaskDTO, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewTasks); err != nil {
		return nil, err
	}
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("task", err)
	}
	dto := mapper.ToTaskDTO(task, nowUTC())
	return &dto, nil
}

// Create accepts callers holding either create_tasks or assign_tasks
func (s *TaskService) Create(ctx context.Context, req *domain.CreateTaskRequest) (*domain.TaskDTO, error) {
	user, err := requireCreate(ctx, s.policy, domain.ResourceTasks)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{CreatedBy: user.UserID}
	if err := s.applyRequest(ctx, task, req); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("task created",
		zap.Uint("task_id", task.ID),
		zap.Uint("assigned_to", task.AssignedTo),
		zap.Uint("user_id", user.UserID))

	return s.get(ctx, task.ID)
}

// Update lets the assignee edit their own task even without edit_tasks
func (s *TaskService) Update(ctx context.Context, id uint, req *domain.UpdateTaskRequest) (*domain.TaskDTO, error) {
	user, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("task", err)
	}
	if !s.policy.CanEdit(user.Role, domain.ResourceTasks, task, user.UserID) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, domain.PermEditTasks)
	}

	if err := s.applyRequest(ctx, task, req); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Info("task updated",
		zap.Uint("task_id", task.ID),
		zap.String("status", string(task.Status)),
		zap.Uint("user_id", user.UserID))

	return s.get(ctx, task.ID)
}

func (s *TaskService) Delete(ctx context.Context, id uint) error {
	user, err := requirePermission(ctx, s.policy, domain.PermDeleteTasks)
	if err != nil {
		return err
	}
	if err := s.remove(ctx, id); err != nil {
		return err
	}
	s.logger.Info("task deleted", zap.Uint("task_id", id), zap.Uint("user_id", user.UserID))
	return nil
}

// BulkDelete deletes each task independently and reports per-record outcomes
func (s *TaskService) BulkDelete(ctx context.Context, ids []uint) (*domain.BatchResult, error) {
	user, err := requirePermission(ctx, s.policy, domain.PermDeleteTasks)
	if err != nil {
		return nil, err
	}
	result := deleteEach(ctx, "task", ids, s.remove, s.logger)
	s.logger.Info("task bulk delete",
		zap.Int("processed", len(result.Processed)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Uint("user_id", user.UserID))
	return result, nil
}

func (s *TaskService) remove(ctx context.Context, id uint) error {
	if _, err := s.taskRepo.GetByID(ctx, id); err != nil {
		return lookupError("task", err)
	}
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// Start moves the caller's own task from todo to in_progress
func (s *TaskService) Start(ctx context.Context, id uint) (*domain.TaskDTO, error) {
	return s.transition(ctx, id, "start",
		func(status domain.TaskStatus) bool { return status == domain.TaskStatusTodo },
		func(task *domain.Task) {
			now := nowUTC()
			task.Status = domain.TaskStatusInProgress
			task.StartTime = &now
		})
}

// Complete moves the caller's own task from in_progress or review to completed
func (s *TaskService) Complete(ctx context.Context, id uint) (*domain.TaskDTO, error) {
	return s.transition(ctx, id, "complete",
		func(status domain.TaskStatus) bool {
			return status == domain.TaskStatusInProgress || status == domain.TaskStatusReview
		},
		func(task *domain.Task) {
			now := nowUTC()
			task.Status = domain.TaskStatusCompleted
			task.EndTime = &now
		})
}

func (s *TaskService) transition(ctx context.Context, id uint, action string, allowed func(domain.TaskStatus) bool, apply func(*domain.Task)) (*domain.TaskDTO, error) {
	user, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("task", err)
	}
	if task.AssigneeID() != user.UserID {
		return nil, ErrNotAssignee
	}
	if !allowed(task.Status) {
		return nil, fmt.Errorf("%w: cannot %s a task in status %s", ErrInvalidTransition, action, task.Status)
	}

	apply(task)
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to %s task: %w", action, err)
	}

	s.logger.Info("task "+action,
		zap.Uint("task_id", task.ID),
		zap.Uint("user_id", user.UserID))

	dto := mapper.ToTaskDTO(task, nowUTC())
	return &dto, nil
}

// BulkComplete completes every eligible task the caller may edit. Records that
// are missing, not editable, or already terminal are skipped; the batch never
// aborts.
func (s *TaskService) BulkComplete(ctx context.Context, ids []uint) (*domain.BatchResult, error) {
	user, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	result := domain.NewBatchResult()
	for _, id := range ids {
		task, ok := tasks[id]
		if !ok {
			result.Skipped = append(result.Skipped, domain.BatchItemResult{ID: id, Reason: "not found"})
			continue
		}
		if !s.policy.CanEdit(user.Role, domain.ResourceTasks, task, user.UserID) {
			result.Skipped = append(result.Skipped, domain.BatchItemResult{ID: id, Reason: "permission denied"})
			continue
		}
		if !bulkCompletable[task.Status] {
			result.Skipped = append(result.Skipped, domain.BatchItemResult{ID: id, Reason: "status " + string(task.Status)})
			continue
		}

		now := nowUTC()
		task.Status = domain.TaskStatusCompleted
		task.EndTime = &now
		if err := s.taskRepo.Update(ctx, task); err != nil {
			s.logger.Warn("bulk task completion failed", zap.Uint("task_id", id), zap.Error(err))
			result.Failed = append(result.Failed, domain.BatchItemResult{ID: id, Reason: err.Error()})
			continue
		}
		result.Processed = append(result.Processed, id)
	}

	s.logger.Info("tasks bulk completed",
		zap.Int("processed", len(result.Processed)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", len(result.Failed)),
		zap.Uint("user_id", user.UserID))

	return result, nil
}

func (s *TaskService) get(ctx context.Context, id uint) (*domain.TaskDTO, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("task", err)
	}
	dto := mapper.ToTaskDTO(task, nowUTC())
	return &dto, nil
}

func (s *TaskService) applyRequest(ctx context.Context, task *domain.Task, req *domain.CreateTaskRequest) error {
	due, err := parseDate("dueDate", req.DueDate)
	if err != nil {
		return err
	}
	if _, err := s.userRepo.GetByID(ctx, req.AssignedTo); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d does not exist", ErrInvalidInput, req.AssignedTo)
		}
		return fmt.Errorf("failed to get assignee: %w", err)
	}
	if req.ProjectID != nil {
		ok, err := s.projectRepo.Exists(ctx, *req.ProjectID, req.ClientID)
		if err != nil {
			return fmt.Errorf("failed to check project: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: project %d not found for the selected client", ErrInvalidInput, *req.ProjectID)
		}
	}

	previous := task.Status
	task.Title = req.Title
	task.Description = req.Description
	task.Status = req.Status
	if task.Status == "" {
		task.Status = domain.TaskStatusTodo
	}
	task.Priority = req.Priority
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	task.Type = req.Type
	if task.Type == "" {
		task.Type = domain.TaskTypeOther
	}
	task.AssignedTo = req.AssignedTo
	task.ProjectID = req.ProjectID
	task.Project = nil
	task.ClientID = req.ClientID
	task.DueDate = due
	task.EstimatedHours = req.EstimatedHours
	task.ActualHours = req.ActualHours
	task.Notes = req.Notes

	now := nowUTC()
	if task.Status == domain.TaskStatusInProgress && previous != task.Status && task.StartTime == nil {
		task.StartTime = &now
	}
	if task.Status == domain.TaskStatusCompleted && previous != task.Status && task.EndTime == nil {
		task.EndTime = &now
	}
	return nil
}
