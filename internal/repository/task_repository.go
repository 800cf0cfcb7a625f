package repository

import (
	"context"
	"time"

	"github.com/opsdesk/admin-api/internal/domain"
	"gorm.io/gorm"
)

// TaskFilters narrows task listings
type TaskFilters struct {
	Search     string
	Status     *domain.TaskStatus
	Priority   *domain.Priority
	Type       *domain.TaskType
	AssignedTo *uint
	ProjectID  *uint
	// Pending keeps tasks that are todo or in progress
	Pending bool
	// OverdueAt keeps tasks whose due date is before this instant and whose
	// status is not terminal
	OverdueAt *time.Time
	// DueFrom and DueBefore bound the due date (inclusive, exclusive)
	DueFrom   *time.Time
	DueBefore *time.Time
}

var taskSortFields = map[string]string{
	"createdAt": "created_at",
	"dueDate":   "due_date",
	"priority":  "priority",
	"status":    "status",
	"title":     "title",
}

// TaskPendingStatuses are the statuses of work not yet picked up or finished
var TaskPendingStatuses = []domain.TaskStatus{domain.TaskStatusTodo, domain.TaskStatusInProgress}

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Omit("Project").Create(task).Error
}

func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).Preload("Project").First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Omit("Project").Save(task).Error
}

func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Task{}, id).Error
}

func (r *TaskRepository) List(ctx context.Context, page, pageSize int, filters *TaskFilters, sort SortConfig) ([]domain.Task, int64, error) {
	var tasks []domain.Task

	query := r.db.WithContext(ctx).Model(&domain.Task{}).Preload("Project")
	if filters != nil {
		query = applySearch(query, filters.Search, "title", "description")
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.Priority != nil {
			query = query.Where("priority = ?", *filters.Priority)
		}
		if filters.Type != nil {
			query = query.Where("type = ?", *filters.Type)
		}
		if filters.AssignedTo != nil {
			query = query.Where("assigned_to = ?", *filters.AssignedTo)
		}
		if filters.ProjectID != nil {
			query = query.Where("project_id = ?", *filters.ProjectID)
		}
		if filters.Pending {
			query = query.Where("status IN ?", TaskPendingStatuses)
		}
		if filters.OverdueAt != nil {
			query = query.Where("due_date IS NOT NULL AND due_date < ? AND status NOT IN ?",
				*filters.OverdueAt, domain.TaskTerminalStatuses)
		}
		if filters.DueFrom != nil {
			query = query.Where("due_date >= ?", *filters.DueFrom)
		}
		if filters.DueBefore != nil {
			query = query.Where("due_date < ?", *filters.DueBefore)
		}
	}

	order := BuildOrderClause(sort, taskSortFields, "created_at")
	total, err := paginate(query, page, pageSize, order, &tasks)
	return tasks, total, err
}

// GetByIDs loads the tasks with the given ids, keyed by id
func (r *TaskRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*domain.Task, error) {
	var tasks []domain.Task
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tasks).Error; err != nil {
		return nil, err
	}
	result := make(map[uint]*domain.Task, len(tasks))
	for i := range tasks {
		result[tasks[i].ID] = &tasks[i]
	}
	return result, nil
}

// CountOpenForUser counts the user's pending (todo or in progress) tasks
func (r *TaskRepository) CountOpenForUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("assigned_to = ? AND status IN ?", userID, TaskPendingStatuses).
		Count(&count).Error
	return count, err
}

// CountOverdueForUser counts the user's overdue tasks at now
func (r *TaskRepository) CountOverdueForUser(ctx context.Context, userID uint, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("assigned_to = ? AND due_date IS NOT NULL AND due_date < ? AND status NOT IN ?",
			userID, now, domain.TaskTerminalStatuses).
		Count(&count).Error
	return count, err
}

// CountOverdue counts overdue tasks across all assignees at now
func (r *TaskRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("due_date IS NOT NULL AND due_date < ? AND status NOT IN ?", now, domain.TaskTerminalStatuses).
		Count(&count).Error
	return count, err
}

// CountCompletedSince counts the user's tasks completed at or after since
func (r *TaskRepository) CountCompletedSince(ctx context.Context, userID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("assigned_to = ? AND status = ? AND end_time >= ?", userID, domain.TaskStatusCompleted, since).
		Count(&count).Error
	return count, err
}
