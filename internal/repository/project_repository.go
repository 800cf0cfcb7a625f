package repository

import (
	"context"
	"time"

	"github.com/opsdesk/admin-api/internal/domain"
	"gorm.io/gorm"
)

// ProjectFilters narrows project listings
type ProjectFilters struct {
	Search     string
	Status     *domain.ProjectStatus
	Priority   *domain.Priority
	ClientID   *uint
	AssignedTo *uint
	// OverdueAt keeps projects whose due date is before this instant and
	// whose status is not terminal
	OverdueAt *time.Time
}

var projectSortFields = map[string]string{
	"createdAt": "created_at",
	"dueDate":   "due_date",
	"name":      "name",
	"priority":  "priority",
	"status":    "status",
}

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Omit("Client").Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uint) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).Preload("Client").First(&project, id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Omit("Client").Save(project).Error
}

func (r *ProjectRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Project{}, id).Error
}

func (r *ProjectRepository) List(ctx context.Context, page, pageSize int, filters *ProjectFilters, sort SortConfig) ([]domain.Project, int64, error) {
	var projects []domain.Project

	query := r.db.WithContext(ctx).Model(&domain.Project{}).Preload("Client")
	if filters != nil {
		query = applySearch(query, filters.Search, "name", "description")
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.Priority != nil {
			query = query.Where("priority = ?", *filters.Priority)
		}
		if filters.ClientID != nil {
			query = query.Where("client_id = ?", *filters.ClientID)
		}
		if filters.AssignedTo != nil {
			query = query.Where("assigned_to = ?", *filters.AssignedTo)
		}
		if filters.OverdueAt != nil {
			query = query.Where("due_date IS NOT NULL AND due_date < ? AND status NOT IN ?",
				*filters.OverdueAt, domain.ProjectTerminalStatuses)
		}
	}

	order := BuildOrderClause(sort, projectSortFields, "created_at")
	total, err := paginate(query, page, pageSize, order, &projects)
	return projects, total, err
}

// ListByClient returns the projects of one client ordered by name, for dependent selects
func (r *ProjectRepository) ListByClient(ctx context.Context, clientID uint) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).
		Select("id", "name", "client_id").
		Where("client_id = ?", clientID).
		Order("name ASC").
		Find(&projects).Error
	return projects, err
}

// Exists reports whether a project with the id exists, optionally scoped to a client
func (r *ProjectRepository) Exists(ctx context.Context, id uint, clientID *uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Project{}).Where("id = ?", id)
	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *ProjectRepository) CountByStatus(ctx context.Context, statuses ...domain.ProjectStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Project{}).Where("status IN ?", statuses).Count(&count).Error
	return count, err
}

// CountWithTasksFor counts projects that have at least one task assigned to the user
func (r *ProjectRepository) CountWithTasksFor(ctx context.Context, userID uint) (int64, error) {
	var count int64
	taskProjects := r.db.Model(&domain.Task{}).Select("project_id").
		Where("assigned_to = ? AND project_id IS NOT NULL", userID)
	err := r.db.WithContext(ctx).Model(&domain.Project{}).
		Where("id IN (?)", taskProjects).
		Count(&count).Error
	return count, err
}

// CountWithContentBy counts projects that have content created by the user
func (r *ProjectRepository) CountWithContentBy(ctx context.Context, userID uint) (int64, error) {
	var count int64
	contentProjects := r.db.Model(&domain.Content{}).Select("project_id").
		Where("created_by = ? AND project_id IS NOT NULL", userID)
	err := r.db.WithContext(ctx).Model(&domain.Project{}).
		Where("id IN (?)", contentProjects).
		Count(&count).Error
	return count, err
}

func (r *ProjectRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Project{}).
		Where("due_date IS NOT NULL AND due_date < ? AND status NOT IN ?", now, domain.ProjectTerminalStatuses).
		Count(&count).Error
	return count, err
}
