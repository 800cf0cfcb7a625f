package repository

import (
	"context"

	"github.com/opsdesk/admin-api/internal/domain"
	"gorm.io/gorm"
)

// ContentFilters narrows content listings
type ContentFilters struct {
	Search    string
	Type      *domain.ContentType
	Status    *domain.ContentStatus
	Category  string
	ClientID  *uint
	ProjectID *uint
	CreatedBy *uint
}

var contentSortFields = map[string]string{
	"createdAt": "created_at",
	"title":     "title",
	"fileSize":  "file_size",
}

type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) Create(ctx context.Context, content *domain.Content) error {
	return r.db.WithContext(ctx).Create(content).Error
}

func (r *ContentRepository) GetByID(ctx context.Context, id uint) (*domain.Content, error) {
	var content domain.Content
	err := r.db.WithContext(ctx).First(&content, id).Error
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// GetByIDs loads the requested rows keyed by ID; missing IDs are absent from the map
func (r *ContentRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*domain.Content, error) {
	var rows []domain.Content
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[uint]*domain.Content, len(rows))
	for i := range rows {
		result[rows[i].ID] = &rows[i]
	}
	return result, nil
}

func (r *ContentRepository) Update(ctx context.Context, content *domain.Content) error {
	return r.db.WithContext(ctx).Save(content).Error
}

func (r *ContentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Content{}, id).Error
}

func (r *ContentRepository) List(ctx context.Context, page, pageSize int, filters *ContentFilters, sort SortConfig) ([]domain.Content, int64, error) {
	var items []domain.Content

	query := r.db.WithContext(ctx).Model(&domain.Content{})
	if filters != nil {
		query = applySearch(query, filters.Search, "title", "description", "file_name")
		if filters.Type != nil {
			query = query.Where("type = ?", *filters.Type)
		}
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.Category != "" {
			query = query.Where("category = ?", filters.Category)
		}
		if filters.ClientID != nil {
			query = query.Where("client_id = ?", *filters.ClientID)
		}
		if filters.ProjectID != nil {
			query = query.Where("project_id = ?", *filters.ProjectID)
		}
		if filters.CreatedBy != nil {
			query = query.Where("created_by = ?", *filters.CreatedBy)
		}
	}

	order := BuildOrderClause(sort, contentSortFields, "created_at")
	total, err := paginate(query, page, pageSize, order, &items)
	return items, total, err
}

func (r *ContentRepository) CountByStatus(ctx context.Context, status domain.ContentStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Content{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
