package repository

import (
	"context"

	"github.com/opsdesk/admin-api/internal/domain"
	"gorm.io/gorm"
)

// DocumentFilters narrows document listings
type DocumentFilters struct {
	Search         string
	Category       *domain.DocumentCategory
	ClientID       *uint
	ProjectID      *uint
	IsConfidential *bool
}

var documentSortFields = map[string]string{
	"createdAt": "created_at",
	"title":     "title",
	"fileSize":  "file_size",
}

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uint) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.WithContext(ctx).First(&doc, id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

func (r *DocumentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Document{}, id).Error
}

func (r *DocumentRepository) List(ctx context.Context, page, pageSize int, filters *DocumentFilters, sort SortConfig) ([]domain.Document, int64, error) {
	var docs []domain.Document

	query := r.db.WithContext(ctx).Model(&domain.Document{})
	if filters != nil {
		query = applySearch(query, filters.Search, "title", "description", "file_name")
		if filters.Category != nil {
			query = query.Where("category = ?", *filters.Category)
		}
		if filters.ClientID != nil {
			query = query.Where("client_id = ?", *filters.ClientID)
		}
		if filters.ProjectID != nil {
			query = query.Where("project_id = ?", *filters.ProjectID)
		}
		if filters.IsConfidential != nil {
			query = query.Where("is_confidential = ?", *filters.IsConfidential)
		}
	}

	order := BuildOrderClause(sort, documentSortFields, "created_at")
	total, err := paginate(query, page, pageSize, order, &docs)
	return docs, total, err
}
