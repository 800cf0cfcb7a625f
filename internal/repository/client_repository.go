package repository

import (
	"context"

	"github.com/opsdesk/admin-api/internal/domain"
	"gorm.io/gorm"
)

// ClientFilters narrows client listings
type ClientFilters struct {
	Search string
	Status *domain.ClientStatus
}

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *ClientRepository) GetByID(ctx context.Context, id uint) (*domain.Client, error) {
	var client domain.Client
	err := r.db.WithContext(ctx).First(&client, id).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) Update(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *ClientRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Client{}, id).Error
}

func (r *ClientRepository) List(ctx context.Context, page, pageSize int, filters *ClientFilters) ([]domain.Client, int64, error) {
	var clients []domain.Client

	query := r.db.WithContext(ctx).Model(&domain.Client{})
	if filters != nil {
		query = applySearch(query, filters.Search, "name", "company_name", "email")
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
	}

	total, err := paginate(query, page, pageSize, "name ASC", &clients)
	return clients, total, err
}

func (r *ClientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Client{}).Count(&count).Error
	return count, err
}

func (r *ClientRepository) CountByStatus(ctx context.Context, status domain.ClientStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Client{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
