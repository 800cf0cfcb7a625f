package repository

import (
	"context"

	"github.com/opsdesk/admin-api/internal/domain"
	"gorm.io/gorm"
)

// UserFilters narrows user listings
type UserFilters struct {
	Search       string
	Role         *domain.Role
	DepartmentID *uint
	IsActive     *bool
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.User{}, id).Error
}

func (r *UserRepository) List(ctx context.Context, page, pageSize int, filters *UserFilters) ([]domain.User, int64, error) {
	var users []domain.User

	query := r.db.WithContext(ctx).Model(&domain.User{})
	if filters != nil {
		query = applySearch(query, filters.Search, "name", "email")
		if filters.Role != nil {
			query = query.Where("role = ?", *filters.Role)
		}
		if filters.DepartmentID != nil {
			query = query.Where("department_id = ?", *filters.DepartmentID)
		}
		if filters.IsActive != nil {
			query = query.Where("is_active = ?", *filters.IsActive)
		}
	}

	total, err := paginate(query, page, pageSize, "name ASC", &users)
	return users, total, err
}

