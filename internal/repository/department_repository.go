package repository

import (
	"context"

	"github.com/opsdesk/admin-api/internal/domain"
	"gorm.io/gorm"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	return r.db.WithContext(ctx).Omit("Employees").Create(dept).Error
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id uint) (*domain.Department, error) {
	var dept domain.Department
	err := r.db.WithContext(ctx).First(&dept, id).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	return r.db.WithContext(ctx).Omit("Employees").Save(dept).Error
}

func (r *DepartmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Department{}, id).Error
}

func (r *DepartmentRepository) List(ctx context.Context, page, pageSize int, search string) ([]domain.Department, int64, error) {
	var depts []domain.Department
	query := applySearch(r.db.WithContext(ctx).Model(&domain.Department{}), search, "name", "description")
	total, err := paginate(query, page, pageSize, "name ASC", &depts)
	return depts, total, err
}

func (r *DepartmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Department{}).Count(&count).Error
	return count, err
}

// EmployeeCounts returns the number of employees per department for the given IDs
func (r *DepartmentRepository) EmployeeCounts(ctx context.Context, ids []uint) (map[uint]int64, error) {
	var rows []struct {
		DepartmentID uint
		Total        int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Employee{}).
		Select("department_id, COUNT(*) AS total").
		Where("department_id IN ?", ids).
		Group("department_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.DepartmentID] = row.Total
	}
	return counts, nil
}
