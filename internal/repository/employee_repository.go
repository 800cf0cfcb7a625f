package repository

import (
	"context"
	"time"

	"github.com/opsdesk/admin-api/internal/domain"
	"gorm.io/gorm"
)

// EmployeeFilters narrows employee listings
type EmployeeFilters struct {
	Search       string
	Status       *domain.EmployeeStatus
	DepartmentID *uint
}

var employeeSortFields = map[string]string{
	"createdAt": "created_at",
	"lastName":  "last_name",
	"hireDate":  "hire_date",
	"position":  "position",
}

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	return r.db.WithContext(ctx).Omit("Department").Create(employee).Error
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id uint) (*domain.Employee, error) {
	var employee domain.Employee
	err := r.db.WithContext(ctx).Preload("Department").First(&employee, id).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	return r.db.WithContext(ctx).Omit("Department").Save(employee).Error
}

func (r *EmployeeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Employee{}, id).Error
}

func (r *EmployeeRepository) List(ctx context.Context, page, pageSize int, filters *EmployeeFilters, sort SortConfig) ([]domain.Employee, int64, error) {
	var employees []domain.Employee

	query := r.db.WithContext(ctx).Model(&domain.Employee{}).Preload("Department")
	if filters != nil {
		query = applySearch(query, filters.Search, "first_name", "last_name", "email", "employee_code", "position")
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.DepartmentID != nil {
			query = query.Where("department_id = ?", *filters.DepartmentID)
		}
	}

	order := BuildOrderClause(sort, employeeSortFields, "created_at")
	total, err := paginate(query, page, pageSize, order, &employees)
	return employees, total, err
}

// UniqueFieldTaken reports whether another employee already uses the code or email
func (r *EmployeeRepository) UniqueFieldTaken(ctx context.Context, code, email string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Employee{}).Where("employee_code = ? OR email = ?", code, email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *EmployeeRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Employee{}).
		Where("status = ?", domain.EmployeeStatusActive).
		Count(&count).Error
	return count, err
}

// CountHiredBetween counts employees hired in [from, to)
func (r *EmployeeRepository) CountHiredBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Employee{}).
		Where("hire_date >= ? AND hire_date < ?", from, to).
		Count(&count).Error
	return count, err
}

// CountAnniversaries counts employees hired in an earlier year during the
// month of now. Month extraction differs between postgres and sqlite so the
// comparison runs in Go over hire dates only.
func (r *EmployeeRepository) CountAnniversaries(ctx context.Context, now time.Time) (int64, error) {
	var hireDates []time.Time
	err := r.db.WithContext(ctx).Model(&domain.Employee{}).Pluck("hire_date", &hireDates).Error
	if err != nil {
		return 0, err
	}
	var count int64
	for _, hired := range hireDates {
		if hired.Month() == now.Month() && hired.Year() < now.Year() {
			count++
		}
	}
	return count, nil
}
