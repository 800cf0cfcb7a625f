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

type EmployeeService struct {
	employeeRepo   *repository.EmployeeRepository
	departmentRepo *repository.DepartmentRepository
	policy         *policy.Engine
	logger         *zap.Logger
}

func NewEmployeeService(
	employeeRepo *repository.EmployeeRepository,
	departmentRepo *repository.DepartmentRepository,
	engine *policy.Engine,
	logger *zap.Logger,
) *EmployeeService {
	return &EmployeeService{
		employeeRepo:   employeeRepo,
		departmentRepo: departmentRepo,
		policy:         engine,
		logger:         logger,
	}
}

func (s *EmployeeService) List(ctx context.Context, page, pageSize int, filters *repository.EmployeeFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewEmployees); err != nil {
		return nil, err
	}
	page, pageSize = clampPage(page, pageSize)

	employees, total, err := s.employeeRepo.List(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	dtos := make([]domain.EmployeeDTO, len(employees))
	for i := range employees {
		dtos[i] = mapper.ToEmployeeDTO(&employees[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}

func (s *EmployeeService) GetByID(ctx context.Context, id uint) (*domain.EmployeeDTO, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewEmployees); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *EmployeeService) Create(ctx context.Context, req *domain.CreateEmployeeRequest) (*domain.EmployeeDTO, error) {
	user, err := requireCreate(ctx, s.policy, domain.ResourceEmployees)
	if err != nil {
		return nil, err
	}

	employee := &domain.Employee{CreatedBy: user.UserID}
	if err := s.applyRequest(ctx, employee, req); err != nil {
		return nil, err
	}
	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	s.logger.Info("employee created",
		zap.Uint("employee_id", employee.ID),
		zap.String("employee_code", employee.EmployeeCode),
		zap.Uint("user_id", user.UserID))

	return s.get(ctx, employee.ID)
}

func (s *EmployeeService) Update(ctx context.Context, id uint, req *domain.UpdateEmployeeRequest) (*domain.EmployeeDTO, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermEditEmployees); err != nil {
		return nil, err
	}
	employee, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("employee", err)
	}
	if err := s.applyRequest(ctx, employee, req); err != nil {
		return nil, err
	}
	if err := s.employeeRepo.Update(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}
	return s.get(ctx, id)
}

func (s *EmployeeService) Delete(ctx context.Context, id uint) error {
	user, err := requirePermission(ctx, s.policy, domain.PermDeleteEmployees)
	if err != nil {
		return err
	}
	if err := s.remove(ctx, id); err != nil {
		return err
	}
	s.logger.Info("employee deleted", zap.Uint("employee_id", id), zap.Uint("user_id", user.UserID))
	return nil
}

// BulkDelete deletes each employee independently and reports per-record outcomes
func (s *EmployeeService) BulkDelete(ctx context.Context, ids []uint) (*domain.BatchResult, error) {
	user, err := requirePermission(ctx, s.policy, domain.PermDeleteEmployees)
	if err != nil {
		return nil, err
	}
	result := deleteEach(ctx, "employee", ids, s.remove, s.logger)
	s.logger.Info("employee bulk delete",
		zap.Int("processed", len(result.Processed)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Uint("user_id", user.UserID))
	return result, nil
}

func (s *EmployeeService) remove(ctx context.Context, id uint) error {
	if _, err := s.employeeRepo.GetByID(ctx, id); err != nil {
		return lookupError("employee", err)
	}
	if err := s.employeeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}

func (s *EmployeeService) get(ctx context.Context, id uint) (*domain.EmployeeDTO, error) {
	employee, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("employee", err)
	}
	dto := mapper.ToEmployeeDTO(employee)
	return &dto, nil
}

func (s *EmployeeService) applyRequest(ctx context.Context, employee *domain.Employee, req *domain.CreateEmployeeRequest) error {
	if req.Salary.IsNegative() {
		return fmt.Errorf("%w: salary must not be negative", ErrInvalidInput)
	}
	hired, err := parseRequiredDate("hireDate", req.HireDate)
	if err != nil {
		return err
	}
	terminated, err := parseDate("terminationDate", req.TerminationDate)
	if err != nil {
		return err
	}
	if terminated != nil && terminated.Before(hired) {
		return fmt.Errorf("%w: termination date precedes hire date", ErrInvalidInput)
	}

	if _, err := s.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: department %d does not exist", ErrInvalidInput, req.DepartmentID)
		}
		return fmt.Errorf("failed to get department: %w", err)
	}
	taken, err := s.employeeRepo.UniqueFieldTaken(ctx, req.EmployeeCode, req.Email, employee.ID)
	if err != nil {
		return fmt.Errorf("failed to check employee uniqueness: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: employee code or email already in use", ErrConflict)
	}

	employee.UserID = req.UserID
	employee.EmployeeCode = req.EmployeeCode
	employee.FirstName = req.FirstName
	employee.LastName = req.LastName
	employee.Email = req.Email
	employee.Phone = req.Phone
	employee.Address = req.Address
	employee.DepartmentID = req.DepartmentID
	employee.Department = nil
	employee.Position = req.Position
	employee.Salary = req.Salary
	employee.HireDate = hired
	employee.TerminationDate = terminated
	employee.Status = req.Status
	if employee.Status == "" {
		employee.Status = domain.EmployeeStatusActive
	}
	employee.EmergencyContactName = req.EmergencyContactName
	employee.EmergencyContactPhone = req.EmergencyContactPhone
	employee.Notes = req.Notes
	return nil
}
