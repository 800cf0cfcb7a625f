package service

import (
	"context"
	"fmt"

	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/mapper"
	"github.com/opsdesk/admin-api/internal/policy"
	"github.com/opsdesk/admin-api/internal/repository"
	"go.uber.org/zap"
)

type DepartmentService struct {
	departmentRepo *repository.DepartmentRepository
	policy         *policy.Engine
	logger         *zap.Logger
}

func NewDepartmentService(departmentRepo *repository.DepartmentRepository, engine *policy.Engine, logger *zap.Logger) *DepartmentService {
	return &DepartmentService{
		departmentRepo: departmentRepo,
		policy:         engine,
		logger:         logger,
	}
}

func (s *DepartmentService) List(ctx context.Context, page, pageSize int, search string) (*domain.PaginatedResponse, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewDepartments); err != nil {
		return nil, err
	}
	page, pageSize = clampPage(page, pageSize)

	depts, total, err := s.departmentRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}

	ids := make([]uint, len(depts))
	for i := range depts {
		ids[i] = depts[i].ID
	}
	counts := map[uint]int64{}
	if len(ids) > 0 {
		counts, err = s.departmentRepo.EmployeeCounts(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to count employees: %w", err)
		}
	}

	dtos := make([]domain.DepartmentDTO, len(depts))
	for i := range depts {
		dtos[i] = mapper.ToDepartmentDTO(&depts[i], counts[depts[i].ID])
	}
	return paginated(dtos, total, page, pageSize), nil
}

func (s *DepartmentService) GetByID(ctx context.Context, id uint) (*domain.DepartmentDTO, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewDepartments); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *DepartmentService) Create(ctx context.Context, req *domain.CreateDepartmentRequest) (*domain.DepartmentDTO, error) {
	user, err := requireCreate(ctx, s.policy, domain.ResourceDepartments)
	if err != nil {
		return nil, err
	}
	dept := &domain.Department{
		Name:        req.Name,
		Description: req.Description,
		ManagerID:   req.ManagerID,
	}
	if err := s.departmentRepo.Create(ctx, dept); err != nil {
		return nil, fmt.Errorf("failed to create department: %w", err)
	}
	s.logger.Info("department created", zap.Uint("department_id", dept.ID), zap.Uint("user_id", user.UserID))

	dto := mapper.ToDepartmentDTO(dept, 0)
	return &dto, nil
}

func (s *DepartmentService) Update(ctx context.Context, id uint, req *domain.UpdateDepartmentRequest) (*domain.DepartmentDTO, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermEditDepartments); err != nil {
		return nil, err
	}
	dept, err := s.departmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("department", err)
	}
	dept.Name = req.Name
	dept.Description = req.Description
	dept.ManagerID = req.ManagerID
	if err := s.departmentRepo.Update(ctx, dept); err != nil {
		return nil, fmt.Errorf("failed to update department: %w", err)
	}
	return s.get(ctx, id)
}

// Delete refuses to remove a department that still has employees
func (s *DepartmentService) Delete(ctx context.Context, id uint) error {
	user, err := requirePermission(ctx, s.policy, domain.PermDeleteDepartments)
	if err != nil {
		return err
	}
	if err := s.remove(ctx, id); err != nil {
		return err
	}
	s.logger.Info("department deleted", zap.Uint("department_id", id), zap.Uint("user_id", user.UserID))
	return nil
}

// BulkDelete deletes each department independently and reports per-record outcomes
func (s *DepartmentService) BulkDelete(ctx context.Context, ids []uint) (*domain.BatchResult, error) {
	user, err := requirePermission(ctx, s.policy, domain.PermDeleteDepartments)
	if err != nil {
		return nil, err
	}
	result := deleteEach(ctx, "department", ids, s.remove, s.logger)
	s.logger.Info("department bulk delete",
		zap.Int("processed", len(result.Processed)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Uint("user_id", user.UserID))
	return result, nil
}

func (s *DepartmentService) remove(ctx context.Context, id uint) error {
	if _, err := s.departmentRepo.GetByID(ctx, id); err != nil {
		return lookupError("department", err)
	}
	counts, err := s.departmentRepo.EmployeeCounts(ctx, []uint{id})
	if err != nil {
		return fmt.Errorf("failed to count employees: %w", err)
	}
	if counts[id] > 0 {
		return fmt.Errorf("%w: department has %d employees", ErrConflict, counts[id])
	}
	if err := s.departmentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}
	return nil
}

func (s *DepartmentService) get(ctx context.Context, id uint) (*domain.DepartmentDTO, error) {
	dept, err := s.departmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("department", err)
	}
	counts, err := s.departmentRepo.EmployeeCounts(ctx, []uint{id})
	if err != nil {
		return nil, fmt.Errorf("failed to count employees: %w", err)
	}
	dto := mapper.ToDepartmentDTO(dept, counts[id])
	return &dto, nil
}
