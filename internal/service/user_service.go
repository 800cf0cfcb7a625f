package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/opsdesk/admin-api/internal/auth"
	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/mapper"
	"github.com/opsdesk/admin-api/internal/policy"
	"github.com/opsdesk/admin-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo *repository.UserRepository
	policy   *policy.Engine
	logger   *zap.Logger
}

func NewUserService(userRepo *repository.UserRepository, engine *policy.Engine, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		policy:   engine,
		logger:   logger,
	}
}

// Me describes the caller together with the permissions of their role
func (s *UserService) Me(ctx context.Context) (*domain.MeDTO, error) {
	user, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.MeDTO{
		UserID:      user.UserID,
		Name:        user.DisplayName,
		Email:       user.Email,
		Role:        user.Role,
		Initials:    user.GetDisplayNameInitials(),
		Permissions: s.policy.Permissions(user.Role),
	}, nil
}

// Resolve loads the account behind a token subject. Inactive users are rejected.
func (s *UserService) Resolve(ctx context.Context, id uint) (*auth.UserContext, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("user", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user %d is inactive", ErrUnauthorized, id)
	}
	return &auth.UserContext{
		UserID:      user.ID,
		DisplayName: user.Name,
		Email:       user.Email,
		Role:        user.Role,
	}, nil
}

func (s *UserService) List(ctx context.Context, page, pageSize int, filters *repository.UserFilters) (*domain.PaginatedResponse, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewUsers); err != nil {
		return nil, err
	}
	page, pageSize = clampPage(page, pageSize)

	users, total, err := s.userRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	dtos := make([]domain.UserDTO, len(users))
	for i := range users {
		dtos[i] = mapper.ToUserDTO(&users[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*domain.UserDTO, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewUsers); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("user", err)
	}
	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

func (s *UserService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.UserDTO, error) {
	caller, err := requireCreate(ctx, s.policy, domain.ResourceUsers)
	if err != nil {
		return nil, err
	}

	user := &domain.User{IsActive: true}
	if err := s.applyRequest(ctx, user, req); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created",
		zap.Uint("created_user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.Uint("user_id", caller.UserID))

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

func (s *UserService) Update(ctx context.Context, id uint, req *domain.UpdateUserRequest) (*domain.UserDTO, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermEditUsers); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("user", err)
	}
	if err := s.applyRequest(ctx, user, req); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	caller, err := requirePermission(ctx, s.policy, domain.PermDeleteUsers)
	if err != nil {
		return err
	}
	if caller.UserID == id {
		return fmt.Errorf("%w: cannot delete your own account", ErrInvalidInput)
	}
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return lookupError("user", err)
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.logger.Info("user deleted", zap.Uint("deleted_user_id", id), zap.Uint("user_id", caller.UserID))
	return nil
}

func (s *UserService) applyRequest(ctx context.Context, user *domain.User, req *domain.CreateUserRequest) error {
	if !domain.IsValidRole(string(req.Role)) {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, req.Role)
	}
	hired, err := parseDate("hireDate", req.HireDate)
	if err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != user.ID:
		return fmt.Errorf("%w: email %s already in use", ErrConflict, email)
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("failed to check email: %w", err)
	}

	user.Name = req.Name
	user.Email = email
	user.Role = req.Role
	user.DepartmentID = req.DepartmentID
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.Phone = req.Phone
	user.HireDate = hired
	return nil
}
