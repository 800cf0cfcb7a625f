package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opsdesk/admin-api/internal/auth"
	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/policy"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// actingUser returns the authenticated caller
func actingUser(ctx context.Context) (*auth.UserContext, error) {
	user, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// requirePermission returns the caller if their role holds the permission
func requirePermission(ctx context.Context, engine *policy.Engine, permission domain.Permission) (*auth.UserContext, error) {
	user, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	if !engine.IsAllowed(user.Role, permission) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, permission)
	}
	return user, nil
}

// requireCreate returns the caller if their role may create the resource
func requireCreate(ctx context.Context, engine *policy.Engine, resource domain.Resource) (*auth.UserContext, error) {
	user, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	if !engine.CanCreate(user.Role, resource) {
		return nil, fmt.Errorf("%w: create %s", ErrPermissionDenied, resource)
	}
	return user, nil
}

// deleteEach runs remove for every id and sorts the outcomes. Missing records
// and deletes refused with ErrConflict are skipped; anything else is a failure.
func deleteEach(ctx context.Context, entity string, ids []uint, remove func(context.Context, uint) error, logger *zap.Logger) *domain.BatchResult {
	result := domain.NewBatchResult()
	for _, id := range ids {
		err := remove(ctx, id)
		switch {
		case err == nil:
			result.Processed = append(result.Processed, id)
		case errors.Is(err, ErrNotFound):
			result.Skipped = append(result.Skipped, domain.BatchItemResult{ID: id, Reason: "not found"})
		case errors.Is(err, ErrConflict):
			result.Skipped = append(result.Skipped, domain.BatchItemResult{ID: id, Reason: err.Error()})
		default:
			logger.Warn("bulk delete failed", zap.String("entity", entity), zap.Uint("id", id), zap.Error(err))
			result.Failed = append(result.Failed, domain.BatchItemResult{ID: id, Reason: err.Error()})
		}
	}
	return result
}

// lookupError maps a repository read error to a service error
func lookupError(entity string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", entity, err)
}

// parseDate parses an optional YYYY-MM-DD value; empty input yields nil
func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidInput, field)
	}
	return &t, nil
}

func parseRequiredDate(field, value string) (time.Time, error) {
	t, err := parseDate(field, value)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	return *t, nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// clampPage applies the default and maximum page sizes
func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return page, pageSize
}

func paginated(data interface{}, total int64, page, pageSize int) *domain.PaginatedResponse {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
