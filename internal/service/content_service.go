package service

import (
	"context"
	"fmt"

	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/mapper"
	"github.com/opsdesk/admin-api/internal/policy"
	"github.com/opsdesk/admin-api/internal/repository"
	"github.com/opsdesk/admin-api/internal/storage"
	"go.uber.org/zap"
)

type ContentService struct {
	contentRepo *repository.ContentRepository
	storage     storage.Storage
	policy      *policy.Engine
	logger      *zap.Logger
}

func NewContentService(
	contentRepo *repository.ContentRepository,
	store storage.Storage,
	engine *policy.Engine,
	logger *zap.Logger,
) *ContentService {
	return &ContentService{
		contentRepo: contentRepo,
		storage:     store,
		policy:      engine,
		logger:      logger,
	}
}

func (s *ContentService) List(ctx context.Context, page, pageSize int, filters *repository.ContentFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewContent); err != nil {
		return nil, err
	}
	page, pageSize = clampPage(page, pageSize)

	items, total, err := s.contentRepo.List(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	dtos := make([]domain.ContentDTO, len(items))
	for i := range items {
		dtos[i] = mapper.ToContentDTO(&items[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}

func (s *ContentService) GetByID(ctx context.Context, id uint) (*domain.ContentDTO, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewContent); err != nil {
		return nil, err
	}
	content, err := s.contentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("content", err)
	}
	dto := mapper.ToContentDTO(content)
	return &dto, nil
}

// Create registers an already stored file as a draft content asset
func (s *ContentService) Create(ctx context.Context, req *domain.CreateContentRequest) (*domain.ContentDTO, error) {
	user, err := requireCreate(ctx, s.policy, domain.ResourceContent)
	if err != nil {
		return nil, err
	}

	content := &domain.Content{
		Status:    domain.ContentStatusDraft,
		CreatedBy: user.UserID,
	}
	applyContentRequest(content, req)
	if err := s.contentRepo.Create(ctx, content); err != nil {
		return nil, fmt.Errorf("failed to create content: %w", err)
	}

	s.logger.Info("content created",
		zap.Uint("content_id", content.ID),
		zap.String("type", string(content.Type)),
		zap.Uint("user_id", user.UserID))

	dto := mapper.ToContentDTO(content)
	return &dto, nil
}

// Update edits the asset. Status may only move between draft and archived
// here; approval goes through Approve.
func (s *ContentService) Update(ctx context.Context, id uint, req *domain.UpdateContentRequest) (*domain.ContentDTO, error) {
	user, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	content, err := s.contentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("content", err)
	}
	if !s.policy.CanEdit(user.Role, domain.ResourceContent, content, user.UserID) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, domain.PermEditContent)
	}

	applyContentRequest(content, &req.CreateContentRequest)
	if req.Status != "" {
		content.Status = req.Status
		if req.Status == domain.ContentStatusDraft {
			content.ApprovedBy = nil
			content.ApprovedAt = nil
		}
	}
	if err := s.contentRepo.Update(ctx, content); err != nil {
		return nil, fmt.Errorf("failed to update content: %w", err)
	}

	dto := mapper.ToContentDTO(content)
	return &dto, nil
}

// Approve marks a draft as approved by the caller
func (s *ContentService) Approve(ctx context.Context, id uint) (*domain.ContentDTO, error) {
	user, err := requirePermission(ctx, s.policy, domain.PermApproveContent)
	if err != nil {
		return nil, err
	}
	content, err := s.contentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("content", err)
	}
	if content.Status != domain.ContentStatusDraft {
		return nil, fmt.Errorf("%w: content is %s", ErrInvalidTransition, content.Status)
	}

	s.markApproved(content, user.UserID)
	if err := s.contentRepo.Update(ctx, content); err != nil {
		return nil, fmt.Errorf("failed to approve content: %w", err)
	}

	s.logger.Info("content approved", zap.Uint("content_id", content.ID), zap.Uint("user_id", user.UserID))

	dto := mapper.ToContentDTO(content)
	return &dto, nil
}

// BulkApprove approves every draft in ids; other records are skipped
func (s *ContentService) BulkApprove(ctx context.Context, ids []uint) (*domain.BatchResult, error) {
	user, err := requirePermission(ctx, s.policy, domain.PermApproveContent)
	if err != nil {
		return nil, err
	}
	items, err := s.contentRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}

	result := domain.NewBatchResult()
	for _, id := range ids {
		content, ok := items[id]
		if !ok {
			result.Skipped = append(result.Skipped, domain.BatchItemResult{ID: id, Reason: "not found"})
			continue
		}
		if content.Status != domain.ContentStatusDraft {
			result.Skipped = append(result.Skipped, domain.BatchItemResult{ID: id, Reason: "status " + string(content.Status)})
			continue
		}
		s.markApproved(content, user.UserID)
		if err := s.contentRepo.Update(ctx, content); err != nil {
			s.logger.Warn("bulk content approval failed", zap.Uint("content_id", id), zap.Error(err))
			result.Failed = append(result.Failed, domain.BatchItemResult{ID: id, Reason: err.Error()})
			continue
		}
		result.Processed = append(result.Processed, id)
	}
	return result, nil
}

// Delete removes the record and then its stored file
func (s *ContentService) Delete(ctx context.Context, id uint) error {
	user, err := requirePermission(ctx, s.policy, domain.PermDeleteContent)
	if err != nil {
		return err
	}
	content, err := s.contentRepo.GetByID(ctx, id)
	if err != nil {
		return lookupError("content", err)
	}
	if err := s.remove(ctx, content); err != nil {
		return err
	}
	s.logger.Info("content deleted", zap.Uint("content_id", id), zap.Uint("user_id", user.UserID))
	return nil
}

func (s *ContentService) BulkDelete(ctx context.Context, ids []uint) (*domain.BatchResult, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermDeleteContent); err != nil {
		return nil, err
	}
	items, err := s.contentRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}

	result := domain.NewBatchResult()
	for _, id := range ids {
		content, ok := items[id]
		if !ok {
			result.Skipped = append(result.Skipped, domain.BatchItemResult{ID: id, Reason: "not found"})
			continue
		}
		if err := s.remove(ctx, content); err != nil {
			result.Failed = append(result.Failed, domain.BatchItemResult{ID: id, Reason: err.Error()})
			continue
		}
		result.Processed = append(result.Processed, id)
	}
	return result, nil
}

func (s *ContentService) remove(ctx context.Context, content *domain.Content) error {
	if err := s.contentRepo.Delete(ctx, content.ID); err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	if err := s.storage.Delete(ctx, content.FilePath); err != nil {
		s.logger.Warn("failed to remove content file",
			zap.Uint("content_id", content.ID),
			zap.String("path", content.FilePath),
			zap.Error(err))
	}
	return nil
}

func (s *ContentService) markApproved(content *domain.Content, userID uint) {
	now := nowUTC()
	content.Status = domain.ContentStatusApproved
	content.ApprovedBy = &userID
	content.ApprovedAt = &now
}

func applyContentRequest(content *domain.Content, req *domain.CreateContentRequest) {
	content.Title = req.Title
	content.Description = req.Description
	content.Type = req.Type
	content.Category = req.Category
	content.FilePath = req.FilePath
	content.FileName = req.FileName
	content.FileSize = req.FileSize
	content.MimeType = req.MimeType
	content.AltText = req.AltText
	content.Tags = req.Tags
	content.ClientID = req.ClientID
	content.ProjectID = req.ProjectID
}
