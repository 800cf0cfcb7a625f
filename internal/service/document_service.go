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

type DocumentService struct {
	documentRepo *repository.DocumentRepository
	storage      storage.Storage
	policy       *policy.Engine
	logger       *zap.Logger
}

func NewDocumentService(
	documentRepo *repository.DocumentRepository,
	store storage.Storage,
	engine *policy.Engine,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		storage:      store,
		policy:       engine,
		logger:       logger,
	}
}

func (s *DocumentService) List(ctx context.Context, page, pageSize int, filters *repository.DocumentFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewDocuments); err != nil {
		return nil, err
	}
	page, pageSize = clampPage(page, pageSize)

	docs, total, err := s.documentRepo.List(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	dtos := make([]domain.DocumentDTO, len(docs))
	for i := range docs {
		dtos[i] = mapper.ToDocumentDTO(&docs[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}

func (s *DocumentService) GetByID(ctx context.Context, id uint) (*domain.DocumentDTO, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewDocuments); err != nil {
		return nil, err
	}
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("document", err)
	}
	dto := mapper.ToDocumentDTO(doc)
	return &dto, nil
}

// Create records metadata for a stored file; it is gated by upload_documents
func (s *DocumentService) Create(ctx context.Context, req *domain.CreateDocumentRequest) (*domain.DocumentDTO, error) {
	user, err := requireCreate(ctx, s.policy, domain.ResourceDocuments)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{UploadedBy: user.UserID}
	applyDocumentRequest(doc, req)
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.logger.Info("document created",
		zap.Uint("document_id", doc.ID),
		zap.String("category", string(doc.Category)),
		zap.Uint("user_id", user.UserID))

	dto := mapper.ToDocumentDTO(doc)
	return &dto, nil
}

func (s *DocumentService) Update(ctx context.Context, id uint, req *domain.UpdateDocumentRequest) (*domain.DocumentDTO, error) {
	user, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("document", err)
	}
	if !s.policy.CanEdit(user.Role, domain.ResourceDocuments, doc, user.UserID) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, domain.PermEditDocuments)
	}

	applyDocumentRequest(doc, req)
	if err := s.documentRepo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	dto := mapper.ToDocumentDTO(doc)
	return &dto, nil
}

// Delete removes the record and then its stored file
func (s *DocumentService) Delete(ctx context.Context, id uint) error {
	user, err := requirePermission(ctx, s.policy, domain.PermDeleteDocuments)
	if err != nil {
		return err
	}
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return lookupError("document", err)
	}
	if err := s.remove(ctx, doc); err != nil {
		return err
	}
	s.logger.Info("document deleted", zap.Uint("document_id", id), zap.Uint("user_id", user.UserID))
	return nil
}

func (s *DocumentService) BulkDelete(ctx context.Context, ids []uint) (*domain.BatchResult, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermDeleteDocuments); err != nil {
		return nil, err
	}

	result := domain.NewBatchResult()
	for _, id := range ids {
		doc, err := s.documentRepo.GetByID(ctx, id)
		if err != nil {
			result.Skipped = append(result.Skipped, domain.BatchItemResult{ID: id, Reason: "not found"})
			continue
		}
		if err := s.remove(ctx, doc); err != nil {
			result.Failed = append(result.Failed, domain.BatchItemResult{ID: id, Reason: err.Error()})
			continue
		}
		result.Processed = append(result.Processed, id)
	}
	return result, nil
}

func (s *DocumentService) remove(ctx context.Context, doc *domain.Document) error {
	if err := s.documentRepo.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if err := s.storage.Delete(ctx, doc.FilePath); err != nil {
		s.logger.Warn("failed to remove document file",
			zap.Uint("document_id", doc.ID),
			zap.String("path", doc.FilePath),
			zap.Error(err))
	}
	return nil
}

func applyDocumentRequest(doc *domain.Document, req *domain.CreateDocumentRequest) {
	doc.Title = req.Title
	doc.Description = req.Description
	doc.FilePath = req.FilePath
	doc.FileName = req.FileName
	doc.FileSize = req.FileSize
	doc.MimeType = req.MimeType
	doc.Category = req.Category
	if doc.Category == "" {
		doc.Category = domain.DocumentCategoryOther
	}
	doc.ClientID = req.ClientID
	doc.ProjectID = req.ProjectID
	doc.IsConfidential = req.IsConfidential
}
