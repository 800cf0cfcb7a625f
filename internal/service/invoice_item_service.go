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

// InvoiceItemService manages the line items of an invoice. Item access follows
// the invoice permissions.
type InvoiceItemService struct {
	itemRepo    *repository.InvoiceItemRepository
	invoiceRepo *repository.InvoiceRepository
	policy      *policy.Engine
	logger      *zap.Logger
}

func NewInvoiceItemService(
	itemRepo *repository.InvoiceItemRepository,
	invoiceRepo *repository.InvoiceRepository,
	engine *policy.Engine,
	logger *zap.Logger,
) *InvoiceItemService {
	return &InvoiceItemService{
		itemRepo:    itemRepo,
		invoiceRepo: invoiceRepo,
		policy:      engine,
		logger:      logger,
	}
}

func (s *InvoiceItemService) List(ctx context.Context, invoiceID uint) ([]domain.InvoiceItemDTO, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewInvoices); err != nil {
		return nil, err
	}
	if _, err := s.invoiceRepo.GetByID(ctx, invoiceID); err != nil {
		return nil, lookupError("invoice", err)
	}

	items, err := s.itemRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice items: %w", err)
	}
	dtos := make([]domain.InvoiceItemDTO, len(items))
	for i := range items {
		dtos[i] = mapper.ToInvoiceItemDTO(&items[i])
	}
	return dtos, nil
}

func (s *InvoiceItemService) Create(ctx context.Context, invoiceID uint, req *domain.CreateInvoiceItemRequest) (*domain.InvoiceItemDTO, error) {
	user, err := requirePermission(ctx, s.policy, domain.PermCreateInvoices)
	if err != nil {
		return nil, err
	}
	if err := validateItem(req); err != nil {
		return nil, err
	}
	if _, err := s.invoiceRepo.GetByID(ctx, invoiceID); err != nil {
		return nil, lookupError("invoice", err)
	}

	item := &domain.InvoiceItem{
		InvoiceID:   invoiceID,
		Description: req.Description,
		Quantity:    req.Quantity,
		Rate:        req.Rate,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create invoice item: %w", err)
	}

	s.logger.Info("invoice item created",
		zap.Uint("invoice_id", invoiceID),
		zap.Uint("item_id", item.ID),
		zap.Uint("user_id", user.UserID))

	dto := mapper.ToInvoiceItemDTO(item)
	return &dto, nil
}

func (s *InvoiceItemService) Update(ctx context.Context, invoiceID, id uint, req *domain.UpdateInvoiceItemRequest) (*domain.InvoiceItemDTO, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermEditInvoices); err != nil {
		return nil, err
	}
	if err := validateItem(req); err != nil {
		return nil, err
	}

	item, err := s.itemRepo.GetByID(ctx, invoiceID, id)
	if err != nil {
		return nil, lookupError("invoice item", err)
	}
	item.Description = req.Description
	item.Quantity = req.Quantity
	item.Rate = req.Rate

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update invoice item: %w", err)
	}
	dto := mapper.ToInvoiceItemDTO(item)
	return &dto, nil
}

func (s *InvoiceItemService) Delete(ctx context.Context, invoiceID, id uint) error {
	if _, err := requirePermission(ctx, s.policy, domain.PermDeleteInvoices); err != nil {
		return err
	}
	return s.removeFrom(invoiceID)(ctx, id)
}

// BulkDelete removes several items of one invoice. A missing invoice fails
// the whole call; missing items are skipped.
func (s *InvoiceItemService) BulkDelete(ctx context.Context, invoiceID uint, ids []uint) (*domain.BatchResult, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermDeleteInvoices); err != nil {
		return nil, err
	}
	if _, err := s.invoiceRepo.GetByID(ctx, invoiceID); err != nil {
		return nil, lookupError("invoice", err)
	}
	return deleteEach(ctx, "invoice item", ids, s.removeFrom(invoiceID), s.logger), nil
}

func (s *InvoiceItemService) removeFrom(invoiceID uint) func(context.Context, uint) error {
	return func(ctx context.Context, id uint) error {
		if err := s.itemRepo.Delete(ctx, invoiceID, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("invoice item: %w", ErrNotFound)
			}
			return fmt.Errorf("failed to delete invoice item: %w", err)
		}
		return nil
	}
}

func validateItem(req *domain.CreateInvoiceItemRequest) error {
	if req.Quantity.IsNegative() || req.Rate.IsNegative() {
		return fmt.Errorf("%w: quantity and rate must not be negative", ErrInvalidInput)
	}
	return nil
}
