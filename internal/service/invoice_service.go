package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/opsdesk/admin-api/internal/derive"
	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/mapper"
	"github.com/opsdesk/admin-api/internal/policy"
	"github.com/opsdesk/admin-api/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

type InvoiceService struct {
	invoiceRepo *repository.InvoiceRepository
	clientRepo  *repository.ClientRepository
	projectRepo *repository.ProjectRepository
	policy      *policy.Engine
	logger      *zap.Logger
}

func NewInvoiceService(
	invoiceRepo *repository.InvoiceRepository,
	clientRepo *repository.ClientRepository,
	projectRepo *repository.ProjectRepository,
	engine *policy.Engine,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		projectRepo: projectRepo,
		policy:      engine,
		logger:      logger,
	}
}

func (s *InvoiceService) List(ctx context.Context, page, pageSize int, filters *repository.InvoiceFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewInvoices); err != nil {
		return nil, err
	}
	page, pageSize = clampPage(page, pageSize)

	invoices, total, err := s.invoiceRepo.List(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	now := nowUTC()
	dtos := make([]domain.InvoiceDTO, len(invoices))
	for i := range invoices {
		dtos[i] = mapper.ToInvoiceDTO(&invoices[i], now)
	}
	return paginated(dtos, total, page, pageSize), nil
}

func (s *InvoiceService) GetByID(ctx context.Context, id uint) (*domain.InvoiceDTO, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewInvoices); err != nil {
		return nil, err
	}
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("invoice", err)
	}
	dto := mapper.ToInvoiceDTO(invoice, nowUTC())
	return &dto, nil
}

// Create stores a new invoice with its line items. Tax and total are always
// derived from subtotal and tax rate.
func (s *InvoiceService) Create(ctx context.Context, req *domain.CreateInvoiceRequest) (*domain.InvoiceDTO, error) {
	user, err := requireCreate(ctx, s.policy, domain.ResourceInvoices)
	if err != nil {
		return nil, err
	}

	invoice := &domain.Invoice{
		InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),
		Status:        req.Status,
		CreatedBy:     user.UserID,
	}
	if invoice.InvoiceNumber == "" {
		invoice.InvoiceNumber = generateInvoiceNumber()
	}
	if invoice.Status == "" {
		invoice.Status = domain.InvoiceStatusDraft
	}
	if err := s.applyFields(ctx, invoice, invoiceFields{
		ClientID:    req.ClientID,
		ProjectID:   req.ProjectID,
		IssueDate:   req.IssueDate,
		DueDate:     req.DueDate,
		PaymentDate: req.PaymentDate,
		Subtotal:    req.Subtotal,
		TaxRate:     req.TaxRate,
		PaidAmount:  req.PaidAmount,
		Notes:       req.Notes,
	}); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueNumber(ctx, invoice.InvoiceNumber, 0); err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		invoice.Items = append(invoice.Items, domain.InvoiceItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
		})
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.logger.Info("invoice created",
		zap.Uint("invoice_id", invoice.ID),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Uint("user_id", user.UserID))

	return s.GetByID(ctx, invoice.ID)
}

// Update replaces the invoice fields and recomputes tax and total
func (s *InvoiceService) Update(ctx context.Context, id uint, req *domain.UpdateInvoiceRequest) (*domain.InvoiceDTO, error) {
	user, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("invoice", err)
	}
	if !s.policy.CanEdit(user.Role, domain.ResourceInvoices, invoice, user.UserID) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, domain.PermEditInvoices)
	}

	invoice.InvoiceNumber = strings.TrimSpace(req.InvoiceNumber)
	invoice.Status = req.Status
	if err := s.applyFields(ctx, invoice, invoiceFields{
		ClientID:    req.ClientID,
		ProjectID:   req.ProjectID,
		IssueDate:   req.IssueDate,
		DueDate:     req.DueDate,
		PaymentDate: req.PaymentDate,
		Subtotal:    req.Subtotal,
		TaxRate:     req.TaxRate,
		PaidAmount:  req.PaidAmount,
		Notes:       req.Notes,
	}); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueNumber(ctx, invoice.InvoiceNumber, invoice.ID); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	s.logger.Info("invoice updated",
		zap.Uint("invoice_id", invoice.ID),
		zap.String("status", string(invoice.Status)),
		zap.Uint("user_id", user.UserID))

	return s.GetByID(ctx, invoice.ID)
}

func (s *InvoiceService) Delete(ctx context.Context, id uint) error {
	user, err := requirePermission(ctx, s.policy, domain.PermDeleteInvoices)
	if err != nil {
		return err
	}
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("invoice: %w", ErrNotFound)
		}
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	s.logger.Info("invoice deleted", zap.Uint("invoice_id", id), zap.Uint("user_id", user.UserID))
	return nil
}

// BulkDelete deletes each invoice independently and reports per-record outcomes
func (s *InvoiceService) BulkDelete(ctx context.Context, ids []uint) (*domain.BatchResult, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermDeleteInvoices); err != nil {
		return nil, err
	}
	result := domain.NewBatchResult()
	for _, id := range ids {
		err := s.invoiceRepo.Delete(ctx, id)
		switch {
		case err == nil:
			result.Processed = append(result.Processed, id)
		case errors.Is(err, gorm.ErrRecordNotFound):
			result.Skipped = append(result.Skipped, domain.BatchItemResult{ID: id, Reason: "not found"})
		default:
			s.logger.Warn("bulk invoice delete failed", zap.Uint("invoice_id", id), zap.Error(err))
			result.Failed = append(result.Failed, domain.BatchItemResult{ID: id, Reason: err.Error()})
		}
	}
	return result, nil
}

// invoiceFields are the request fields shared by create and update
type invoiceFields struct {
	ClientID    uint
	ProjectID   *uint
	IssueDate   string
	DueDate     string
	PaymentDate string
	Subtotal    decimal.Decimal
	TaxRate     decimal.Decimal
	PaidAmount  decimal.Decimal
	Notes       string
}

func (s *InvoiceService) applyFields(ctx context.Context, invoice *domain.Invoice, f invoiceFields) error {
	if f.Subtotal.IsNegative() || f.PaidAmount.IsNegative() {
		return fmt.Errorf("%w: amounts must not be negative", ErrInvalidInput)
	}
	if f.TaxRate.IsNegative() || f.TaxRate.GreaterThan(hundred) {
		return fmt.Errorf("%w: tax rate must be between 0 and 100", ErrInvalidInput)
	}

	issue, err := parseRequiredDate("issueDate", f.IssueDate)
	if err != nil {
		return err
	}
	due, err := parseRequiredDate("dueDate", f.DueDate)
	if err != nil {
		return err
	}
	paid, err := parseDate("paymentDate", f.PaymentDate)
	if err != nil {
		return err
	}

	if _, err := s.clientRepo.GetByID(ctx, f.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: client %d does not exist", ErrInvalidInput, f.ClientID)
		}
		return fmt.Errorf("failed to get client: %w", err)
	}
	if f.ProjectID != nil {
		ok, err := s.projectRepo.Exists(ctx, *f.ProjectID, &f.ClientID)
		if err != nil {
			return fmt.Errorf("failed to check project: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: project %d does not belong to client %d", ErrInvalidInput, *f.ProjectID, f.ClientID)
		}
	}

	invoice.ClientID = f.ClientID
	invoice.ProjectID = f.ProjectID
	invoice.IssueDate = issue
	invoice.DueDate = due
	invoice.PaymentDate = paid
	invoice.Subtotal = f.Subtotal
	invoice.TaxRate = f.TaxRate
	invoice.PaidAmount = f.PaidAmount
	invoice.Notes = f.Notes
	invoice.TaxAmount, invoice.TotalAmount = derive.InvoiceAmounts(invoice.Subtotal, invoice.TaxRate)
	return nil
}

func (s *InvoiceService) ensureUniqueNumber(ctx context.Context, number string, excludeID uint) error {
	taken, err := s.invoiceRepo.NumberExists(ctx, number, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check invoice number: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: invoice number %s already exists", ErrConflict, number)
	}
	return nil
}

// generateInvoiceNumber returns an INV- prefixed number for invoices created without one
func generateInvoiceNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "INV-" + strings.ToUpper(id[:12])
}
