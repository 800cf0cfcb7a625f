package repository

import (
	"context"
	"time"

	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceFilters narrows invoice listings
type InvoiceFilters struct {
	Search    string
	Status    *domain.InvoiceStatus
	ClientID  *uint
	ProjectID *uint
	// Unpaid keeps draft, sent and overdue invoices
	Unpaid bool
	// OverdueAt keeps invoices due before this instant that are not paid.
	// Cancelled invoices are included.
	OverdueAt *time.Time
}

var invoiceSortFields = map[string]string{
	"createdAt":     "created_at",
	"dueDate":       "due_date",
	"issueDate":     "issue_date",
	"invoiceNumber": "invoice_number",
	"totalAmount":   "total_amount",
}

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create inserts the invoice together with its items in one transaction
func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Omit("Client", "Project").Create(invoice).Error
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uint) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Update saves the invoice row only; items are written through InvoiceItemRepository
func (r *InvoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Omit("Client", "Project", "Items").Save(invoice).Error
}

// Delete removes the invoice and its items
func (r *InvoiceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&domain.InvoiceItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Invoice{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *InvoiceRepository) List(ctx context.Context, page, pageSize int, filters *InvoiceFilters, sort SortConfig) ([]domain.Invoice, int64, error) {
	var invoices []domain.Invoice

	query := r.db.WithContext(ctx).Model(&domain.Invoice{}).Preload("Client")
	if filters != nil {
		query = applySearch(query, filters.Search, "invoice_number", "notes")
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.ClientID != nil {
			query = query.Where("client_id = ?", *filters.ClientID)
		}
		if filters.ProjectID != nil {
			query = query.Where("project_id = ?", *filters.ProjectID)
		}
		if filters.Unpaid {
			query = query.Where("status IN ?", domain.InvoiceUnpaidStatuses)
		}
		if filters.OverdueAt != nil {
			query = query.Where("due_date < ? AND status <> ?", *filters.OverdueAt, domain.InvoiceStatusPaid)
		}
	}

	order := BuildOrderClause(sort, invoiceSortFields, "created_at")
	total, err := paginate(query, page, pageSize, order, &invoices)
	return invoices, total, err
}

// NumberExists reports whether another invoice already uses the number
func (r *InvoiceRepository) NumberExists(ctx context.Context, number string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Invoice{}).Where("invoice_number = ?", number)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *InvoiceRepository) CountUnpaid(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("status IN ?", domain.InvoiceUnpaidStatuses).
		Count(&count).Error
	return count, err
}

// OutstandingBalance sums total minus paid over unpaid invoices
func (r *InvoiceRepository) OutstandingBalance(ctx context.Context) (decimal.Decimal, error) {
	var invoices []domain.Invoice
	err := r.db.WithContext(ctx).
		Select("total_amount", "paid_amount").
		Where("status IN ?", domain.InvoiceUnpaidStatuses).
		Find(&invoices).Error
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, inv := range invoices {
		sum = sum.Add(inv.TotalAmount.Sub(inv.PaidAmount))
	}
	return sum, nil
}

// CountOverdue counts invoices due before now that are not paid.
// The stored status is not consulted beyond paid.
func (r *InvoiceRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("due_date < ? AND status <> ?", now, domain.InvoiceStatusPaid).
		Count(&count).Error
	return count, err
}
