package repository

import (
	"context"

	"github.com/opsdesk/admin-api/internal/domain"
	"gorm.io/gorm"
)

// InvoiceItemRepository persists invoice line items. Amount is recomputed by
// the model's BeforeSave hook on every write.
type InvoiceItemRepository struct {
	db *gorm.DB
}

func NewInvoiceItemRepository(db *gorm.DB) *InvoiceItemRepository {
	return &InvoiceItemRepository{db: db}
}

func (r *InvoiceItemRepository) Create(ctx context.Context, item *domain.InvoiceItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetByID returns the item only if it belongs to the invoice
func (r *InvoiceItemRepository) GetByID(ctx context.Context, invoiceID, id uint) (*domain.InvoiceItem, error) {
	var item domain.InvoiceItem
	err := r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *InvoiceItemRepository) Update(ctx context.Context, item *domain.InvoiceItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *InvoiceItemRepository) Delete(ctx context.Context, invoiceID, id uint) error {
	result := r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).Delete(&domain.InvoiceItem{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *InvoiceItemRepository) ListByInvoice(ctx context.Context, invoiceID uint) ([]domain.InvoiceItem, error) {
	var items []domain.InvoiceItem
	err := r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).Order("id ASC").Find(&items).Error
	return items, err
}
