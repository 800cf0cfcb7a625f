package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/policy"
	"github.com/opsdesk/admin-api/internal/repository"
	"github.com/opsdesk/admin-api/internal/service"
	"github.com/opsdesk/admin-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type invoiceFixtures struct {
	db      *gorm.DB
	svc     *service.InvoiceService
	items   *service.InvoiceItemService
	client  *domain.Client
	manager *domain.User
}

func setupInvoiceService(t *testing.T) *invoiceFixtures {
	db := testutil.SetupTestDB(t)
	log := zap.NewNop()
	invoiceRepo := repository.NewInvoiceRepository(db)

	return &invoiceFixtures{
		db: db,
		svc: service.NewInvoiceService(
			invoiceRepo,
			repository.NewClientRepository(db),
			repository.NewProjectRepository(db),
			policy.Default(),
			log,
		),
		items:   service.NewInvoiceItemService(repository.NewInvoiceItemRepository(db), invoiceRepo, policy.Default(), log),
		client:  testutil.CreateTestClient(t, db, "Acme"),
		manager: testutil.CreateTestUser(t, db, domain.RoleManager),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestInvoiceService_Create(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := testutil.AsUser(context.Background(), f.manager)

	t.Run("derives tax, total and line amounts", func(t *testing.T) {
		dto, err := f.svc.Create(ctx, &domain.CreateInvoiceRequest{
			ClientID:      f.client.ID,
			InvoiceNumber: "INV-001",
			IssueDate:     "2024-01-01",
			DueDate:       "2024-01-31",
			Subtotal:      dec("500"),
			TaxRate:       dec("8.5"),
			PaidAmount:    dec("100"),
			Items: []domain.CreateInvoiceItemRequest{
				{Description: "Design", Quantity: dec("2.5"), Rate: dec("40")},
				{Description: "Hosting", Quantity: dec("1"), Rate: dec("19.99")},
			},
		})
		require.NoError(t, err)

		assert.True(t, dec("42.5").Equal(dto.TaxAmount), "tax %s", dto.TaxAmount)
		assert.True(t, dec("542.5").Equal(dto.TotalAmount), "total %s", dto.TotalAmount)
		assert.True(t, dec("442.5").Equal(dto.Balance), "balance %s", dto.Balance)
		assert.Equal(t, "danger", dto.BalanceTone)
		assert.Equal(t, domain.InvoiceStatusDraft, dto.Status)
		assert.Equal(t, "Acme", dto.ClientName)
		require.Len(t, dto.Items, 2)
		assert.True(t, dec("100").Equal(dto.Items[0].Amount))
		assert.True(t, dec("19.99").Equal(dto.Items[1].Amount))
		// due date is in the past and the invoice is unpaid
		assert.True(t, dto.IsOverdue)
	})

	t.Run("generates a number when none is given", func(t *testing.T) {
		dto, err := f.svc.Create(ctx, &domain.CreateInvoiceRequest{
			ClientID:  f.client.ID,
			IssueDate: "2024-02-01",
			DueDate:   "2024-03-01",
			Subtotal:  dec("10"),
		})
		require.NoError(t, err)
		assert.Regexp(t, `^INV-[0-9A-F]{12}$`, dto.InvoiceNumber)
	})

	t.Run("rejects a duplicate number", func(t *testing.T) {
		_, err := f.svc.Create(ctx, &domain.CreateInvoiceRequest{
			ClientID:      f.client.ID,
			InvoiceNumber: "INV-001",
			IssueDate:     "2024-01-01",
			DueDate:       "2024-01-31",
		})
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("rejects an unknown client", func(t *testing.T) {
		_, err := f.svc.Create(ctx, &domain.CreateInvoiceRequest{
			ClientID:  9999,
			IssueDate: "2024-01-01",
			DueDate:   "2024-01-31",
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("rejects a project of another client", func(t *testing.T) {
		other := testutil.CreateTestClient(t, f.db, "Other")
		project := testutil.CreateTestProject(t, f.db, other, domain.ProjectStatusPlanning)
		_, err := f.svc.Create(ctx, &domain.CreateInvoiceRequest{
			ClientID:  f.client.ID,
			ProjectID: &project.ID,
			IssueDate: "2024-01-01",
			DueDate:   "2024-01-31",
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("denied without create_invoices", func(t *testing.T) {
		designer := testutil.CreateTestUser(t, f.db, domain.RoleDesigner)
		_, err := f.svc.Create(testutil.AsUser(context.Background(), designer), &domain.CreateInvoiceRequest{
			ClientID:  f.client.ID,
			IssueDate: "2024-01-01",
			DueDate:   "2024-01-31",
		})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := f.svc.Create(context.Background(), &domain.CreateInvoiceRequest{})
		assert.ErrorIs(t, err, service.ErrUnauthorized)
	})
}

func TestInvoiceService_UpdateRecomputesAmounts(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := testutil.AsUser(context.Background(), f.manager)
	invoice := testutil.CreateTestInvoice(t, f.db, f.client, domain.InvoiceStatusSent, time.Now().UTC().AddDate(0, 0, 10))

	dto, err := f.svc.Update(ctx, invoice.ID, &domain.UpdateInvoiceRequest{
		ClientID:      f.client.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		IssueDate:     "2024-05-01",
		DueDate:       "2024-05-31",
		Status:        domain.InvoiceStatusPaid,
		Subtotal:      dec("200"),
		TaxRate:       dec("25"),
		PaidAmount:    dec("250"),
		PaymentDate:   "2024-05-20",
	})
	require.NoError(t, err)

	assert.True(t, dec("50").Equal(dto.TaxAmount))
	assert.True(t, dec("250").Equal(dto.TotalAmount))
	assert.True(t, dto.Balance.IsZero())
	assert.Equal(t, "success", dto.BalanceTone)
	assert.False(t, dto.IsOverdue, "paid invoices are never overdue")
	require.NotNil(t, dto.PaymentDate)
	assert.Equal(t, "2024-05-20", *dto.PaymentDate)

	_, err = f.svc.Update(ctx, 9999, &domain.UpdateInvoiceRequest{})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestInvoiceService_ListFilters(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := testutil.AsUser(context.Background(), f.manager)
	now := time.Now().UTC()

	overdue := testutil.CreateTestInvoice(t, f.db, f.client, domain.InvoiceStatusSent, now.AddDate(0, 0, -5))
	cancelled := testutil.CreateTestInvoice(t, f.db, f.client, domain.InvoiceStatusCancelled, now.AddDate(0, 0, -5))
	testutil.CreateTestInvoice(t, f.db, f.client, domain.InvoiceStatusPaid, now.AddDate(0, 0, -5))
	upcoming := testutil.CreateTestInvoice(t, f.db, f.client, domain.InvoiceStatusDraft, now.AddDate(0, 0, 5))

	result, err := f.svc.List(ctx, 1, 20, &repository.InvoiceFilters{OverdueAt: &now}, repository.DefaultSortConfig())
	require.NoError(t, err)
	ids := invoiceIDs(result)
	assert.ElementsMatch(t, []uint{overdue.ID, cancelled.ID}, ids)

	result, err = f.svc.List(ctx, 1, 20, &repository.InvoiceFilters{Unpaid: true}, repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{overdue.ID, upcoming.ID}, invoiceIDs(result))

	hr := testutil.CreateTestUser(t, f.db, domain.RoleHR)
	_, err = f.svc.List(testutil.AsUser(context.Background(), hr), 1, 20, nil, repository.DefaultSortConfig())
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestInvoiceService_BulkDelete(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := testutil.AsUser(context.Background(), f.manager)
	a := testutil.CreateTestInvoice(t, f.db, f.client, domain.InvoiceStatusDraft, time.Now().UTC())
	b := testutil.CreateTestInvoice(t, f.db, f.client, domain.InvoiceStatusDraft, time.Now().UTC())
	_, err := f.items.Create(ctx, a.ID, &domain.CreateInvoiceItemRequest{Description: "x", Quantity: dec("1"), Rate: dec("1")})
	require.NoError(t, err)

	result, err := f.svc.BulkDelete(ctx, []uint{a.ID, 9999, b.ID})
	require.NoError(t, err)

	assert.Equal(t, []uint{a.ID, b.ID}, result.Processed)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, uint(9999), result.Skipped[0].ID)
	assert.Empty(t, result.Failed)

	var remaining int64
	require.NoError(t, f.db.Model(&domain.InvoiceItem{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestInvoiceItemService(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := testutil.AsUser(context.Background(), f.manager)
	invoice := testutil.CreateTestInvoice(t, f.db, f.client, domain.InvoiceStatusDraft, time.Now().UTC())

	item, err := f.items.Create(ctx, invoice.ID, &domain.CreateInvoiceItemRequest{
		Description: "Copywriting",
		Quantity:    dec("3"),
		Rate:        dec("33.33"),
	})
	require.NoError(t, err)
	assert.True(t, dec("99.99").Equal(item.Amount))

	updated, err := f.items.Update(ctx, invoice.ID, item.ID, &domain.UpdateInvoiceItemRequest{
		Description: "Copywriting",
		Quantity:    dec("4"),
		Rate:        dec("33.33"),
	})
	require.NoError(t, err)
	assert.True(t, dec("133.32").Equal(updated.Amount))

	items, err := f.items.List(ctx, invoice.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, dec("133.32").Equal(items[0].Amount))

	_, err = f.items.Create(ctx, invoice.ID, &domain.CreateInvoiceItemRequest{Description: "bad", Quantity: dec("-1")})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	other := testutil.CreateTestInvoice(t, f.db, f.client, domain.InvoiceStatusDraft, time.Now().UTC())
	assert.ErrorIs(t, f.items.Delete(ctx, other.ID, item.ID), service.ErrNotFound)
	require.NoError(t, f.items.Delete(ctx, invoice.ID, item.ID))

	_, err = f.items.List(ctx, 9999)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func invoiceIDs(result *domain.PaginatedResponse) []uint {
	dtos := result.Data.([]domain.InvoiceDTO)
	ids := make([]uint, len(dtos))
	for i, dto := range dtos {
		ids[i] = dto.ID
	}
	return ids
}

func TestInvoiceItemService_BulkDelete(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := testutil.AsUser(context.Background(), f.manager)
	invoice := testutil.CreateTestInvoice(t, f.db, f.client, domain.InvoiceStatusDraft, time.Now().UTC())
	other := testutil.CreateTestInvoice(t, f.db, f.client, domain.InvoiceStatusDraft, time.Now().UTC())

	create := func(invoiceID uint) uint {
		item, err := f.items.Create(ctx, invoiceID, &domain.CreateInvoiceItemRequest{
			Description: "Line",
			Quantity:    dec("1"),
			Rate:        dec("10"),
		})
		require.NoError(t, err)
		return item.ID
	}
	first := create(invoice.ID)
	second := create(invoice.ID)
	foreign := create(other.ID)

	t.Run("writer has no invoice access", func(t *testing.T) {
		writer := testutil.CreateTestUser(t, f.db, domain.RoleContentWriter)
		_, err := f.items.BulkDelete(testutil.AsUser(context.Background(), writer), invoice.ID, []uint{first})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		_, err := f.items.BulkDelete(ctx, 9999, []uint{first})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	result, err := f.items.BulkDelete(ctx, invoice.ID, []uint{first, foreign, second})
	require.NoError(t, err)
	assert.Equal(t, []uint{first, second}, result.Processed)
	assert.Equal(t, []domain.BatchItemResult{{ID: foreign, Reason: "not found"}}, result.Skipped)
	assert.Empty(t, result.Failed)

	remaining, err := f.items.List(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestInvoiceItemService_ActionTokens(t *testing.T) {
	db := testutil.SetupTestDB(t)
	invoiceRepo := repository.NewInvoiceRepository(db)
	editOnly := policy.New(map[domain.Role][]domain.Permission{
		domain.RoleDesigner: {domain.PermViewInvoices, domain.PermEditInvoices},
	})
	items := service.NewInvoiceItemService(repository.NewInvoiceItemRepository(db), invoiceRepo, editOnly, zap.NewNop())

	editor := testutil.CreateTestUser(t, db, domain.RoleDesigner)
	ctx := testutil.AsUser(context.Background(), editor)
	invoice := testutil.CreateTestInvoice(t, db, testutil.CreateTestClient(t, db, "Acme"), domain.InvoiceStatusDraft, time.Now().UTC())
	existing := &domain.InvoiceItem{InvoiceID: invoice.ID, Description: "Seed", Quantity: dec("1"), Rate: dec("5"), Amount: dec("5")}
	require.NoError(t, db.Create(existing).Error)

	req := &domain.CreateInvoiceItemRequest{Description: "Extra", Quantity: dec("1"), Rate: dec("5")}
	_, err := items.Create(ctx, invoice.ID, req)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
	assert.ErrorContains(t, err, "create_invoices")

	_, err = items.Update(ctx, invoice.ID, existing.ID, req)
	assert.NoError(t, err)

	err = items.Delete(ctx, invoice.ID, existing.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
	assert.ErrorContains(t, err, "delete_invoices")

	_, err = items.BulkDelete(ctx, invoice.ID, []uint{existing.ID})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}
