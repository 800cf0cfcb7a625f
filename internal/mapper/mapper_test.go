package mapper_test

import (
	"errors"
	"testing"
	"time"

	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/mapper"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func TestToInvoiceDTO(t *testing.T) {
	invoice := &domain.Invoice{
		BaseModel:     domain.BaseModel{ID: 7, CreatedAt: now, UpdatedAt: now},
		ClientID:      3,
		Client:        &domain.Client{Name: "Acme"},
		InvoiceNumber: "INV-0007",
		IssueDate:     now.AddDate(0, 0, -30),
		DueDate:       now.AddDate(0, 0, -1),
		Status:        domain.InvoiceStatusCancelled,
		Subtotal:      decimal.RequireFromString("1000"),
		TaxRate:       decimal.RequireFromString("25"),
		TaxAmount:     decimal.RequireFromString("250"),
		TotalAmount:   decimal.RequireFromString("1250"),
		PaidAmount:    decimal.RequireFromString("1000"),
		Items: []domain.InvoiceItem{
			{InvoiceID: 7, Description: "Design", Quantity: decimal.NewFromInt(2), Rate: decimal.NewFromInt(500), Amount: decimal.NewFromInt(1000)},
		},
	}

	dto := mapper.ToInvoiceDTO(invoice, now)

	assert.Equal(t, uint(7), dto.ID)
	assert.Equal(t, "Acme", dto.ClientName)
	assert.Equal(t, "2025-06-14", dto.DueDate)
	assert.True(t, decimal.RequireFromString("250").Equal(dto.Balance))
	assert.Equal(t, "danger", dto.BalanceTone)
	assert.True(t, dto.IsOverdue, "cancelled invoices past due are still overdue")
	require.Len(t, dto.Items, 1)
	assert.Equal(t, "Design", dto.Items[0].Description)
}

func TestToInvoiceDTO_StatusOverdueNotFlagged(t *testing.T) {
	invoice := &domain.Invoice{
		DueDate:     now.AddDate(0, 0, 10),
		Status:      domain.InvoiceStatusOverdue,
		TotalAmount: decimal.NewFromInt(100),
		PaidAmount:  decimal.NewFromInt(150),
	}

	dto := mapper.ToInvoiceDTO(invoice, now)

	assert.False(t, dto.IsOverdue)
	assert.Equal(t, "success", dto.BalanceTone)
	assert.True(t, decimal.NewFromInt(-50).Equal(dto.Balance))
}

func TestToProjectDTO(t *testing.T) {
	due := now.AddDate(0, 0, -2)

	tests := []struct {
		name         string
		project      domain.Project
		wantProgress *int
		wantLabel    string
		wantTier     string
		wantTone     string
		wantOverdue  bool
	}{
		{
			name:        "no estimate",
			project:     domain.Project{Status: domain.ProjectStatusPlanning},
			wantLabel:   "N/A",
			wantTone:    "secondary",
			wantOverdue: false,
		},
		{
			name:         "at risk and overdue",
			project:      domain.Project{Status: domain.ProjectStatusInProgress, EstimatedHours: f64(100), ActualHours: f64(20), DueDate: &due},
			wantProgress: intPtr(20),
			wantLabel:    "20%",
			wantTier:     "at_risk",
			wantTone:     "danger",
			wantOverdue:  true,
		},
		{
			name:         "completed past due is not overdue",
			project:      domain.Project{Status: domain.ProjectStatusCompleted, EstimatedHours: f64(10), ActualHours: f64(12), DueDate: &due},
			wantProgress: intPtr(100),
			wantLabel:    "100%",
			wantTier:     "on_track",
			wantTone:     "success",
			wantOverdue:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto := mapper.ToProjectDTO(&tt.project, now)
			assert.Equal(t, tt.wantProgress, dto.Progress)
			assert.Equal(t, tt.wantLabel, dto.ProgressLabel)
			assert.Equal(t, tt.wantTier, dto.ProgressTier)
			assert.Equal(t, tt.wantTone, dto.ProgressTone)
			assert.Equal(t, tt.wantOverdue, dto.IsOverdue)
		})
	}
}

func TestToTaskDTO(t *testing.T) {
	start := now.Add(-3 * time.Hour)
	end := now.Add(-90 * time.Minute)
	task := &domain.Task{
		Title:          "Landing page",
		Status:         domain.TaskStatusCompleted,
		AssignedTo:     42,
		Project:        &domain.Project{Name: "Website"},
		EstimatedHours: f64(4),
		ActualHours:    f64(3),
		StartTime:      &start,
		EndTime:        &end,
	}

	dto := mapper.ToTaskDTO(task, now)

	assert.Equal(t, "Website", dto.ProjectName)
	assert.Equal(t, 1.5, dto.TimeSpentHours)
	assert.Equal(t, intPtr(75), dto.Progress)
	assert.Equal(t, "caution", dto.ProgressTier)
	assert.False(t, dto.IsOverdue)
	require.NotNil(t, dto.StartTime)
	assert.Equal(t, "2025-06-15T09:00:00Z", *dto.StartTime)
}

func TestToDocumentDTO(t *testing.T) {
	size := int64(1536)
	document := &domain.Document{
		Title:    "Signed contract",
		FileName: "Contract.PDF",
		FileSize: &size,
		MimeType: "application/pdf",
	}

	dto := mapper.ToDocumentDTO(document)

	assert.Equal(t, "1.5 KB", dto.FileSizeFormatted)
	assert.Equal(t, "pdf", dto.FileExtension)
	assert.True(t, dto.IsPDF)
	assert.False(t, dto.IsImage)
}

func TestToContentDTO_NilTagsAndSize(t *testing.T) {
	dto := mapper.ToContentDTO(&domain.Content{Title: "Banner", Type: domain.ContentTypeImage})

	assert.NotNil(t, dto.Tags)
	assert.Empty(t, dto.Tags)
	assert.Equal(t, "N/A", dto.FileSizeFormatted)
	assert.Nil(t, dto.ApprovedAt)
}

func TestFormatError(t *testing.T) {
	base := errors.New("boom")
	err := mapper.FormatError("invoice", "update", base)

	assert.EqualError(t, err, "failed to update invoice: boom")
	assert.ErrorIs(t, err, base)
}

func intPtr(v int) *int { return &v }
