// Package testutil provides an in-memory database and fixtures for tests
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opsdesk/admin-api/internal/auth"
	"github.com/opsdesk/admin-api/internal/database"
	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seq atomic.Int64

// SetupTestDB opens a fresh migrated sqlite database for one test
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// next returns a unique number for test data
func next() int64 {
	return seq.Add(1)
}

// AsUser returns a context acting as the user
func AsUser(ctx context.Context, user *domain.User) context.Context {
	return auth.WithUserContext(ctx, &auth.UserContext{
		UserID:      user.ID,
		DisplayName: user.Name,
		Email:       user.Email,
		Role:        user.Role,
	})
}

// Date returns midnight UTC of the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates an active user with the role
func CreateTestUser(t *testing.T, db *gorm.DB, role domain.Role) *domain.User {
	t.Helper()
	n := next()
	user := &domain.User{
		Name:     fmt.Sprintf("Test User %d", n),
		Email:    fmt.Sprintf("user%d@example.com", n),
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestClient creates an active client
func CreateTestClient(t *testing.T, db *gorm.DB, name string) *domain.Client {
	t.Helper()
	client := &domain.Client{
		Name:   name,
		Email:  "client@example.com",
		Status: domain.ClientStatusActive,
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

// CreateTestProject creates a project for the client with the status
func CreateTestProject(t *testing.T, db *gorm.DB, client *domain.Client, status domain.ProjectStatus) *domain.Project {
	t.Helper()
	project := &domain.Project{
		ClientID: client.ID,
		Name:     fmt.Sprintf("Project %d", next()),
		Status:   status,
		Priority: domain.PriorityMedium,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(project).Error)
	return project
}

// CreateTestTask creates a task assigned to the user
func CreateTestTask(t *testing.T, db *gorm.DB, assignee *domain.User, status domain.TaskStatus) *domain.Task {
	t.Helper()
	task := &domain.Task{
		Title:      fmt.Sprintf("Task %d", next()),
		Status:     status,
		Priority:   domain.PriorityMedium,
		Type:       domain.TaskTypeDesign,
		AssignedTo: assignee.ID,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(task).Error)
	return task
}

// CreateTestInvoice creates an invoice with derived tax and total
func CreateTestInvoice(t *testing.T, db *gorm.DB, client *domain.Client, status domain.InvoiceStatus, dueDate time.Time) *domain.Invoice {
	t.Helper()
	subtotal := decimal.NewFromInt(1000)
	taxRate := decimal.NewFromInt(10)
	invoice := &domain.Invoice{
		ClientID:      client.ID,
		InvoiceNumber: fmt.Sprintf("INV-TEST-%d", next()),
		IssueDate:     dueDate.AddDate(0, 0, -30),
		DueDate:       dueDate,
		Status:        status,
		Subtotal:      subtotal,
		TaxRate:       taxRate,
		TaxAmount:     decimal.NewFromInt(100),
		TotalAmount:   decimal.NewFromInt(1100),
	}
	require.NoError(t, db.Omit(clause.Associations).Create(invoice).Error)
	return invoice
}

// CreateTestDepartment creates a department
func CreateTestDepartment(t *testing.T, db *gorm.DB, name string) *domain.Department {
	t.Helper()
	dept := &domain.Department{Name: name}
	require.NoError(t, db.Omit(clause.Associations).Create(dept).Error)
	return dept
}

// CreateTestEmployee creates an active employee hired on the date
func CreateTestEmployee(t *testing.T, db *gorm.DB, dept *domain.Department, hired time.Time) *domain.Employee {
	t.Helper()
	n := next()
	employee := &domain.Employee{
		EmployeeCode: fmt.Sprintf("EMP-%04d", n),
		FirstName:    "Test",
		LastName:     fmt.Sprintf("Employee%d", n),
		Email:        fmt.Sprintf("employee%d@example.com", n),
		DepartmentID: dept.ID,
		Position:     "Designer",
		HireDate:     hired,
		Status:       domain.EmployeeStatusActive,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(employee).Error)
	return employee
}

// CreateTestContent creates a content asset stored at path
func CreateTestContent(t *testing.T, db *gorm.DB, creator *domain.User, status domain.ContentStatus, path string) *domain.Content {
	t.Helper()
	content := &domain.Content{
		Title:     fmt.Sprintf("Content %d", next()),
		Type:      domain.ContentTypeImage,
		FilePath:  path,
		FileName:  "asset.png",
		MimeType:  "image/png",
		Status:    status,
		CreatedBy: creator.ID,
	}
	require.NoError(t, db.Create(content).Error)
	return content
}

// CreateTestDocument creates a document stored at path
func CreateTestDocument(t *testing.T, db *gorm.DB, uploader *domain.User, path string) *domain.Document {
	t.Helper()
	size := int64(2048)
	doc := &domain.Document{
		Title:      fmt.Sprintf("Document %d", next()),
		FilePath:   path,
		FileName:   "contract.pdf",
		FileSize:   &size,
		MimeType:   "application/pdf",
		Category:   domain.DocumentCategoryContract,
		UploadedBy: uploader.ID,
	}
	require.NoError(t, db.Create(doc).Error)
	return doc
}
