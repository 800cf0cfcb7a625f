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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDashboardService(t *testing.T) (*service.DashboardService, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	svc := service.NewDashboardService(
		repository.NewClientRepository(db),
		repository.NewProjectRepository(db),
		repository.NewTaskRepository(db),
		repository.NewInvoiceRepository(db),
		repository.NewEmployeeRepository(db),
		repository.NewDepartmentRepository(db),
		repository.NewContentRepository(db),
		policy.Default(),
		zap.NewNop(),
	)
	return svc, db
}

func statValues(dto *domain.DashboardDTO) map[string]string {
	values := make(map[string]string, len(dto.Stats))
	for _, s := range dto.Stats {
		values[s.Label] = s.Value
	}
	return values
}

func TestDashboardService_Manager(t *testing.T) {
	svc, db := setupDashboardService(t)
	manager := testutil.CreateTestUser(t, db, domain.RoleManager)
	client := testutil.CreateTestClient(t, db, "Acme")
	testutil.CreateTestClient(t, db, "Globex")
	testutil.CreateTestProject(t, db, client, domain.ProjectStatusInProgress)
	testutil.CreateTestProject(t, db, client, domain.ProjectStatusPlanning)
	now := time.Now().UTC()
	testutil.CreateTestInvoice(t, db, client, domain.InvoiceStatusSent, now)
	testutil.CreateTestInvoice(t, db, client, domain.InvoiceStatusOverdue, now)
	testutil.CreateTestInvoice(t, db, client, domain.InvoiceStatusPaid, now)
	dept := testutil.CreateTestDepartment(t, db, "Design")
	testutil.CreateTestEmployee(t, db, dept, now.AddDate(-1, 0, 0))

	dto, err := svc.GetStats(testutil.AsUser(context.Background(), manager))
	require.NoError(t, err)

	assert.Equal(t, domain.RoleManager, dto.Role)
	assert.Equal(t, map[string]string{
		"Total Clients":        "2",
		"Active Projects":      "1",
		"Outstanding Invoices": "2",
		"Active Employees":     "1",
	}, statValues(dto))
}

func TestDashboardService_Designer(t *testing.T) {
	svc, db := setupDashboardService(t)
	designer := testutil.CreateTestUser(t, db, domain.RoleDesigner)
	client := testutil.CreateTestClient(t, db, "Acme")
	project := testutil.CreateTestProject(t, db, client, domain.ProjectStatusInProgress)
	now := time.Now().UTC()

	open := testutil.CreateTestTask(t, db, designer, domain.TaskStatusTodo)
	require.NoError(t, db.Model(open).Updates(map[string]interface{}{
		"due_date":   now.AddDate(0, 0, -2),
		"project_id": project.ID,
	}).Error)
	testutil.CreateTestTask(t, db, designer, domain.TaskStatusInProgress)
	testutil.CreateTestTask(t, db, designer, domain.TaskStatusReview)
	done := testutil.CreateTestTask(t, db, designer, domain.TaskStatusCompleted)
	require.NoError(t, db.Model(done).Update("end_time", now).Error)

	dto, err := svc.GetStats(testutil.AsUser(context.Background(), designer))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"My Open Tasks":       "2",
		"Overdue Tasks":       "1",
		"Completed This Week": "1",
		"Active Projects":     "1",
	}, statValues(dto))
}

func TestDashboardService_ContentWriter(t *testing.T) {
	svc, db := setupDashboardService(t)
	writer := testutil.CreateTestUser(t, db, domain.RoleContentWriter)
	client := testutil.CreateTestClient(t, db, "Acme")
	project := testutil.CreateTestProject(t, db, client, domain.ProjectStatusInProgress)

	draft := testutil.CreateTestContent(t, db, writer, domain.ContentStatusDraft, "a/a.png")
	require.NoError(t, db.Model(draft).Update("project_id", project.ID).Error)
	testutil.CreateTestContent(t, db, writer, domain.ContentStatusApproved, "a/b.png")

	dto, err := svc.GetStats(testutil.AsUser(context.Background(), writer))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"Pending Content":  "1",
		"Approved Content": "1",
		"My Projects":      "1",
		"Total Clients":    "1",
	}, statValues(dto))
}

func TestDashboardService_HR(t *testing.T) {
	svc, db := setupDashboardService(t)
	hr := testutil.CreateTestUser(t, db, domain.RoleHR)
	dept := testutil.CreateTestDepartment(t, db, "People")
	testutil.CreateTestDepartment(t, db, "Design")
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	testutil.CreateTestEmployee(t, db, dept, monthStart)
	testutil.CreateTestEmployee(t, db, dept, monthStart.AddDate(-2, 0, 0))
	testutil.CreateTestEmployee(t, db, dept, monthStart.AddDate(0, -1, 0))

	dto, err := svc.GetStats(testutil.AsUser(context.Background(), hr))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"Total Employees":      "3",
		"New Hires This Month": "1",
		"Work Anniversaries":   "1",
		"Departments":          "2",
	}, statValues(dto))
}

func TestDashboardService_RequiresUser(t *testing.T) {
	svc, _ := setupDashboardService(t)
	_, err := svc.GetStats(context.Background())
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}
