package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opsdesk/admin-api/internal/auth"
	"github.com/opsdesk/admin-api/internal/config"
	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/http/handler"
	"github.com/opsdesk/admin-api/internal/http/middleware"
	"github.com/opsdesk/admin-api/internal/http/router"
	"github.com/opsdesk/admin-api/internal/policy"
	"github.com/opsdesk/admin-api/internal/repository"
	"github.com/opsdesk/admin-api/internal/service"
	"github.com/opsdesk/admin-api/internal/storage"
	"github.com/opsdesk/admin-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServer struct {
	handler http.Handler
	db      *gorm.DB
	jwt     *auth.JWTValidator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

	cfg := &config.Config{
		App:  config.AppConfig{Name: "test", Environment: "test"},
		Auth: config.AuthConfig{JWTSecret: "router-secret", Issuer: "opsdesk", TokenTTL: 60, APIKey: "service-key"},
		Security: config.SecurityConfig{
			ContentTypeNosniff: true,
			FrameOptions:       "DENY",
		},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}

	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	engine := policy.Default()

	clientRepo := repository.NewClientRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	invoiceItemRepo := repository.NewInvoiceItemRepository(db)
	contentRepo := repository.NewContentRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	userRepo := repository.NewUserRepository(db)

	clientService := service.NewClientService(clientRepo, engine, log)
	projectService := service.NewProjectService(projectRepo, clientRepo, engine, log)
	taskService := service.NewTaskService(taskRepo, projectRepo, userRepo, engine, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, clientRepo, projectRepo, engine, log)
	invoiceItemService := service.NewInvoiceItemService(invoiceItemRepo, invoiceRepo, engine, log)
	contentService := service.NewContentService(contentRepo, files, engine, log)
	documentService := service.NewDocumentService(documentRepo, files, engine, log)
	departmentService := service.NewDepartmentService(departmentRepo, engine, log)
	employeeService := service.NewEmployeeService(employeeRepo, departmentRepo, engine, log)
	userService := service.NewUserService(userRepo, engine, log)
	dashboardService := service.NewDashboardService(
		clientRepo, projectRepo, taskRepo, invoiceRepo, employeeRepo, departmentRepo, contentRepo, engine, log,
	)

	authMiddleware := auth.NewMiddleware(&cfg.Auth, engine, log).WithResolver(userService)
	rt := router.NewRouter(cfg, log, db, authMiddleware, middleware.NewRateLimiter(&cfg.RateLimit, log), router.Handlers{
		Auth:        handler.NewAuthHandler(userService, log),
		Dashboard:   handler.NewDashboardHandler(dashboardService, log),
		Clients:     handler.NewClientHandler(clientService, log),
		Projects:    handler.NewProjectHandler(projectService, log),
		Tasks:       handler.NewTaskHandler(taskService, log),
		Invoices:    handler.NewInvoiceHandler(invoiceService, invoiceItemService, log),
		Content:     handler.NewContentHandler(contentService, log),
		Documents:   handler.NewDocumentHandler(documentService, log),
		Employees:   handler.NewEmployeeHandler(employeeService, log),
		Departments: handler.NewDepartmentHandler(departmentService, log),
		Users:       handler.NewUserHandler(userService, log),
	})

	return &testServer{handler: rt.Setup(), db: db, jwt: auth.NewJWTValidator(&cfg.Auth)}
}

func (s *testServer) token(t *testing.T, user *domain.User) string {
	t.Helper()
	token, err := s.jwt.IssueToken(&auth.UserContext{UserID: user.ID, DisplayName: user.Name, Role: user.Role})
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, user *domain.User, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(t, user))
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, nil, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	rec = s.do(t, nil, http.MethodGet, "/health/db", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "healthy", body["status"])
}

func TestAuthenticationAndGates(t *testing.T) {
	s := newTestServer(t)
	designer := testutil.CreateTestUser(t, s.db, domain.RoleDesigner)
	hr := testutil.CreateTestUser(t, s.db, domain.RoleHR)

	t.Run("missing credentials", func(t *testing.T) {
		rec := s.do(t, nil, http.MethodGet, "/api/v1/clients", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("api key acts as manager", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
		req.Header.Set("X-API-Key", "service-key")
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("route gate rejects designer on invoices", func(t *testing.T) {
		rec := s.do(t, designer, http.MethodGet, "/api/v1/invoices", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("service denies hr on clients", func(t *testing.T) {
		rec := s.do(t, hr, http.MethodGet, "/api/v1/clients", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, domain.ErrorTypeForbidden, decode[domain.APIError](t, rec).Type)
	})

	t.Run("deactivated account is rejected", func(t *testing.T) {
		inactive := testutil.CreateTestUser(t, s.db, domain.RoleManager)
		require.NoError(t, s.db.Model(inactive).Update("is_active", false).Error)
		rec := s.do(t, inactive, http.MethodGet, "/api/v1/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("me lists the role permissions", func(t *testing.T) {
		rec := s.do(t, designer, http.MethodGet, "/api/v1/auth/me", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		me := decode[domain.MeDTO](t, rec)
		assert.Equal(t, designer.ID, me.UserID)
		assert.Equal(t, domain.RoleDesigner, me.Role)
		assert.Contains(t, me.Permissions, domain.PermEditTasks)
		assert.NotContains(t, me.Permissions, domain.PermViewInvoices)
	})
}

func TestClientEndpoints(t *testing.T) {
	s := newTestServer(t)
	manager := testutil.CreateTestUser(t, s.db, domain.RoleManager)

	t.Run("validation error names the field", func(t *testing.T) {
		rec := s.do(t, manager, http.MethodPost, "/api/v1/clients", map[string]any{"email": "not-an-email"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		apiErr := decode[domain.APIError](t, rec)
		assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
		assert.Equal(t, "name is required", apiErr.Errors["name"])
		assert.Equal(t, "Must be a valid email address", apiErr.Errors["email"])
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", bytes.NewBufferString("{"))
		req.Header.Set("Authorization", "Bearer "+s.token(t, manager))
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create then fetch", func(t *testing.T) {
		rec := s.do(t, manager, http.MethodPost, "/api/v1/clients", map[string]any{"name": "Acme"})
		require.Equal(t, http.StatusCreated, rec.Code)
		created := decode[domain.ClientDTO](t, rec)
		assert.Equal(t, domain.ClientStatusActive, created.Status)

		rec = s.do(t, manager, http.MethodGet, fmt.Sprintf("/api/v1/clients/%d", created.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Acme", decode[domain.ClientDTO](t, rec).Name)

		rec = s.do(t, manager, http.MethodGet, "/api/v1/clients?search=acm", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 1, decode[domain.PaginatedResponse](t, rec).Total)
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := s.do(t, manager, http.MethodGet, "/api/v1/clients/9999", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := s.do(t, manager, http.MethodGet, "/api/v1/clients/abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTaskWorkflow(t *testing.T) {
	s := newTestServer(t)
	manager := testutil.CreateTestUser(t, s.db, domain.RoleManager)
	designer := testutil.CreateTestUser(t, s.db, domain.RoleDesigner)
	writer := testutil.CreateTestUser(t, s.db, domain.RoleContentWriter)

	rec := s.do(t, manager, http.MethodPost, "/api/v1/tasks", map[string]any{
		"title":      "Homepage hero",
		"assignedTo": designer.ID,
		"type":       "design",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decode[domain.TaskDTO](t, rec)
	assert.Equal(t, domain.TaskStatusTodo, task.Status)

	path := fmt.Sprintf("/api/v1/tasks/%d", task.ID)

	t.Run("non-assignee cannot start", func(t *testing.T) {
		rec := s.do(t, writer, http.MethodPost, path+"/start", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("assignee completes before start is rejected", func(t *testing.T) {
		rec := s.do(t, designer, http.MethodPost, path+"/complete", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("assignee starts and completes", func(t *testing.T) {
		rec := s.do(t, designer, http.MethodPost, path+"/start", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		started := decode[domain.TaskDTO](t, rec)
		assert.Equal(t, domain.TaskStatusInProgress, started.Status)
		assert.NotNil(t, started.StartTime)

		rec = s.do(t, designer, http.MethodPost, path+"/complete", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.TaskStatusCompleted, decode[domain.TaskDTO](t, rec).Status)
	})

	t.Run("designer cannot delete", func(t *testing.T) {
		rec := s.do(t, designer, http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("mine filter", func(t *testing.T) {
		rec := s.do(t, designer, http.MethodGet, "/api/v1/tasks?mine=true", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 1, decode[domain.PaginatedResponse](t, rec).Total)

		rec = s.do(t, manager, http.MethodGet, "/api/v1/tasks?mine=true", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 0, decode[domain.PaginatedResponse](t, rec).Total)
	})

	t.Run("unknown due window", func(t *testing.T) {
		rec := s.do(t, designer, http.MethodGet, "/api/v1/tasks?due=month", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bulk complete reports skipped records", func(t *testing.T) {
		open := testutil.CreateTestTask(t, s.db, designer, domain.TaskStatusReview)
		rec := s.do(t, manager, http.MethodPost, "/api/v1/tasks/bulk-complete", map[string]any{
			"ids": []uint{open.ID, task.ID, 9999},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		result := decode[domain.BatchResult](t, rec)
		assert.Equal(t, []uint{open.ID}, result.Processed)
		assert.Len(t, result.Skipped, 2)
		assert.Empty(t, result.Failed)
	})

	t.Run("bulk complete needs ids", func(t *testing.T) {
		rec := s.do(t, manager, http.MethodPost, "/api/v1/tasks/bulk-complete", map[string]any{"ids": []uint{}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestInvoiceEndpoints(t *testing.T) {
	s := newTestServer(t)
	manager := testutil.CreateTestUser(t, s.db, domain.RoleManager)
	client := testutil.CreateTestClient(t, s.db, "Invoiced Co")

	rec := s.do(t, manager, http.MethodPost, "/api/v1/invoices", map[string]any{
		"clientId":  client.ID,
		"issueDate": "2026-01-01",
		"dueDate":   "2026-01-31",
		"subtotal":  400,
		"taxRate":   10,
		"items": []map[string]any{
			{"description": "Design", "quantity": 2, "rate": 150},
			{"description": "Copy", "quantity": 1, "rate": 100},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	invoice := decode[domain.InvoiceDTO](t, rec)
	assert.True(t, decimal.NewFromInt(40).Equal(invoice.TaxAmount))
	assert.True(t, decimal.NewFromInt(440).Equal(invoice.TotalAmount))
	assert.True(t, decimal.NewFromInt(440).Equal(invoice.Balance))

	id := invoice.ID
	rec = s.do(t, manager, http.MethodGet, fmt.Sprintf("/api/v1/invoices/%d/items", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]domain.InvoiceItemDTO](t, rec)
	require.Len(t, items, 2)
	assert.True(t, decimal.NewFromInt(300).Equal(items[0].Amount))

	rec = s.do(t, manager, http.MethodPost, fmt.Sprintf("/api/v1/invoices/%d/items/bulk-delete", id),
		map[string]any{"ids": []uint{items[1].ID, 4242}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	itemResult := decode[domain.BatchResult](t, rec)
	assert.Equal(t, []uint{items[1].ID}, itemResult.Processed)
	assert.Equal(t, []domain.BatchItemResult{{ID: 4242, Reason: "not found"}}, itemResult.Skipped)

	rec = s.do(t, manager, http.MethodPost, "/api/v1/invoices/bulk-delete", map[string]any{"ids": []uint{id, 4242}})
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode[domain.BatchResult](t, rec)
	assert.Equal(t, []uint{id}, result.Processed)
	assert.Len(t, result.Skipped, 1)
}

func TestBulkDeleteEndpoints(t *testing.T) {
	s := newTestServer(t)
	manager := testutil.CreateTestUser(t, s.db, domain.RoleManager)
	hr := testutil.CreateTestUser(t, s.db, domain.RoleHR)
	writer := testutil.CreateTestUser(t, s.db, domain.RoleContentWriter)

	a := testutil.CreateTestClient(t, s.db, "Bulk A")
	b := testutil.CreateTestClient(t, s.db, "Bulk B")

	rec := s.do(t, writer, http.MethodPost, "/api/v1/clients/bulk-delete", map[string]any{"ids": []uint{a.ID}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, manager, http.MethodPost, "/api/v1/clients/bulk-delete", map[string]any{"ids": []uint{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, manager, http.MethodPost, "/api/v1/clients/bulk-delete", map[string]any{"ids": []uint{a.ID, b.ID}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []uint{a.ID, b.ID}, decode[domain.BatchResult](t, rec).Processed)

	staffed := testutil.CreateTestDepartment(t, s.db, "Staffed")
	empty := testutil.CreateTestDepartment(t, s.db, "Empty")
	testutil.CreateTestEmployee(t, s.db, staffed, testutil.Date(2024, 2, 1))

	rec = s.do(t, hr, http.MethodPost, "/api/v1/departments/bulk-delete", map[string]any{"ids": []uint{staffed.ID, empty.ID}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[domain.BatchResult](t, rec)
	assert.Equal(t, []uint{empty.ID}, result.Processed)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, staffed.ID, result.Skipped[0].ID)
}
