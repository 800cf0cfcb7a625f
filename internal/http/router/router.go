package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/opsdesk/admin-api/internal/auth"
	"github.com/opsdesk/admin-api/internal/config"
	"github.com/opsdesk/admin-api/internal/database"
	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/http/handler"
	"github.com/opsdesk/admin-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/opsdesk/admin-api/docs" // registers the swagger spec
)

// Handlers groups every resource handler mounted under /api/v1
type Handlers struct {
	Auth        *handler.AuthHandler
	Dashboard   *handler.DashboardHandler
	Clients     *handler.ClientHandler
	Projects    *handler.ProjectHandler
	Tasks       *handler.TaskHandler
	Invoices    *handler.InvoiceHandler
	Content     *handler.ContentHandler
	Documents   *handler.DocumentHandler
	Employees   *handler.EmployeeHandler
	Departments *handler.DepartmentHandler
	Users       *handler.UserHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	handlers       Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		handlers:       handlers,
	}
}

// anyOn gates a route group on holding at least one permission for the resource.
// Record-level checks stay in the services.
func (rt *Router) anyOn(resource domain.Resource) func(http.Handler) http.Handler {
	return rt.authMiddleware.RequireAnyPermission(
		domain.PermissionFor(domain.ActionView, resource),
		domain.PermissionFor(domain.ActionCreate, resource),
		domain.PermissionFor(domain.ActionEdit, resource),
		domain.PermissionFor(domain.ActionDelete, resource),
	)
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()
	h := rt.handlers

	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)
	if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
		r.Use(chimw.Timeout(timeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/health/db", rt.databaseHealth)

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.LimitByUser)

		r.Get("/auth/me", h.Auth.Me)
		r.With(rt.authMiddleware.RequirePermission(domain.PermViewDashboard)).
			Get("/dashboard/stats", h.Dashboard.GetStats)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.Clients.List)
			r.Post("/", h.Clients.Create)
			r.Post("/bulk-delete", h.Clients.BulkDelete)
			r.Get("/{id}", h.Clients.GetByID)
			r.Put("/{id}", h.Clients.Update)
			r.Delete("/{id}", h.Clients.Delete)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.Projects.List)
			r.Post("/", h.Projects.Create)
			r.Post("/bulk-delete", h.Projects.BulkDelete)
			r.Get("/options", h.Projects.Options)
			r.Get("/{id}", h.Projects.GetByID)
			r.Put("/{id}", h.Projects.Update)
			r.Delete("/{id}", h.Projects.Delete)
		})

		// no group gate: assignees may edit their tasks without any task permission
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.Tasks.List)
			r.Post("/", h.Tasks.Create)
			r.Post("/bulk-complete", h.Tasks.BulkComplete)
			r.Post("/bulk-delete", h.Tasks.BulkDelete)
			r.Get("/{id}", h.Tasks.GetByID)
			r.Put("/{id}", h.Tasks.Update)
			r.Delete("/{id}", h.Tasks.Delete)
			r.Post("/{id}/start", h.Tasks.Start)
			r.Post("/{id}/complete", h.Tasks.Complete)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Use(rt.anyOn(domain.ResourceInvoices))
			r.Get("/", h.Invoices.List)
			r.Post("/", h.Invoices.Create)
			r.Post("/bulk-delete", h.Invoices.BulkDelete)
			r.Get("/{id}", h.Invoices.GetByID)
			r.Put("/{id}", h.Invoices.Update)
			r.Delete("/{id}", h.Invoices.Delete)
			r.Get("/{id}/items", h.Invoices.ListItems)
			r.Post("/{id}/items", h.Invoices.CreateItem)
			r.Post("/{id}/items/bulk-delete", h.Invoices.BulkDeleteItems)
			r.Put("/{id}/items/{itemId}", h.Invoices.UpdateItem)
			r.Delete("/{id}/items/{itemId}", h.Invoices.DeleteItem)
		})

		r.Route("/content", func(r chi.Router) {
			r.Get("/", h.Content.List)
			r.Post("/", h.Content.Create)
			r.Post("/bulk-approve", h.Content.BulkApprove)
			r.Post("/bulk-delete", h.Content.BulkDelete)
			r.Get("/{id}", h.Content.GetByID)
			r.Put("/{id}", h.Content.Update)
			r.Delete("/{id}", h.Content.Delete)
			r.Post("/{id}/approve", h.Content.Approve)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", h.Documents.List)
			r.Post("/", h.Documents.Create)
			r.Post("/bulk-delete", h.Documents.BulkDelete)
			r.Get("/{id}", h.Documents.GetByID)
			r.Put("/{id}", h.Documents.Update)
			r.Delete("/{id}", h.Documents.Delete)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Use(rt.anyOn(domain.ResourceEmployees))
			r.Get("/", h.Employees.List)
			r.Post("/", h.Employees.Create)
			r.Post("/bulk-delete", h.Employees.BulkDelete)
			r.Get("/{id}", h.Employees.GetByID)
			r.Put("/{id}", h.Employees.Update)
			r.Delete("/{id}", h.Employees.Delete)
		})

		r.Route("/departments", func(r chi.Router) {
			r.Use(rt.anyOn(domain.ResourceDepartments))
			r.Get("/", h.Departments.List)
			r.Post("/", h.Departments.Create)
			r.Post("/bulk-delete", h.Departments.BulkDelete)
			r.Get("/{id}", h.Departments.GetByID)
			r.Put("/{id}", h.Departments.Update)
			r.Delete("/{id}", h.Departments.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(rt.anyOn(domain.ResourceUsers))
			r.Get("/", h.Users.List)
			r.Post("/", h.Users.Create)
			r.Get("/{id}", h.Users.GetByID)
			r.Put("/{id}", h.Users.Update)
			r.Delete("/{id}", h.Users.Delete)
		})
	})

	return r
}

// databaseHealth is the readiness probe with connection pool stats
func (rt *Router) databaseHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	stats, err := database.HealthCheckWithStats(rt.db)
	if err != nil {
		rt.logger.Error("database health check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"stats": map[string]interface{}{
			"max_open_connections": stats.MaxOpenConnections,
			"open_connections":     stats.OpenConnections,
			"in_use":               stats.InUse,
			"idle":                 stats.Idle,
			"wait_count":           stats.WaitCount,
			"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		},
	})
}
