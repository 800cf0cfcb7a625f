package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opsdesk/admin-api/docs"
	"github.com/opsdesk/admin-api/internal/auth"
	"github.com/opsdesk/admin-api/internal/config"
	"github.com/opsdesk/admin-api/internal/database"
	"github.com/opsdesk/admin-api/internal/http/handler"
	"github.com/opsdesk/admin-api/internal/http/middleware"
	"github.com/opsdesk/admin-api/internal/http/router"
	"github.com/opsdesk/admin-api/internal/jobs"
	"github.com/opsdesk/admin-api/internal/logger"
	"github.com/opsdesk/admin-api/internal/policy"
	"github.com/opsdesk/admin-api/internal/repository"
	"github.com/opsdesk/admin-api/internal/secrets"
	"github.com/opsdesk/admin-api/internal/service"
	"github.com/opsdesk/admin-api/internal/storage"
	"go.uber.org/zap"
)

// @title Opsdesk Admin API
// @version 1.0
// @description Role-gated admin API for clients, projects, tasks, invoices, content, documents and staff

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API key for system operations, acts as manager

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)
	fetcher, err := secrets.NewFetcher(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize secrets: %w", err)
	}
	secretsCtx, cancelSecrets := context.WithTimeout(context.Background(), 30*time.Second)
	err = secrets.Apply(secretsCtx, cfg, fetcher, log)
	cancelSecrets()
	if err != nil {
		return err
	}

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.App.Port)

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	fileStorage, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	engine := policy.Default()

	// Repositories
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

	// Services
	clientService := service.NewClientService(clientRepo, engine, log)
	projectService := service.NewProjectService(projectRepo, clientRepo, engine, log)
	taskService := service.NewTaskService(taskRepo, projectRepo, userRepo, engine, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, clientRepo, projectRepo, engine, log)
	invoiceItemService := service.NewInvoiceItemService(invoiceItemRepo, invoiceRepo, engine, log)
	contentService := service.NewContentService(contentRepo, fileStorage, engine, log)
	documentService := service.NewDocumentService(documentRepo, fileStorage, engine, log)
	departmentService := service.NewDepartmentService(departmentRepo, engine, log)
	employeeService := service.NewEmployeeService(employeeRepo, departmentRepo, engine, log)
	userService := service.NewUserService(userRepo, engine, log)
	dashboardService := service.NewDashboardService(
		clientRepo, projectRepo, taskRepo, invoiceRepo, employeeRepo, departmentRepo, contentRepo, engine, log,
	)

	// Background jobs
	if cfg.Jobs.Enabled {
		scheduler := jobs.NewScheduler(log, cfg.Jobs.TimeoutDuration())
		if err := scheduler.Register(cfg.Jobs.OverdueReportSchedule,
			jobs.NewOverdueReportJob(invoiceRepo, projectRepo, taskRepo, log)); err != nil {
			return fmt.Errorf("failed to schedule jobs: %w", err)
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
	}

	// Middleware
	authMiddleware := auth.NewMiddleware(&cfg.Auth, engine, log).WithResolver(userService)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(cfg, log, db, authMiddleware, rateLimiter, router.Handlers{
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

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}
		log.Info("Server stopped gracefully")
	}
	return nil
}
