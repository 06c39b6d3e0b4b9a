package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sjperalta/devagency-api/docs" // Swagger docs
	"github.com/sjperalta/devagency-api/internal/config"
	"github.com/sjperalta/devagency-api/internal/database"
	"github.com/sjperalta/devagency-api/internal/handlers"
	"github.com/sjperalta/devagency-api/internal/jobs"
	"github.com/sjperalta/devagency-api/internal/middleware"
	"github.com/sjperalta/devagency-api/internal/models"
	"github.com/sjperalta/devagency-api/internal/repository"
	"github.com/sjperalta/devagency-api/internal/services"
	"github.com/sjperalta/devagency-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title DevAgency API
// @version 1.0
// @description REST API for tracking agency projects, client milestones, developer payouts and profit

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment, cfg.LogLevel)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL, cfg.IsProduction())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Error("Migration failed", "error", err)
			os.Exit(1)
		}
		logger.Info("Database schema migrated")
	}

	repos := repository.NewRepositories(db)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, worker, cfg)

	scheduleJobs(svcs)

	h := handlers.NewHandlers(svcs)
	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		// Public
		v1.GET("/health", h.Health.Index)
		v1.POST("/auth/login", h.Auth.Login)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		protected.Use(middleware.RequireRole(models.RoleAdmin, models.RoleManager))
		{
			protected.GET("/auth/me", h.Auth.Me)

			// Clients
			protected.GET("/clients", h.Client.Index)
			protected.POST("/clients", h.Client.Create)
			protected.GET("/clients/:client_id", h.Client.Show)
			protected.PUT("/clients/:client_id", h.Client.Update)

			// Developers
			protected.GET("/developers", h.Developer.Index)
			protected.POST("/developers", h.Developer.Create)
			protected.GET("/developers/:developer_id", h.Developer.Show)
			protected.PUT("/developers/:developer_id", h.Developer.Update)

			// Projects
			protected.GET("/projects", h.Project.Index)
			protected.POST("/projects", h.Project.Create)
			protected.GET("/projects/:project_id", h.Project.Show)
			protected.PUT("/projects/:project_id", h.Project.Update)
			protected.GET("/projects/:project_id/financials", h.Project.Financials)
			protected.GET("/projects/:project_id/status_events", h.Project.StatusEvents)
			protected.GET("/projects/:project_id/invoice", h.Project.Invoice)
			protected.PATCH("/projects/:project_id/developers/:assignment_id", h.Project.UpdateDeveloperPayout)

			// Milestones
			protected.PATCH("/payments/:payment_id", h.Payment.Update)

			// Reports
			reports := protected.Group("/reports")
			{
				reports.GET("/projects", h.Report.Projects)
				reports.GET("/dashboard", h.Report.Dashboard)
				reports.GET("/projects_csv", h.Report.ProjectsCSV)
				reports.GET("/projects_xlsx", h.Report.ProjectsXLSX)
			}

			// Static route first so "mark_all_as_read" is not matched as :notification_id
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.POST("/mark_all_as_read", h.Notification.MarkAllAsRead)
				notifications.POST("/:notification_id/mark_as_read", h.Notification.MarkAsRead)
			}

			protected.GET("/jobs/status", h.Job.Status)
			protected.GET("/audits", h.Audit.Index)

			// Admin only
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/users", h.User.Create)
				admin.DELETE("/clients/:client_id", h.Client.Delete)
				admin.DELETE("/developers/:developer_id", h.Developer.Delete)
				admin.DELETE("/projects/:project_id", h.Project.Delete)
			}
		}
	}

	return router
}

func scheduleJobs(svcs *services.Services) {
	svcs.Job.ScheduleRecurring()
	logger.Info("Scheduled recurring jobs")
}
