// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"countflow/internal/domain/ecart"
	"countflow/internal/domain/inventory"
	"countflow/internal/domain/tracking"
	"countflow/internal/domain/workflow"
	"countflow/internal/infrastructure/http/v1/handlers"
	"countflow/internal/infrastructure/http/v1/middleware"
	"countflow/internal/infrastructure/storage/postgres"
	"countflow/pkg/logger"
	"countflow/pkg/refnum"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks).
	Pool *postgres.Pool

	// TxManager runs repository operations in transactions.
	TxManager *postgres.TxManager

	// Refs issues human-readable entity references.
	Refs *refnum.Service

	// Logger for request logging.
	Logger *logger.Logger
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.Session())
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Repositories
	inventoryRepo := postgres.NewInventoryRepo(cfg.TxManager)
	countingRepo := postgres.NewCountingRepo(cfg.TxManager)
	countingDetailRepo := postgres.NewCountingDetailRepo(cfg.TxManager)
	jobRepo := postgres.NewJobRepo(cfg.TxManager)
	jobDetailRepo := postgres.NewJobDetailRepo(cfg.TxManager)
	assignmentRepo := postgres.NewAssignmentRepo(cfg.TxManager)
	ecartRepo := postgres.NewEcartRepo(cfg.TxManager)
	locationRepo := postgres.NewLocationRepo(cfg.TxManager)

	// Domain services
	inventoryService := inventory.NewService(inventoryRepo, countingRepo, jobRepo, cfg.Refs, cfg.TxManager)
	lifecycle := workflow.NewLifecycle(inventoryRepo, countingRepo, jobRepo, jobDetailRepo, assignmentRepo, locationRepo, cfg.Refs, cfg.TxManager)
	engine := workflow.NewEngine(jobRepo, countingRepo, assignmentRepo, cfg.Refs, cfg.TxManager)
	ready := workflow.NewReady(jobRepo, countingRepo, assignmentRepo, cfg.TxManager)
	sequencer := workflow.NewSequencer(jobRepo, jobDetailRepo, countingRepo, assignmentRepo, cfg.Refs, cfg.TxManager)
	ecartService := ecart.NewService(ecartRepo, cfg.Refs, cfg.TxManager)
	ecartTrail := ecart.NewTrail(countingDetailRepo, countingRepo)
	trackingService := tracking.NewService(jobRepo, countingRepo, assignmentRepo)

	// API v1
	api := router.Group("/api/v1")
	{
		// Inventories
		{
			h := handlers.NewInventoryHandler(inventoryService, lifecycle)
			th := handlers.NewTrackingHandler(trackingService)
			api.POST("/inventories", h.Create)
			api.GET("/inventories/:id", h.Get)
			api.POST("/inventories/:id/validate-launch", h.ValidateLaunch)
			api.POST("/inventories/:id/launch", h.Launch)
			api.POST("/inventories/:id/complete", h.Complete)
			api.GET("/inventories/:id/progress", th.JobProgress)
		}

		// Jobs
		{
			h := handlers.NewJobHandler(lifecycle, ready)
			api.POST("/jobs", h.Create)
			api.POST("/jobs/ready", h.MarkReady)
		}

		// Assignments
		{
			h := handlers.NewAssignmentHandler(engine)
			api.POST("/assignments", h.Assign)
		}

		// Countings
		{
			h := handlers.NewCountingHandler(sequencer)
			api.POST("/countings/launch-next", h.LaunchNext)
		}

		// Ecarts
		{
			h := handlers.NewEcartHandler(ecartService, ecartTrail)
			api.POST("/ecarts", h.Open)
			api.GET("/ecarts/:id", h.Get)
			api.PUT("/ecarts/:id/final-result", h.UpdateFinalResult)
			api.POST("/ecarts/:id/resolve", h.Resolve)
			api.DELETE("/ecarts/:id", h.Cancel)
		}
	}

	return router
}
