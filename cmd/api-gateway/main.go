package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/crewlink/crewlink-api/api/swagger"
	"github.com/crewlink/crewlink-api/internal/handler"
	"github.com/crewlink/crewlink-api/internal/middleware"
	"github.com/crewlink/crewlink-api/internal/models"
	"github.com/crewlink/crewlink-api/internal/repository"
	"github.com/crewlink/crewlink-api/internal/service"
	"github.com/crewlink/crewlink-api/pkg/cache"
	"github.com/crewlink/crewlink-api/pkg/config"
	"github.com/crewlink/crewlink-api/pkg/database"
	"github.com/crewlink/crewlink-api/pkg/jobs"
	"github.com/crewlink/crewlink-api/pkg/logger"
	corsmiddleware "github.com/crewlink/crewlink-api/pkg/middleware/cors"
	reqidmiddleware "github.com/crewlink/crewlink-api/pkg/middleware/requestid"
	"github.com/crewlink/crewlink-api/pkg/storage"
)

// @title CrewLink API
// @version 1.0.0
// @description Crew directory with employment verification workflow
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// authStore joins the profile and audit repositories for the auth service.
type authStore struct {
	*repository.ProfileRepository
	*repository.AuditRepository
}

// archivePayload travels through the export archive queue.
type archivePayload struct {
	Filename string
	Data     []byte
}

// queueArchiver hands rendered exports to the background queue.
type queueArchiver struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

func (a *queueArchiver) ArchiveExport(filename string, payload []byte) {
	err := a.queue.Enqueue(jobs.Job{
		ID:      filename,
		Type:    "ledger_export_archive",
		Payload: archivePayload{Filename: filename, Data: payload},
	})
	if err != nil {
		a.logger.Warn("failed to enqueue export archive", zap.String("filename", filename), zap.Error(err))
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	// Redis is optional: without it the stats endpoint simply skips caching.
	var cacheRepo service.CacheRepository
	cacheEnabled := cfg.Stats.CacheEnabled
	if cacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, stats caching disabled", zap.Error(err))
			cacheEnabled = false
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, cacheEnabled)

	profileRepo := repository.NewProfileRepository(db)
	employmentRepo := repository.NewEmploymentRepository(db)
	contactRepo := repository.NewContactRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	validate := validator.New()

	authSvc := service.NewAuthService(authStore{profileRepo, auditRepo}, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	statsSvc := service.NewStatsService(statsRepo, cacheSvc, cfg.Stats.CacheTTL, logr)
	profileSvc := service.NewProfileService(profileRepo, auditRepo, statsSvc, logr)

	var employmentOpts []service.EmploymentOption
	if cfg.Ledger.ExportEnabled {
		archive, err := storage.NewArchive(cfg.Ledger.ExportDir)
		if err != nil {
			logr.Fatal("failed to prepare export archive", zap.Error(err))
		}
		archiveQueue := jobs.NewQueue("ledger-archive", func(ctx context.Context, job jobs.Job) error {
			payload, ok := job.Payload.(archivePayload)
			if !ok {
				return fmt.Errorf("unexpected payload type %T", job.Payload)
			}
			name, err := archive.Save(payload.Filename, payload.Data)
			if err != nil {
				return err
			}
			logr.Info("ledger export archived", zap.String("filename", name))
			return nil
		}, jobs.QueueConfig{Workers: 1, Logger: logr})
		archiveQueue.Start(context.Background())
		defer archiveQueue.Stop()

		go func() {
			ticker := time.NewTicker(12 * time.Hour)
			defer ticker.Stop()
			for range ticker.C {
				if deleted, err := archive.CleanupOlderThan(cfg.Ledger.ArchiveRetention); err != nil {
					logr.Warn("export archive cleanup failed", zap.Error(err))
				} else if len(deleted) > 0 {
					logr.Info("export archive cleaned", zap.Int("removed", len(deleted)))
				}
			}
		}()

		employmentOpts = append(employmentOpts, service.WithExportArchiver(&queueArchiver{queue: archiveQueue, logger: logr}))
	}
	employmentSvc := service.NewEmploymentService(employmentRepo, profileRepo, auditRepo, statsSvc, logr, cfg.Ledger.ListLimit, employmentOpts...)
	verificationSvc := service.NewVerificationService(employmentRepo, auditRepo, metricsSvc, statsSvc, logr)
	contactSvc := service.NewContactService(contactRepo, profileRepo, auditRepo, metricsSvc, statsSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	employmentHandler := handler.NewEmploymentHandler(employmentSvc, verificationSvc)
	contactHandler := handler.NewContactHandler(contactSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authRequired := middleware.JWT(authSvc)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/profiles", profileHandler.Register)

	profiles := api.Group("/profiles", authRequired)
	{
		profiles.GET("", profileHandler.List)
		profiles.GET("/:id", profileHandler.Get)
		profiles.PATCH("/:id/availability",
			middleware.RequireRolesOrSelf(models.RoleAdmin),
			profileHandler.SetAvailability)
	}

	records := api.Group("/employment-records", authRequired)
	{
		records.POST("",
			middleware.RequireRoles(models.RoleSeafarer, models.RoleAgent, models.RolePortOfficer, models.RoleAdmin),
			employmentHandler.Submit)
		records.GET("", employmentHandler.List)
		records.GET("/pending",
			middleware.RequireRoles(models.RoleAdmin),
			employmentHandler.ListPending)
		if cfg.Ledger.ExportEnabled {
			records.GET("/export",
				middleware.RequireRoles(models.RoleAdmin),
				employmentHandler.Export)
		}
		records.POST("/:id/decision",
			middleware.RequireRoles(models.RoleAdmin),
			employmentHandler.Decide)
	}

	contacts := api.Group("/contact-requests", authRequired)
	{
		contacts.POST("",
			middleware.RequireRoles(models.RoleAgent),
			contactHandler.Create)
		contacts.GET("", contactHandler.List)
		contacts.POST("/:id/review",
			middleware.RequireRoles(models.RoleAdmin),
			contactHandler.Review)
	}

	api.GET("/stats", authRequired,
		middleware.RequireRoles(models.RoleAdmin, models.RolePortOfficer),
		statsHandler.Get)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}
