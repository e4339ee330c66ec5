package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/dept-timetable-api/api/swagger"
	"github.com/noah-isme/dept-timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/dept-timetable-api/internal/middleware"
	"github.com/noah-isme/dept-timetable-api/internal/repository"
	"github.com/noah-isme/dept-timetable-api/internal/service"
	"github.com/noah-isme/dept-timetable-api/pkg/cache"
	"github.com/noah-isme/dept-timetable-api/pkg/config"
	"github.com/noah-isme/dept-timetable-api/pkg/database"
	"github.com/noah-isme/dept-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/dept-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/dept-timetable-api/pkg/middleware/requestid"
)

// @title Department Timetable API
// @version 1.0.0
// @description Session materialization, automatic placement and manual placement for a departmental timetable.
// @BasePath /api/v1
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to apply schema", zap.Error(err))
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, pass guard is process-local", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	subjectRepo := repository.NewSubjectRepository(db)
	yearGroupRepo := repository.NewYearGroupRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	constraintRepo := repository.NewDepartmentConstraintRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	validate := validator.New()
	guard := service.NewPassGuard(cache.NewLease(redisClient, cfg.Scheduler.LockKey, cfg.Scheduler.LockTTL), metricsSvc, logr)
	loader := service.NewSnapshotLoader(subjectRepo, yearGroupRepo, roomRepo, instructorRepo, constraintRepo, settingsRepo, validate, logr)
	materializer := service.NewSessionMaterializer(subjectRepo, roomRepo, sessionRepo, db, guard, metricsSvc, logr)
	autoAssign := service.NewAutoAssignService(loader, sessionRepo, guard, metricsSvc, logr)
	placement := service.NewPlacementService(loader, sessionRepo, guard, validate, logr)

	var jobQueue handler.AutoAssignJobQueue
	if cfg.Scheduler.EnableAsync {
		jobs := service.NewAutoAssignJobs(autoAssign, service.AutoAssignJobsConfig{
			JobTTL:     cfg.Scheduler.JobTTL,
			BufferSize: cfg.Scheduler.JobBuffer,
			MaxRetries: cfg.Scheduler.JobRetries,
		}, logr)
		jobs.Start(ctx)
		defer jobs.Stop()
		jobQueue = jobs
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	timetableHandler := handler.NewTimetableHandler(materializer, autoAssign, jobQueue, placement)

	api := r.Group(cfg.APIPrefix)
	sessions := api.Group("/sessions")
	sessions.POST("/materialize", timetableHandler.Materialize)
	sessions.POST("/auto-assign", timetableHandler.AutoAssign)
	sessions.POST("/auto-assign/jobs", timetableHandler.SubmitAutoAssignJob)
	sessions.GET("/auto-assign/jobs/:id", timetableHandler.GetAutoAssignJob)
	sessions.DELETE("/placements", timetableHandler.ResetPlacements)
	sessions.POST("/:id/placement/check", timetableHandler.CheckPlacement)
	sessions.PUT("/:id/placement", timetableHandler.Place)
	sessions.DELETE("/:id/placement", timetableHandler.Unplace)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
