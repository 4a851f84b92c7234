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

	_ "github.com/noah-isme/timetable-api/api/swagger"
	"github.com/noah-isme/timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/scheduler"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/cache"
	"github.com/noah-isme/timetable-api/pkg/config"
	"github.com/noah-isme/timetable-api/pkg/database"
	"github.com/noah-isme/timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/requestid"
)

const shutdownTimeout = 15 * time.Second

// @title Timetable API
// @version 1.0.0
// @description Generates conflict-free university timetables and audits them for double bookings.
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

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, conflict cache disabled", zap.Error(err))
	}
	cacheRepo := repository.NewCacheRepository(redisClient, "timetable", logr)
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	validate := validator.New()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Conflicts.CacheTTL, logr, cacheRepo.Enabled())

	courses := repository.NewCourseRepository(db)
	instructors := repository.NewInstructorRepository(db)
	classrooms := repository.NewClassroomRepository(db)
	constraints := repository.NewConstraintRepository(db)
	timetables := repository.NewTimetableRepository(db)
	classes := repository.NewScheduledClassRepository(db)

	engine := scheduler.NewEngine(scheduler.Options{
		Sections:            cfg.Scheduler.Sections,
		Seed:                cfg.Scheduler.Seed,
		AllowSectionOverlap: cfg.Scheduler.AllowSectionOverlap,
		Logger:              logr.Named("scheduler"),
	})

	generator := service.NewTimetableGeneratorService(
		service.CatalogReaders{
			Courses:     courses,
			Instructors: instructors,
			Classrooms:  classrooms,
			Constraints: constraints,
		},
		timetables,
		classes,
		db,
		engine,
		cacheSvc,
		metrics,
		validate,
		logr,
		service.TimetableGeneratorConfig{ProposalTTL: cfg.Scheduler.ProposalTTL},
	)
	runner := service.NewGenerationRunner(generator, validate, logr, service.GenerationRunnerConfig{
		Workers:    cfg.Scheduler.Workers,
		BufferSize: cfg.Scheduler.QueueBuffer,
		MaxRetries: cfg.Scheduler.MaxRetries,
		RunTTL:     cfg.Scheduler.RunTTL,
	})
	runner.Start(ctx)
	defer runner.Stop()

	conflicts := service.NewConflictService(timetables, classes, cacheSvc, validate, logr, service.ConflictServiceConfig{
		CacheEnabled: cfg.Conflicts.CacheEnabled,
		CacheTTL:     cfg.Conflicts.CacheTTL,
	})
	timetableSvc := service.NewTimetableService(timetables, classes, db, cacheSvc, logr)

	handlers := handler.Handlers{
		Generator: handler.NewTimetableGeneratorHandler(generator, runner),
		Timetable: handler.NewTimetableHandler(timetableSvc),
		Conflict:  handler.NewConflictHandler(conflicts),
		Health: handler.NewHealthHandler(metrics, map[string]handler.Pinger{
			"database": db,
			"cache":    handler.PingFunc(cacheRepo.Ping),
		}),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(corsmiddleware.Config{AllowedOrigins: cfg.CORS.AllowedOrigins, MaxAge: cfg.CORS.MaxAge}))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	handler.RegisterOps(r, handlers)
	handler.RegisterAPI(r.Group(cfg.APIPrefix), handlers)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
