package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-planner-api/api/swagger"
	"github.com/noah-isme/course-planner-api/internal/catalog"
	"github.com/noah-isme/course-planner-api/internal/handler"
	internalmiddleware "github.com/noah-isme/course-planner-api/internal/middleware"
	"github.com/noah-isme/course-planner-api/internal/repository"
	"github.com/noah-isme/course-planner-api/internal/service"
	"github.com/noah-isme/course-planner-api/pkg/cache"
	"github.com/noah-isme/course-planner-api/pkg/config"
	"github.com/noah-isme/course-planner-api/pkg/database"
	"github.com/noah-isme/course-planner-api/pkg/export"
	"github.com/noah-isme/course-planner-api/pkg/jobs"
	"github.com/noah-isme/course-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-planner-api/pkg/middleware/requestid"
	"github.com/noah-isme/course-planner-api/pkg/storage"
)

// @title Course Planner API
// @version 1.0.0
// @description Build conflict-free weekly class schedules from the UMD catalog.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey SessionToken
// @in header
// @name X-Session-Token

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	validate := validator.New()
	checks := map[string]handler.ReadinessCheck{}

	store, closeStore := openStore(ctx, cfg, logr, checks)
	defer closeStore()

	cacheSvc := service.NewCacheService(store, metrics, cfg.Catalog.CacheTTL, logr, cfg.Catalog.CacheEnabled)
	client := catalog.NewClient(catalog.Config{
		PlanetTerpBaseURL: cfg.Catalog.PlanetTerpBaseURL,
		UMDIOBaseURL:      cfg.Catalog.UMDIOBaseURL,
		Timeout:           cfg.Catalog.Timeout,
		CacheTTL:          cfg.Catalog.CacheTTL,
		Cache:             cacheSvc,
		Observer:          metrics,
		Logger:            logr,
	})
	catalogSvc := service.NewCatalogService(catalog.NewGateway(client, logr), metrics, logr)
	catalogSvc.StartPrefetch(ctx, jobs.QueueConfig{
		Workers:    cfg.Catalog.PrefetchWorkers,
		BufferSize: 64,
		MaxRetries: cfg.Catalog.PrefetchRetries,
		RetryDelay: time.Second,
	})
	defer catalogSvc.StopPrefetch()

	exportSvc := service.NewExportService(service.ExportConfig{Term: exportTerm(cfg.Export, logr)}, logr)
	sessionSvc := service.NewSessionService(service.SessionConfig{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
		Issuer: cfg.Session.Issuer,
	}, logr)
	sessionRepo := repository.NewSessionRepository(store, cfg.Session.TTL)
	plannerSvc := service.NewPlannerService(sessionRepo, catalogSvc, exportSvc, metrics, validate, logr)
	linkSvc := openExportLinks(cfg, plannerSvc, logr)

	maintenance := service.NewMaintenanceScheduler(5*time.Minute, logr)
	if cfg.Catalog.CacheEnabled && cfg.Catalog.RefreshCron != "" {
		addJob(maintenance, service.MaintenanceJob{Name: "catalog-refresh", Spec: cfg.Catalog.RefreshCron, Run: cacheSvc.FlushCatalog}, logr)
	}
	if linkSvc != nil && cfg.Export.CleanupCron != "" {
		addJob(maintenance, service.MaintenanceJob{Name: "export-cleanup", Spec: cfg.Export.CleanupCron, Run: linkSvc.Cleanup}, logr)
	}
	maintenance.Start()
	defer maintenance.Stop()

	db := openDatabase(ctx, cfg, logr, metrics, checks)
	if db != nil {
		defer db.Close()
	}
	savedSvc := service.NewSavedScheduleService(nil, plannerSvc, false, validate, logr)
	if db != nil {
		savedSvc = service.NewSavedScheduleService(repository.NewSavedScheduleRepository(db, metrics), plannerSvc, true, validate, logr)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/metrics"))
	r.Use(internalmiddleware.Metrics(metrics, "/health", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	routes := handler.Routes{
		Sessions: handler.NewSessionHandler(sessionSvc),
		Schedule: handler.NewScheduleHandler(plannerSvc),
		Catalog:  handler.NewCatalogHandler(catalogSvc),
		Metrics:  handler.NewMetricsHandler(metrics, checks),
	}
	if savedSvc.Enabled() {
		routes.SavedSchedules = handler.NewSavedScheduleHandler(savedSvc)
	}
	if linkSvc != nil {
		routes.ExportLinks = handler.NewExportLinkHandler(linkSvc)
	}
	routes.Register(r, cfg.APIPrefix, internalmiddleware.Session(sessionSvc))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "saved_schedules", savedSvc.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// sessionStore is what the session repository and catalog cache need from
// the key/value backend.
type sessionStore interface {
	service.CacheRepository
	Delete(ctx context.Context, key string) error
}

// openStore connects to Redis and falls back to process memory when Redis is
// unreachable.
func openStore(ctx context.Context, cfg *config.Config, logr *zap.Logger, checks map[string]handler.ReadinessCheck) (sessionStore, func()) {
	client, err := cache.NewRedis(ctx, cfg.Redis, 3*time.Second)
	if err != nil {
		logr.Warn("redis unavailable, using in-memory store", zap.String("addr", cache.Addr(cfg.Redis)), zap.Error(err))
		return repository.NewMemoryCacheRepository(), func() {}
	}
	repo := repository.NewCacheRepository(client, logr)
	checks["redis"] = repo.Ping
	return repo, func() {
		if err := repo.Close(); err != nil {
			logr.Warn("redis close failed", zap.Error(err))
		}
	}
}

// openDatabase connects to Postgres and applies migrations when saved
// schedules are enabled. It returns nil when the feature is off or the
// database cannot be reached.
func openDatabase(ctx context.Context, cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, checks map[string]handler.ReadinessCheck) *sqlx.DB {
	if !cfg.Saved.Enabled {
		return nil
	}
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Warn("postgres unavailable, saved schedules disabled", zap.Error(err))
		return nil
	}
	start := time.Now()
	_, err = database.Migrate(db, logr)
	metrics.ObserveDBQuery("migrate", time.Since(start))
	if err != nil {
		logr.Error("migrations failed, saved schedules disabled", zap.Error(err))
		_ = db.Close()
		return nil
	}
	checks["postgres"] = db.PingContext
	return db
}

// openExportLinks prepares on-disk export storage. It returns nil when the
// directory cannot be created, which disables download links.
func openExportLinks(cfg *config.Config, planner *service.PlannerService, logr *zap.Logger) *service.ExportLinkService {
	store, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		logr.Warn("export storage unavailable, download links disabled", zap.String("dir", cfg.Export.Dir), zap.Error(err))
		return nil
	}
	signer := storage.NewSigner(cfg.Session.Secret, cfg.Export.LinkTTL)
	baseURL := "/" + strings.Trim(cfg.APIPrefix, "/") + "/exports"
	return service.NewExportLinkService(planner, store, signer, baseURL, logr)
}

func addJob(s *service.MaintenanceScheduler, job service.MaintenanceJob, logr *zap.Logger) {
	if err := s.Add(job); err != nil {
		logr.Warn("maintenance job disabled", zap.String("job", job.Name), zap.Error(err))
	}
}

func exportTerm(cfg config.ExportConfig, logr *zap.Logger) export.Term {
	term, err := export.NewTerm(cfg.TermStart, cfg.TermWeeks, cfg.Timezone)
	if err != nil {
		logr.Warn("unknown export timezone, using UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		term, _ = export.NewTerm(cfg.TermStart, cfg.TermWeeks, "UTC")
	}
	return term
}
