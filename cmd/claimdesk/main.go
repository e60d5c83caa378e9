package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clearhaven/claimdesk/internal/config"
	v1 "github.com/clearhaven/claimdesk/internal/handler/v1"
	"github.com/clearhaven/claimdesk/internal/repository"
	"github.com/clearhaven/claimdesk/internal/service"
	"github.com/clearhaven/claimdesk/pkg/auth"
	"github.com/clearhaven/claimdesk/pkg/database"
	"github.com/clearhaven/claimdesk/pkg/logger"
	"github.com/clearhaven/claimdesk/pkg/metrics"
	"github.com/clearhaven/claimdesk/pkg/tracer"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// reportPoolStats keeps the connection-pool gauge current.
func reportPoolStats(db *gorm.DB, collector *metrics.Collector) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		sqlDB, err := db.DB()
		if err != nil {
			continue
		}
		collector.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting claimdesk api",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		log.Fatal("failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	collector := metrics.NewCollector("claimdesk")
	jwtManager := auth.NewJWTManager(cfg.JWT)

	go reportPoolStats(db, collector)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	claimRepo := repository.NewClaimRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	annotationRepo := repository.NewAnnotationRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	importTx := repository.NewImportTx(db)

	// Services
	auditSvc := service.NewAuditService(auditRepo, collector, log)
	authSvc := service.NewAuthService(userRepo, jwtManager, auditSvc, log)
	claimSvc := service.NewClaimService(claimRepo, annotationRepo, log)
	annotationSvc := service.NewAnnotationService(annotationRepo, claimRepo, auditSvc, collector, log)
	dashboardSvc := service.NewDashboardService(statsRepo, annotationRepo, log)
	importSvc := service.NewImportService(importTx, uploadRepo, auditSvc, collector, log)

	router := v1.NewRouter(v1.RouterDeps{
		Config:            cfg,
		Logger:            log,
		DB:                db,
		JWTManager:        jwtManager,
		Metrics:           collector,
		AuthService:       authSvc,
		ClaimService:      claimSvc,
		AnnotationService: annotationSvc,
		DashboardService:  dashboardSvc,
		ImportService:     importSvc,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("http server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}

	// Flush buffered audit entries before closing the database
	auditSvc.Shutdown()

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Warn("closing database failed", zap.Error(err))
		}
	}

	log.Info("shutdown complete")
}
