package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/BruksfildServices01/consultorio-api/internal/audit"
	"github.com/BruksfildServices01/consultorio-api/internal/auth"
	"github.com/BruksfildServices01/consultorio-api/internal/config"
	dbpkg "github.com/BruksfildServices01/consultorio-api/internal/db"
	"github.com/BruksfildServices01/consultorio-api/internal/export"
	"github.com/BruksfildServices01/consultorio-api/internal/infra/ratelimit"
	"github.com/BruksfildServices01/consultorio-api/internal/logging"
	"github.com/BruksfildServices01/consultorio-api/internal/metrics"
	"github.com/BruksfildServices01/consultorio-api/internal/notify"
	"github.com/BruksfildServices01/consultorio-api/internal/routes"
	"github.com/BruksfildServices01/consultorio-api/internal/timezone"
)

func main() {

	if err := godotenv.Load(); err != nil {
		slog.Warn(".env not found, using process environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger.Logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ======================================================
	// DATABASE
	// ======================================================
	db, err := dbpkg.NewDB(ctx, cfg, logger)
	if err != nil {
		logger.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	if err := dbpkg.EnsureAdmin(ctx, db, cfg.AdminUsername, cfg.AdminPassword, logger); err != nil {
		logger.Error("admin seed failed", "error", err)
		os.Exit(1)
	}

	// ======================================================
	// METRICS
	// ======================================================
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	clinicMetrics := metrics.NewClinicMetrics(registry)

	// ======================================================
	// ASYNC WORKERS
	// ======================================================
	auditDispatcher := audit.NewDispatcher(audit.New(db), logger, 256)

	var sender notify.EmailSender = notify.NewStubEmailSender(logger)
	if cfg.SMTPEnabled() {
		sender = notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
			FromName: cfg.ClinicName,
		})
	}
	notifier := notify.NewDispatcher(sender, logger, cfg.NotifyQueueSize)

	// ======================================================
	// PUBLIC RATE LIMIT
	// ======================================================
	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter(cfg.PublicRateLimit, cfg.PublicRateBurst)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer client.Close()

		perMinute := int(cfg.PublicRateLimit*60) + cfg.PublicRateBurst
		limiter = ratelimit.NewRedisLimiter(client, "consultorio:public", perMinute, time.Minute)
		logger.Info("public rate limit backed by redis", "addr", cfg.RedisAddr)
	}

	// ======================================================
	// BACKUPS
	// ======================================================
	var backup *export.Backup
	if cfg.BackupEnabled() {
		backup = export.NewBackup(db, export.NewS3Client(cfg), cfg.BackupBucket, logger)
	}

	// ======================================================
	// HTTP
	// ======================================================
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		DB:       db,
		Config:   cfg,
		Logger:   logger,
		Location: timezone.Location(cfg.ClinicTimezone),
		Issuer:   auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Audit:    auditDispatcher,
		Notifier: notifier,
		Metrics:  clinicMetrics,
		Gatherer: registry,
		Limiter:  limiter,
		Backup:   backup,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server running", "addr", cfg.Addr(), "timezone", cfg.ClinicTimezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	notifier.Close()
	auditDispatcher.Close()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
