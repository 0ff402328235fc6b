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

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"equipment-tracker-backend/config"
	"equipment-tracker-backend/internal/api"
	"equipment-tracker-backend/internal/audit"
	"equipment-tracker-backend/internal/auth"
	"equipment-tracker-backend/internal/db"
	"equipment-tracker-backend/internal/notification"
	"equipment-tracker-backend/internal/overdue"
	"equipment-tracker-backend/internal/store"
)

func newLogger() *zap.Logger {
	cfg := zap.Config{
		Encoding:         "console",
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

func main() {
	logger := newLogger()
	defer logger.Sync()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.String("path", configPath), zap.Error(err))
	}
	logger.Info("configuration loaded", zap.String("path", configPath))

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("auth.jwt_secret must be configured")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Warn("VAPID keys are not configured; push notifications are disabled")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	logger.Info("database initialized", zap.String("driver", cfg.Database.Driver))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions, logger)
	pool.Start(ctx)

	checker := overdue.NewChecker(cfg, gormDB, pool, logger)
	go checker.Run(ctx)

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	verifier := auth.NewVerifier(gormDB)
	auditRec := audit.NewRecorder(gormDB, logger)

	handler := api.NewHandler(appStore, tokens, verifier, auditRec, pool, &webpushOptions, logger)
	router := api.NewRouter(cfg, handler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("HTTP server shutdown failed", zap.Error(err))
	}

	logger.Info("server gracefully stopped")
}
