package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"outreach/internal/app"
	"outreach/internal/config"
	"outreach/internal/logger"
	"outreach/internal/metrics"
	"outreach/internal/server"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg := config.Load()

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		zlog.Fatal("failed to load YAML config", zap.Error(err))
	}

	ctx := context.Background()

	store, database, err := app.OpenStore(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to open record log", zap.Error(err))
	}
	if database != nil {
		defer database.Close()
	}

	metrics.Init(store, zlog)

	processor, err := app.NewProcessor(cfg, yamlCfg, store, zlog)
	if err != nil {
		zlog.Fatal("failed to build processor", zap.Error(err))
	}
	if err := cfg.ValidateProcessing(); err != nil {
		zlog.Warn("batch processing unavailable until configured", zap.Error(err))
	}

	srv := server.New(cfg, zlog)
	deps := server.Dependencies{
		Store:     store,
		Processor: processor,
		YAML:      yamlCfg,
	}
	if database != nil {
		deps.Database = database
	}
	if err := srv.RegisterRoutes(ctx, deps); err != nil {
		zlog.Fatal("failed to register routes", zap.Error(err))
	}

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			zlog.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	if err := srv.Shutdown(); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}
	zlog.Info("server exited")
}
