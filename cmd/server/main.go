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
	"github.com/joho/godotenv"

	"quill/internal/config"
	"quill/internal/db"
	"quill/internal/logging"
	"quill/internal/router"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, reading configuration from the environment")
	}

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)
	slog.SetDefault(logger)

	if cfg.Auth.JWTSecret == "" && !cfg.IsProduction() {
		logger.Warn("JWT_SECRET not set, using the development secret")
		cfg.Auth.JWTSecret = "secret_key_change_me"
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	gdb, err := db.Open(cfg.Database)
	if err != nil {
		logger.Error("database unavailable", "err", err)
		os.Exit(1)
	}
	if cfg.SeedEnabled() {
		if err := db.Seed(context.Background(), gdb); err != nil {
			logger.Error("seeding failed", "err", err)
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.New(&cfg, gdb, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Quill server starting", "port", cfg.Server.Port, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "err", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
