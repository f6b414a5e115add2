package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace/app/echo-server/metrics"
	"marketplace/app/echo-server/router"
	"marketplace/internal/app"
	redisRepo "marketplace/internal/repository/redis"
	"marketplace/pkg/config"
	redisClient "marketplace/pkg/database/redis"
	"marketplace/pkg/logger"
	domainMetrics "marketplace/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting marketplace", "version", cfg.App.Version)

	metrics.Init()
	domainMetrics.Init()

	ctx := context.Background()

	gateway, closeGateway, err := app.NewGateway(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open snapshot storage", "error", err)
	}
	defer func() {
		if err := closeGateway(); err != nil {
			logger.Error("Failed to close snapshot storage", "error", err)
		}
	}()

	a := app.New(cfg, app.Options{Gateway: gateway})
	if err := a.Start(ctx); err != nil {
		logger.Fatal("Failed to start application", "error", err)
	}

	// Redis is optional: without it tokens are trusted until they expire.
	var sessions router.Sessions
	if cfg.Redis.Enabled() {
		client, err := redisClient.NewRedisClient(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		defer redisClient.CloseRedisClient(client)

		sessions = redisRepo.NewSessionRepository(client)
		logger.Info("Redis session store connected")
	}

	e := router.New(a, sessions, []string{"http://localhost:3000", "http://localhost:8080"})

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
