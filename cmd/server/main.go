package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/squad-dashboard/internal/api"
	"github.com/dom/squad-dashboard/internal/config"
	"github.com/dom/squad-dashboard/internal/logger"
	"github.com/dom/squad-dashboard/internal/repository/postgres"
	"github.com/dom/squad-dashboard/internal/service"
	"github.com/dom/squad-dashboard/internal/websocket"
	gormLogger "gorm.io/gorm/logger"
)

func main() {
	log := logger.New(os.Getenv("LOG_LEVEL"))

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log = logger.New(cfg.LogLevel)

	// Initialize database
	dbLogLevel := gormLogger.Warn
	if cfg.IsDevelopment() {
		dbLogLevel = gormLogger.Info
	}
	db, err := postgres.NewConnection(cfg.DatabaseURL, dbLogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Finalization lock: redis when shared across instances, in-process otherwise
	var locker service.GameLocker = service.NewMemoryLocker()
	if cfg.RedisAddr != "" {
		rdb, err := service.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		locker = service.NewRedisLocker(rdb, cfg.FinalizationLockTTL, log)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis finalization lock")
	}

	// Initialize WebSocket hub and services
	hub := websocket.NewHub(log)
	services := service.NewServices(repos, cfg, locker, hub, log)
	hub.SetStatusSource(services.Finalization)
	go hub.Run()

	// Initialize router
	router := api.NewRouter(services, hub, cfg, log)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("server stopped")
}
