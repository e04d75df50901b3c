package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/patified/patified-backend/internal/api"
	"github.com/patified/patified-backend/internal/config"
	"github.com/patified/patified-backend/internal/relay"
	"github.com/patified/patified-backend/internal/repository/postgres"
	"github.com/patified/patified-backend/internal/service"
	"github.com/patified/patified-backend/internal/storage"
	"github.com/patified/patified-backend/internal/websocket"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if cfg.Environment == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Initialize WebSocket hub
	hub := websocket.NewHub(log)
	go hub.Run()
	defer hub.Stop()

	// Event relay: redis when configured, otherwise in-process only
	bridgeCtx, cancelBridge := context.WithCancel(context.Background())
	defer cancelBridge()

	var rly relay.Relay
	if cfg.RedisAddr != "" {
		client, err := relay.NewRedisClient(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		defer client.Close()
		rly = relay.NewRedisRelay(client, log)
		go func() {
			if err := websocket.RunRedisBridge(bridgeCtx, client, hub, log); err != nil && err != context.Canceled {
				log.WithError(err).Error("redis bridge stopped")
			}
		}()
		log.WithField("addr", cfg.RedisAddr).Info("lobby events relayed through redis")
	} else {
		rly = relay.NewLocal(hub, log)
		log.Info("no redis configured, lobby events delivered in-process only")
	}

	// Proof photo storage on local disk
	photos := storage.NewDiskStore(cfg.PhotoDir)
	if !photos.Configured() {
		log.Warn("PHOTO_DIR not set, proof photo uploads disabled")
	}

	// Initialize services
	services := service.NewServices(repos, photos, rly, cfg)

	// Initialize router
	router := api.NewRouter(services, hub, cfg)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}
