package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pageza/recipify/backend/config"
	"github.com/pageza/recipify/backend/internal/database"
	"github.com/pageza/recipify/backend/internal/logging"
	"github.com/pageza/recipify/backend/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.New("info").WithError(err).Fatal("Failed to load configuration")
	}

	log := logging.New(cfg.LogLevel)
	log.WithField("environment", config.GetEnvironment()).Info("Starting recipify API")

	db, err := database.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}

	if err := database.RunMigrations(db, cfg.MigrationsDir, log); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	redisClient, err := database.NewRedisClient(cfg, log)
	if err != nil {
		// the cache and the rate limit are optional
		log.WithError(err).Warn("Redis unavailable; running without cache and rate limiting")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg, db, redisClient, log).Run(ctx); err != nil {
		log.WithError(err).Error("Server error")
		stop()
		os.Exit(1)
	}
	log.Info("Server stopped")
}
