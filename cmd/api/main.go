// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/config"
	"github.com/technexus/storefront-backend/internal/infrastructure/database/postgres"
	"github.com/technexus/storefront-backend/internal/infrastructure/database/redis"
	"github.com/technexus/storefront-backend/internal/interfaces/http"
	"github.com/technexus/storefront-backend/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := logger.New(cfg)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("🚀 Starting")

	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to configure database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		// Runs beside the listener so an unreachable database does not block startup.
		go migrate(db, cfg, log)
	}

	redisClient := redis.NewConnection(cfg, log)
	defer redisClient.Close()

	server := http.NewServer(cfg, db, redisClient, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("HTTP server failed")
		}
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("👋 Shutting down gracefully...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	log.Info("✅ Server shutdown completed")
}

func migrate(db *postgres.DB, cfg *config.Config, log *logrus.Logger) {
	migration := postgres.NewMigration(db.GetDB(), log)

	if err := migration.RunAutoMigrations(); err != nil {
		log.WithError(err).Error("Database migration failed, will retry on next start")
		return
	}
	if err := migration.CreateIndexes(); err != nil {
		log.WithError(err).Warn("Index creation failed")
	}
	if cfg.Database.Seed {
		if err := migration.SeedInitialData(); err != nil {
			log.WithError(err).Warn("Data seeding failed")
		}
	}
}
