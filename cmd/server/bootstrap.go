package main

import (
	"github.com/robfig/cron/v3"

	"github.com/huangang/teamboard/backend/internal/config"
	"github.com/huangang/teamboard/backend/internal/handlers"
	"github.com/huangang/teamboard/backend/internal/models"
	"github.com/huangang/teamboard/backend/internal/services"
	"github.com/huangang/teamboard/backend/internal/utils"
	"github.com/huangang/teamboard/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	notifyQueue services.NotifyQueue
	worker      *services.Worker
	logCleanup  *cron.Cron
	authHandler *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default data
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize system logger
	services.InitSystemLogger(models.GetDB())

	// Start system log cleanup scheduler
	logCleanup := services.StartLogCleanupScheduler(models.GetDB())

	// Initialize notify queue (uses Redis if enabled, otherwise sync mode)
	deliver := services.NewInviteNoticeProcessor(models.GetDB())
	notifyQueue := services.InitNotifyQueue(cfg)
	if syncQueue, ok := notifyQueue.(*services.SyncNotifyQueue); ok {
		syncQueue.SetProcessor(deliver)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(deliver)
			worker.Start()
		}
	}

	return &appServices{
		notifyQueue: notifyQueue,
		worker:      worker,
		logCleanup:  logCleanup,
		authHandler: handlers.NewAuthHandler(models.GetDB(), cfg),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	if s.logCleanup != nil {
		s.logCleanup.Stop()
	}
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.notifyQueue != nil {
		s.notifyQueue.Close()
	}
}
