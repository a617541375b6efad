// Package main is the entry point for the Advisor risk assessment and
// portfolio recommendation service.
//
// The service guides clients through a two-part risk questionnaire
// (tolerance and capacity), submits the answers to the robo scoring
// backend, and builds a portfolio matched to the resulting risk bucket.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/advisor/internal/clientdata"
	"github.com/aristath/advisor/internal/clients/finnhub"
	"github.com/aristath/advisor/internal/clients/robo"
	"github.com/aristath/advisor/internal/config"
	"github.com/aristath/advisor/internal/database"
	"github.com/aristath/advisor/internal/events"
	"github.com/aristath/advisor/internal/modules/assessment"
	"github.com/aristath/advisor/internal/scheduler"
	"github.com/aristath/advisor/internal/server"
	"github.com/aristath/advisor/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Msg("Starting Advisor")

	// Cache database holds questionnaire and symbol search responses so
	// the service stays usable through short backend outages.
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	if err := clientdata.EnsureSchema(cacheDB.Conn()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache schema")
	}
	cacheRepo := clientdata.NewRepository(cacheDB.Conn())

	// Event bus connects modules to the live event stream endpoint
	eventBus := events.NewBus(log)

	// Backend clients
	roboClient := robo.NewClient(cfg.RoboAPIURL, cacheRepo, log)

	var finnhubClient *finnhub.Client
	if cfg.FinnhubAPIKey != "" {
		finnhubClient = finnhub.NewClient(cfg.FinnhubAPIURL, cfg.FinnhubAPIKey, cacheRepo, log)
	} else {
		log.Warn().Msg("Finnhub API key not configured - symbol search disabled")
	}

	// Assessment service owns the questionnaire sessions
	assessmentService := assessment.NewService(roboClient, eventBus, assessment.Options{
		IncomeStep:    cfg.IncomeStep,
		DefaultIncome: cfg.DefaultIncome,
	}, log)

	// Background maintenance jobs
	sched := scheduler.New(log)

	// Cache cleanup daily at 03:00
	if err := sched.AddJob("0 0 3 * * *", scheduler.NewCacheCleanupJob(cacheRepo, log)); err != nil {
		log.Error().Err(err).Msg("Failed to register cache cleanup job")
	}

	// Idle session expiry every 5 minutes
	if err := sched.AddJob("0 */5 * * * *", scheduler.NewSessionExpiryJob(assessmentService, cfg.SessionTTL, log)); err != nil {
		log.Error().Err(err).Msg("Failed to register session expiry job")
	}

	sched.Start()
	defer sched.Stop()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Log:           log,
		Config:        cfg,
		Port:          cfg.Port,
		DevMode:       cfg.DevMode,
		CacheDB:       cacheDB,
		CacheRepo:     cacheRepo,
		EventBus:      eventBus,
		Assessment:    assessmentService,
		RoboClient:    roboClient,
		FinnhubClient: finnhubClient,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with a bounded window for in-flight requests
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
