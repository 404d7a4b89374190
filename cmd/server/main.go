// Package main is the entry point for the closing-price screener.
// The service ingests daily bars, screens the eligible universe at the
// closing auction, assigns grades and sell strategies, records realized
// next-day outcomes, and adapts the indicator weights from them.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"jongga-screener/internal/config"
	"jongga-screener/internal/database"
	"jongga-screener/internal/modules/learning"
	"jongga-screener/internal/modules/screener"
	"jongga-screener/internal/modules/universe"
	"jongga-screener/internal/reliability"
	"jongga-screener/internal/scheduler"
	"jongga-screener/internal/server"
	"jongga-screener/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Int("port", cfg.Port).
		Msg("Starting jongga-screener")

	// Two databases: screening data on the standard profile, the weight
	// ledger on the safest one.
	screenerDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "screener.db"),
		Profile: database.ProfileStandard,
		Name:    "screener",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open screener database")
	}
	defer screenerDB.Close()

	weightsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "weights.db"),
		Profile: database.ProfileLedger,
		Name:    "weights",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open weights database")
	}
	defer weightsDB.Close()

	for _, db := range []*database.DB{screenerDB, weightsDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Migration failed")
		}
	}

	// Repositories.
	universeRepo := universe.NewRepository(screenerDB.Conn(), log)
	scoreRepo := screener.NewRepository(screenerDB.Conn(), log)
	outcomeRepo := learning.NewOutcomeRepository(screenerDB.Conn(), log)
	weightRepo := learning.NewWeightRepository(weightsDB.Conn(), log)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := weightRepo.Seed(startupCtx); err != nil {
		startupCancel()
		log.Fatal().Err(err).Msg("Failed to seed weights")
	}
	startupCancel()

	// Services.
	screenerSvc := screener.NewService(universeRepo, weightRepo, scoreRepo, cfg.Filter, cfg.TopN, log)
	collector := learning.NewCollector(universeRepo, scoreRepo, outcomeRepo, log)
	learningSvc := learning.NewService(collector, outcomeRepo, weightRepo,
		learning.OptimizerConfig{
			MinSamples:           cfg.MinSamples,
			LearningRate:         cfg.LearningRate,
			CorrelationThreshold: cfg.CorrelationThreshold,
		},
		cfg.LearningWindowDays, log)

	// Scheduler runs in the exchange timezone.
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("tz", cfg.Timezone).Msg("Unknown timezone")
	}

	sched := scheduler.New(loc, log)
	if cfg.ScheduleJobs {
		if err := sched.AddJob(cfg.ScreeningCron, scheduler.NewScreeningJob(screenerSvc, universeRepo, loc, log)); err != nil {
			log.Fatal().Err(err).Msg("Failed to register screening job")
		}
		if err := sched.AddJob(cfg.LearningCron, scheduler.NewLearningJob(learningSvc)); err != nil {
			log.Fatal().Err(err).Msg("Failed to register learning job")
		}

		if cfg.Backup.Enabled {
			s3Client, err := reliability.NewS3Client(context.Background(),
				cfg.Backup.Endpoint, cfg.Backup.Region,
				cfg.Backup.AccessKeyID, cfg.Backup.SecretAccessKey,
				cfg.Backup.Bucket, log)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to create S3 client")
			}
			backupSvc := reliability.NewBackupService(s3Client,
				[]*database.DB{screenerDB, weightsDB},
				cfg.DataDir, cfg.Backup.Prefix, cfg.Backup.Keep, log)
			if err := sched.AddJob(cfg.BackupCron, scheduler.NewBackupJob(backupSvc)); err != nil {
				log.Fatal().Err(err).Msg("Failed to register backup job")
			}
		} else {
			log.Warn().Msg("Backups disabled, no BACKUP_S3_BUCKET configured")
		}

		sched.Start()
	}

	srv := server.New(server.Config{
		Log:             log,
		Cfg:             cfg,
		ScreenerDB:      screenerDB,
		WeightsDB:       weightsDB,
		ScreenerService: screenerSvc,
		LearningService: learningSvc,
		ScoreRepo:       scoreRepo,
		WeightRepo:      weightRepo,
		UniverseRepo:    universeRepo,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	if cfg.ScheduleJobs {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}

	log.Info().Msg("Stopped")
}
