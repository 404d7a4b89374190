// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"jongga-screener/internal/modules/universe"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases, always absolute
	Port     int
	LogLevel string
	DevMode  bool

	TopN int // ranked picks surfaced per run

	// Universe pre-filter gates.
	Filter universe.FilterConfig

	// Optimizer tuning.
	MinSamples           int
	LearningRate         float64
	CorrelationThreshold float64
	LearningWindowDays   int

	// Cron schedules, in the scheduler's local timezone.
	Timezone       string
	ScreeningCron  string
	LearningCron   string
	BackupCron     string
	ScheduleJobs  bool

	Backup BackupConfig
}

// BackupConfig holds the S3-compatible backup target. Backups stay
// disabled until a bucket is configured.
type BackupConfig struct {
	Enabled         bool
	Bucket          string
	Endpoint        string // custom endpoint for S3-compatible stores, empty for AWS
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	Keep            int // number of snapshots retained
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("SCREENER_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("PORT", 8010),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		TopN: getEnvAsInt("TOP_N", 5),

		Filter: universe.FilterConfig{
			MinTradingValue: getEnvAsFloat("FILTER_MIN_TRADING_VALUE", 200),
			MinChangeRate:   getEnvAsFloat("FILTER_MIN_CHANGE_RATE", 2.0),
			MaxChangeRate:   getEnvAsFloat("FILTER_MAX_CHANGE_RATE", 15.0),
			MinPrice:        getEnvAsFloat("FILTER_MIN_PRICE", 1000),
		},

		MinSamples:           getEnvAsInt("LEARNING_MIN_SAMPLES", 10),
		LearningRate:         getEnvAsFloat("LEARNING_RATE", 0.1),
		CorrelationThreshold: getEnvAsFloat("LEARNING_CORR_THRESHOLD", 0.05),
		LearningWindowDays:   getEnvAsInt("LEARNING_WINDOW_DAYS", 30),

		// KRX closes 15:30; screening runs on the closing auction.
		Timezone:      getEnv("SCHEDULE_TZ", "Asia/Seoul"),
		ScreeningCron: getEnv("SCREENING_CRON", "20 15 * * 1-5"),
		LearningCron:  getEnv("LEARNING_CRON", "0 17 * * 1-5"),
		BackupCron:    getEnv("BACKUP_CRON", "30 2 * * *"),
		ScheduleJobs:  getEnvAsBool("SCHEDULE_JOBS", true),

		Backup: BackupConfig{
			Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
			Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
			Region:          getEnv("BACKUP_S3_REGION", "auto"),
			AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
			Prefix:          getEnv("BACKUP_S3_PREFIX", "jongga-screener"),
			Keep:            getEnvAsInt("BACKUP_KEEP", 14),
		},
	}
	cfg.Backup.Enabled = cfg.Backup.Bucket != ""

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.TopN <= 0 {
		return fmt.Errorf("TOP_N must be positive, got %d", c.TopN)
	}
	if c.MinSamples <= 0 {
		return fmt.Errorf("LEARNING_MIN_SAMPLES must be positive, got %d", c.MinSamples)
	}
	if c.LearningRate <= 0 || c.LearningRate >= 1 {
		return fmt.Errorf("LEARNING_RATE must be in (0, 1), got %v", c.LearningRate)
	}
	if c.LearningWindowDays <= 0 {
		return fmt.Errorf("LEARNING_WINDOW_DAYS must be positive, got %d", c.LearningWindowDays)
	}
	if c.Backup.Enabled && c.Backup.AccessKeyID == "" {
		return fmt.Errorf("BACKUP_S3_BUCKET is set but BACKUP_S3_ACCESS_KEY_ID is empty")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
