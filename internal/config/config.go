package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/pet_shop/pkg/config"
)

type ServiceConfig struct {
	config.Config

	CleanupInterval           time.Duration
	DanglingGrace             time.Duration
	CompensationRetryInterval time.Duration
	CompensationMaxAttempts   int
	LowStockThreshold         int
	ReportLocation            *time.Location
}

func Load() ServiceConfig {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := config.Load()

	config.MustNonEmpty(map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
		"JWT_SECRET":   string(cfg.JWTAccessSecret),
	})

	loc, err := time.LoadLocation(config.EnvDefault("REPORT_TIMEZONE", "UTC"))
	if err != nil {
		log.Fatalf("invalid REPORT_TIMEZONE: %v", err)
	}

	return ServiceConfig{
		Config:                    cfg,
		CleanupInterval:           config.EnvDurationDefault("CLEANUP_INTERVAL", time.Hour),
		DanglingGrace:             config.EnvDurationDefault("DANGLING_GRACE", 24*time.Hour),
		CompensationRetryInterval: config.EnvDurationDefault("COMPENSATION_RETRY_INTERVAL", 5*time.Minute),
		CompensationMaxAttempts:   config.EnvIntDefault("COMPENSATION_MAX_ATTEMPTS", 5),
		LowStockThreshold:         config.EnvIntDefault("LOW_STOCK_THRESHOLD", 5),
		ReportLocation:            loc,
	}
}
