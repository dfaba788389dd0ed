package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/dairylicious/dairyshop-backend/internal/seed"
	"github.com/dairylicious/dairyshop-backend/pkg/config"
	"github.com/dairylicious/dairyshop-backend/pkg/db"
	"github.com/dairylicious/dairyshop-backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := seed.Run(context.Background(), dbClient, cfg.Password, logg); err != nil {
		logg.Error(context.Background(), "seed failed", err)
		os.Exit(1)
	}
}
