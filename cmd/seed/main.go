package main

import (
	"context"
	"flag"
	"os"

	"hammerio/internal/config"
	"hammerio/internal/db"
	"hammerio/internal/logger"
	"hammerio/internal/seed"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	reset := flag.Bool("reset", false, "empty every table before inserting fixtures")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.Log.Level)

	gormDB, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to database")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("connected to database")

	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	if err := seed.Populate(context.Background(), gormDB, *reset); err != nil {
		logger.Fatal().Err(err).Msg("seed fixtures")
	}

	logger.Info().
		Int("users", len(seed.Users())).
		Int("projects", len(seed.Projects())).
		Int("members", len(seed.Members())).
		Str("password", seed.Password).
		Msg("seed completed")
}
