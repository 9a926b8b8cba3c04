package main

import (
	"context"
	"flag"
	"time"

	"cinescope-backend/config"
	pgrepo "cinescope-backend/internal/repository/postgres"
	"cinescope-backend/pkg/logger"
)

func main() {
	timeout := flag.Duration("timeout", time.Minute, "overall migration timeout")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	if cfg.Store != config.StorePostgres {
		log.Fatal().Str("store", cfg.Store).Msg("Migrations only apply to the postgres store")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := pgrepo.NewPgxPool(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	applied, err := pgrepo.Migrate(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
	if len(applied) == 0 {
		log.Info().Msg("Schema already up to date")
		return
	}
	log.Info().Strs("applied", applied).Msg("Migrations applied")
}
