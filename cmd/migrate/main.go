package main

import (
	"context"
	"time"
	"github.com/rs/zerolog"
	"github.com/valeriaulyamaeva/session-ledger/internal/config"
	"github.com/valeriaulyamaeva/session-ledger/internal/database"
	"github.com/valeriaulyamaeva/session-ledger/internal/logger"
)

func main() {
	log := logger.New(zerolog.InfoLevel, true)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to store")
	}
	defer store.Close()

	log.Info().Str("client", cfg.DatabaseClient).Msg("applying schema")
	if err := store.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("error applying schema")
	}
	log.Info().Msg("schema applied")
}
