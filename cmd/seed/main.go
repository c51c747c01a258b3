package main

import (
	"context"
	"flag"
	"fmt"
	"time"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/valeriaulyamaeva/session-ledger/internal/config"
	"github.com/valeriaulyamaeva/session-ledger/internal/database"
	"github.com/valeriaulyamaeva/session-ledger/internal/logger"
	"github.com/valeriaulyamaeva/session-ledger/utils"
)

func main() {
	n := flag.Int("n", 20, "number of transactions to generate")
	seed := flag.Int64("seed", 0, "random seed, 0 picks one")
	sessionID := flag.String("session", "", "session id to seed, empty mints a new one")
	flag.Parse()

	log := logger.New(zerolog.InfoLevel, true)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to store")
	}
	defer store.Close()

	if *sessionID == "" {
		*sessionID = uuid.NewString()
	}

	reqs := utils.GenerateTestTransactions(gofakeit.New(*seed), *n)
	if err := utils.SeedSession(ctx, store, *sessionID, reqs); err != nil {
		log.Fatal().Err(err).Msg("error seeding transactions")
	}

	sum, err := store.GetSummary(ctx, *sessionID)
	if err != nil {
		log.Fatal().Err(err).Msg("error reading summary")
	}
	log.Info().Int("count", len(reqs)).Str("balance", sum.String()).Msg("seeded transactions")
	fmt.Printf("sessionId=%s\n", *sessionID)
}
