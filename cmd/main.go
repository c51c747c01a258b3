package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/valeriaulyamaeva/session-ledger/internal/config"
	"github.com/valeriaulyamaeva/session-ledger/internal/database"
	"github.com/valeriaulyamaeva/session-ledger/internal/logger"
	"github.com/valeriaulyamaeva/session-ledger/internal/routes"
)

// ScheduleHealthProbe pings the store on schedule so a dropped backend shows
// up in the logs before the next request hits it.
func ScheduleHealthProbe(c *cron.Cron, store database.TransactionStore, schedule string, log zerolog.Logger) error {
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("store health probe failed")
			return
		}
		log.Debug().Msg("store health probe ok")
	})
	return err
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(zerolog.InfoLevel, true)
		bootLog.Fatal().Err(err).Msg("error loading config")
	}
	log := logger.New(cfg.LogLevel, !cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("client", cfg.DatabaseClient).Msg("error connecting to store")
	}
	defer store.Close()

	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("error applying schema")
		}
		log.Info().Msg("schema is up to date")
	}

	c := cron.New()
	if err := ScheduleHealthProbe(c, store, cfg.HealthProbeSchedule, log); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.HealthProbeSchedule).Msg("error scheduling health probe")
	}
	c.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRouter(store, cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("client", cfg.DatabaseClient).Msg("HTTP server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	<-c.Stop().Done()
}
