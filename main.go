package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/capitals/internal/config"
	"github.com/robalobadob/capitals/internal/countries"
	"github.com/robalobadob/capitals/internal/httpserver"
	"github.com/robalobadob/capitals/internal/session"
	"github.com/robalobadob/capitals/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if err := countries.Init(cfg.CountriesFile); err != nil {
		log.Fatal().Err(err).Msg("failed to load countries")
	}
	ref := countries.Default()
	log.Info().Int("countries", ref.Len()).Str("version", ref.Version()).Msg("dataset loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	saves, err := store.Open(ctx, cfg.DatabaseURL, cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open save store")
	}
	defer saves.Close()

	sessions := session.NewManager(ref, saves, cfg.SessionTTL)
	go sessions.Run(ctx, time.Minute)

	srv := httpserver.New(httpserver.Options{
		ClientOrigin: cfg.ClientOrigin,
		JWTSecret:    cfg.JWTSecret,
		CookieName:   cfg.CookieName,
		Secure:       cfg.Production(),
	}, sessions, ref)

	log.Info().Str("port", cfg.Port).Msg("starting capitals server")
	errc := make(chan error, 1)
	go func() { errc <- srv.Start(":" + cfg.Port) }()
	select {
	case err := <-errc:
		log.Error().Err(err).Msg("server exited")
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown")
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server exited")
		}
	}
}
