package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// load .env
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg, err := loadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	cfg.applyEnv()

	// configure zerolog console output and level
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(parseLevel(cfg.LogLevel))

	st, err := setupStores(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("setup stores")
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error().Err(err).Msg("close stores")
		}
	}()

	services := setupServices(st)
	srv := setupServer(cfg, services)

	//GRACEFUL SHUTDOWN

	// signal‐aware context
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting draft API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
		log.Info().Msg("graceful shutdown complete")

	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server exited unexpectedly")
		}
	}
}

func parseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		log.Warn().Str("level", s).Msg("unknown log level, using info")
		return zerolog.InfoLevel
	}
	return level
}
