// Command xoxo serves N-in-a-row games against the computer over HTTP.
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

	"github.com/thisarray/xoxo/internal/app"
	"github.com/thisarray/xoxo/internal/config"
	"github.com/thisarray/xoxo/internal/domain"
	"github.com/thisarray/xoxo/internal/logging"
	"github.com/thisarray/xoxo/internal/store"
	"github.com/thisarray/xoxo/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("config")
	}
	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("logger")
	}

	ctx := context.Background()
	var st store.Store = store.NewMemory()
	if cfg.DatastoreProject != "" {
		ds, err := store.NewDatastore(ctx, cfg.DatastoreProject)
		if err != nil {
			log.Fatal().Err(err).Str("project", cfg.DatastoreProject).Msg("datastore")
		}
		defer ds.Close()
		st = ds
		log.Info().Str("project", cfg.DatastoreProject).Msg("using datastore")
	}

	svc := app.New(app.Options{
		Store:     st,
		Logger:    &log,
		CacheSize: cfg.CacheSize,
		Workers:   cfg.SearchWorkers,
		MaxCells:  cfg.MaxCells,
	})
	handler := web.NewServer(svc,
		web.WithLogger(log),
		web.WithHeartbeat(cfg.Heartbeat),
		web.WithDefaults(app.Settings{
			Width:     cfg.Width,
			Height:    cfg.Height,
			WinLength: cfg.WinLength,
			Human:     domain.X,
		}),
	)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Info().Str("addr", cfg.Addr).Int("max_cells", svc.MaxCells()).Msg("listening")
	select {
	case <-sigCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			log.Error().Err(err).Msg("server error")
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("graceful shutdown failed")
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Error().Err(closeErr).Msg("forced close failed")
		}
	}
}
