package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/dsa-vault/internal/config"
	"github.com/gokatarajesh/dsa-vault/internal/logging"
	"github.com/gokatarajesh/dsa-vault/internal/metrics"
	"github.com/gokatarajesh/dsa-vault/internal/question"
	"github.com/gokatarajesh/dsa-vault/internal/server"
	"github.com/gokatarajesh/dsa-vault/internal/store"
	ws "github.com/gokatarajesh/dsa-vault/pkg/http/ws"
)

// Application aggregates the repository, its backend and the HTTP server.
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	backend *Backend
	repo    *question.Repository
	http    *http.Server
	unsubs  []func()
}

// New opens the configured store, loads the questions and wires the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Str("driver", cfg.Store.Driver).Msg("starting application bootstrap")

	backend, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	repo, err := question.Open(ctx, store.NewAdapter(backend.Slot, logger), question.Options{Logger: logger})
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("open question repository: %w", err)
	}
	if repo.Recovered() {
		logger.Warn().Str("slot", backend.Slot.Name()).Msg("previous snapshot was discarded; the next change overwrites it")
	}

	collector := metrics.New(prometheus.DefaultRegisterer)
	collector.SetSnapshot(repo.List(ctx))

	hub := ws.NewHub(logger)
	stream := server.NewStreamHandler(repo, hub, logger)

	unsubs := []func(){
		repo.Subscribe(collector.Observe),
		repo.Subscribe(stream.Broadcast),
	}

	apiServer := server.NewHTTPServer(cfg, logger, repo, stream, collector, backend.Ping)

	return &Application{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
		repo:    repo,
		http:    apiServer,
		unsubs:  unsubs,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, unsub := range a.unsubs {
		unsub()
	}

	if err := a.backend.Close(); err != nil {
		a.logger.Error().Err(err).Msg("store shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
