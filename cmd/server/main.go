package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"impostor/internal/app"
	"impostor/internal/config"
	"impostor/internal/domain"
	"impostor/internal/logging"
	httpTransport "impostor/internal/transport/http"
	"impostor/internal/transport/ws"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logging.Level, logFormat(cfg))
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Errorw("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.SugaredLogger) error {
	logger.Infow("starting impostor game server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	pairs, err := wordPairs(cfg)
	if err != nil {
		return err
	}

	hub := ws.NewHub(logger)
	defer hub.Close()

	registry, err := app.NewRegistry(registryOptions(cfg, pairs), logger,
		app.WithNotifier(hub),
	)
	if err != nil {
		return fmt.Errorf("create registry: %w", err)
	}
	defer registry.Close()

	server := httpTransport.NewServer(cfg, registry, hub, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return registry.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// logFormat honors LOG_FORMAT and otherwise logs readable lines in
// development and JSON everywhere else
func logFormat(cfg *config.Config) string {
	if cfg.Logging.Format != "" {
		return cfg.Logging.Format
	}
	if cfg.IsDevelopment() {
		return "console"
	}
	return "json"
}

func wordPairs(cfg *config.Config) ([]domain.WordPair, error) {
	if cfg.Game.WordPairsFile == "" {
		return app.DefaultWordPairs, nil
	}
	pairs, err := app.LoadWordPairs(cfg.Game.WordPairsFile)
	if err != nil {
		return nil, fmt.Errorf("load word pairs: %w", err)
	}
	return pairs, nil
}

func registryOptions(cfg *config.Config, pairs []domain.WordPair) app.Options {
	opts := app.DefaultOptions()
	opts.Settings = domain.RoomSettings{
		MinPlayers:   cfg.Game.MinPlayers,
		MaxPlayers:   cfg.Game.MaxPlayers,
		VoteDuration: cfg.Game.VoteDuration,
		WinningScore: cfg.Game.WinningScore,
	}
	opts.WordPairs = pairs
	opts.ReconnectGrace = cfg.Game.ReconnectGrace
	opts.CleanupInterval = cfg.Game.CleanupInterval
	opts.DisconnectCacheSize = cfg.Game.DisconnectCacheSize
	opts.RoomCodeLength = cfg.Game.RoomCodeLength
	return opts
}
