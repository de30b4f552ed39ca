package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/blackmichael/forum-feeds/internal/config"
	"github.com/blackmichael/forum-feeds/internal/domain"
	"github.com/blackmichael/forum-feeds/internal/httpserver"
	"github.com/blackmichael/forum-feeds/internal/ingest"
	"github.com/blackmichael/forum-feeds/internal/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up repository (implements both PostRepository and CursorRepository)
	repo, err := sqlite.NewRepository(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("create repository: %w", err)
	}
	defer repo.Close()
	logger.Info("opened database", "path", cfg.DatabasePath)

	service := domain.NewOriginService(repo, repo, logger)

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start the event stream subscriber in the background
	if cfg.StreamURL != "" {
		subscriber := ingest.NewSubscriber(cfg.StreamURL, service, logger)
		go func() {
			if err := subscriber.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Error("stream subscriber exited with error", "error", err)
			}
		}()
	} else {
		logger.Info("no stream URL configured, ingest disabled")
	}

	// Start the HTTP server
	server := httpserver.NewServer(cfg, service, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server exited with error", "error", err)
		}
	}()

	logger.Info("server started", "port", cfg.Port)

	// Wait for shutdown signal
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)
	cancel()

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("error shutting down http server", "error", err)
	}

	return nil
}
