package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lyricast/lyricast/internal/api"
	"github.com/lyricast/lyricast/internal/cleanup"
	"github.com/lyricast/lyricast/internal/config"
	"github.com/lyricast/lyricast/internal/deck"
	"github.com/lyricast/lyricast/internal/format"
	"github.com/lyricast/lyricast/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients. Cleanup is optional: without a key the
	// formatter runs on raw extracted text.
	stats := cleanup.NewStats(time.Hour)
	var cleaner format.Cleaner
	var cleanupClient *cleanup.Client
	if cfg.OpenAIAPIKey != "" {
		cleanupClient = cleanup.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.CleanupTimeout, stats)
		cleaner = cleanupClient
	} else {
		log.Warn("OPENAI_API_KEY not set, AI lyrics cleanup disabled")
	}
	decks := deck.NewClient(cfg.DeckServiceURL, cfg.DeckServiceAPIKey)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, cleaner, decks, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if cleanupClient != nil {
			cleanupClient.Close()
		}
		decks.Close()
	}()

	log.Info("starting lyricast", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
