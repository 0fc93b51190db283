package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"growthkit/internal/apperr"
	"growthkit/internal/config"
	"growthkit/internal/llm"
	"growthkit/internal/logger"
	"growthkit/internal/ratelimit"
	"growthkit/internal/reports"
	"growthkit/internal/server"
	"growthkit/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the content generation API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.App.Debug {
		logger.SetLevel("debug")
	} else {
		logger.SetLevel(cfg.App.LogLevel)
	}

	db, err := store.New(cfg.Store.Directory)
	if err != nil {
		return fmt.Errorf("failed to open report store: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing provider credential is not fatal: the report read path stays
	// available and generation requests fail with a not-configured error.
	var generator reports.TextGenerator
	var manager *reports.Manager
	client, err := llm.NewClient(ctx, cfg.AI.Gemini)
	switch {
	case err == nil:
		generator = client
		manager = reports.NewManager(client, db)
		logger.Info("Gemini client ready", "model", client.Model())
	case errors.Is(err, apperr.ErrNotConfigured):
		logger.Warn("Starting without an AI provider; generation requests will be rejected")
	default:
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}

	limiter := ratelimit.New(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	srv := server.New(cfg.Server, db, limiter, generator, manager)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
