package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jornada/internal/cli"
	"jornada/internal/services"
)

func main() {
	logger, cfg := cli.Bootstrap()

	logger.Info("Starting sweep-worker")

	repo := cli.OpenStore(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	processor := services.NewSweepProcessor(repo, services.SweepProcessorConfig{
		Interval:       cfg.SweepInterval,
		Concurrency:    cfg.SweepWorkers,
		LookbackMonths: cfg.LookbackMonths,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Periodic reconcile sweep configured",
		"interval", cfg.SweepInterval,
		"concurrency", cfg.SweepWorkers,
		"lookback_months", cfg.LookbackMonths,
		"sqlite_db", cfg.SQLiteDBPath)

	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start sweep processor", "error", err)
		os.Exit(1)
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down sweep-worker...")
	if err := processor.Stop(shutdownCtx); err != nil {
		logger.Warn("Sweep processor stop", "error", err)
	}
	cancel()

	logger.Info("Sweep-worker shutdown complete")
}
