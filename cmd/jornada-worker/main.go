package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jornada/internal/amqp"
	"jornada/internal/cli"
	"jornada/internal/sheets"
	gsheet "jornada/internal/sheets/google"
	"jornada/internal/worker"
)

func main() {
	logger, cfg := cli.Bootstrap()

	logger.Info("Starting jornada-worker")

	repo := cli.OpenStore(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Google Sheets ledger export is optional
	var ledger sheets.LedgerWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		ledger = client
		logger.Info("Google Sheets ledger initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for jornada-worker")
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reconcileWorker := worker.NewReconcileWorker(repo, ledger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// On startup, rebuild the current month for every active project so
	// messages lost while the worker was down are not missed forever.
	now := time.Now()
	logger.Info("Performing startup reconcile check...")
	if err := reconcileWorker.StartupCheck(ctx, now.Year(), int(now.Month())); err != nil {
		logger.Error("Startup reconcile check failed", "error", err)
		// Don't exit - continue with normal operation
	}

	go func() {
		handler := func(msg *amqp.ReconcileMessage) error {
			return reconcileWorker.HandleReconcileMessage(ctx, msg)
		}
		if err := amqpClient.ConsumeReconcile(ctx, handler); err != nil {
			if err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
		}
	}()

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

	logger.Info("Shutting down worker...")
	cancel()

	// Give in-flight reconciles a moment to finish
	select {
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached")
	case <-time.After(5 * time.Second):
		logger.Info("Worker shutdown complete")
	}
}
