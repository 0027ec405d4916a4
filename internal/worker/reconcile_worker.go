package worker

import (
	"context"
	"fmt"
	"log/slog"

	"jornada/internal/amqp"
	"jornada/internal/core"
	"jornada/internal/services"
	"jornada/internal/sheets"
	"jornada/internal/storage"
)

// ReconcileWorker consumes reconcile messages, rebuilds the requested month
// and optionally mirrors the result to an external ledger.
type ReconcileWorker struct {
	store      storage.Store
	reconciler *services.Reconciler
	ledger     sheets.LedgerWriter
}

func NewReconcileWorker(store storage.Store, ledger sheets.LedgerWriter) *ReconcileWorker {
	return &ReconcileWorker{
		store:      store,
		reconciler: services.NewReconciler(store),
		ledger:     ledger,
	}
}

// HandleReconcileMessage processes a single reconcile message from AMQP.
func (w *ReconcileWorker) HandleReconcileMessage(ctx context.Context, msg *amqp.ReconcileMessage) error {
	slog.InfoContext(ctx, "Processing reconcile message",
		"project_id", msg.ProjectID,
		"year", msg.Year,
		"month", msg.Month)

	history, err := w.reconciler.ReconcileMonth(ctx, msg.ProjectID, msg.Year, msg.Month)
	if err != nil {
		return fmt.Errorf("reconcile month: %w", err)
	}

	w.exportMonth(ctx, msg.ProjectID, history)
	return nil
}

// StartupCheck reconciles the current month of every active project once at
// boot. It recovers from messages lost while the worker was down.
func (w *ReconcileWorker) StartupCheck(ctx context.Context, year, month int) error {
	projects, err := w.store.ListActiveProjects(ctx)
	if err != nil {
		return fmt.Errorf("list active projects: %w", err)
	}
	if len(projects) == 0 {
		slog.InfoContext(ctx, "No active projects found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Reconciling active projects on startup", "count", len(projects))

	successCount := 0
	errorCount := 0
	for _, project := range projects {
		history, err := w.reconciler.ReconcileMonth(ctx, project.ID, year, month)
		if err != nil {
			slog.ErrorContext(ctx, "Startup reconcile failed",
				"project_id", project.ID, "error", err)
			errorCount++
			continue
		}
		w.exportMonth(ctx, project.ID, history)
		successCount++
	}

	slog.InfoContext(ctx, "Startup reconcile completed",
		"total", len(projects),
		"reconciled", successCount,
		"errors", errorCount)

	return nil
}

// exportMonth mirrors the history to the ledger when one is configured.
// Export failures never fail the reconcile; the data is already durable.
func (w *ReconcileWorker) exportMonth(ctx context.Context, projectID string, history core.MonthlyHistory) {
	if w.ledger == nil {
		return
	}
	project, err := w.store.GetProject(ctx, projectID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load project for export",
			"project_id", projectID, "error", err)
		return
	}
	ref, err := w.ledger.ExportMonth(ctx, project, history)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to export month to ledger",
			"project_id", projectID,
			"year", history.Year,
			"month", history.Month,
			"error", err)
		return
	}
	slog.InfoContext(ctx, "Exported month to ledger",
		"project_id", projectID,
		"ledger_ref", ref)
}
