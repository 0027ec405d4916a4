package worker

import (
	"context"
	"errors"
	"testing"

	"jornada/internal/amqp"
	"jornada/internal/core"
	sheetsmem "jornada/internal/sheets/memory"
	storemem "jornada/internal/storage/memory"
)

func fullWeek() []core.WorkDay {
	days := []core.Weekday{
		core.Sunday, core.Monday, core.Tuesday, core.Wednesday,
		core.Thursday, core.Friday, core.Saturday,
	}
	out := make([]core.WorkDay, 0, 7)
	for _, d := range days {
		enabled := d != core.Sunday && d != core.Saturday
		out = append(out, core.WorkDay{Day: d, Enabled: enabled, Start: "09:00", End: "17:00"})
	}
	return out
}

func seedActiveProject(t *testing.T, store *storemem.Store) core.Project {
	t.Helper()
	ctx := context.Background()

	p, err := store.CreateProject(ctx, core.Project{UserID: "u1", Name: "Consultoria"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if err := store.UpdateProjectStatus(ctx, p.ID, core.StatusActive); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := store.CreateProjectConfig(ctx, core.ProjectConfig{
		ProjectID: p.ID, HourlyRate: 100, WorkDays: fullWeek(),
	}); err != nil {
		t.Fatalf("create config: %v", err)
	}
	return p
}

func TestHandleReconcileMessage(t *testing.T) {
	store := storemem.New()
	ledger := sheetsmem.New()
	w := NewReconcileWorker(store, ledger)
	p := seedActiveProject(t, store)
	ctx := context.Background()

	msg := amqp.NewReconcileMessage(p.ID, 2024, 1)
	if err := w.HandleReconcileMessage(ctx, msg); err != nil {
		t.Fatalf("handle message: %v", err)
	}

	history, err := store.FindMonthlyHistory(ctx, p.ID, 2024, 1)
	if err != nil {
		t.Fatalf("find history: %v", err)
	}
	if history.TotalDays != 23 {
		t.Fatalf("expected 23 days, got %d", history.TotalDays)
	}

	exports := ledger.Exports()
	if len(exports) != 1 {
		t.Fatalf("expected 1 ledger export, got %d", len(exports))
	}
	if exports[0].ProjectID != p.ID || exports[0].Month != 1 {
		t.Errorf("unexpected export: %+v", exports[0])
	}
}

func TestHandleReconcileMessageMissingConfig(t *testing.T) {
	store := storemem.New()
	w := NewReconcileWorker(store, nil)

	p, err := store.CreateProject(context.Background(), core.Project{UserID: "u1", Name: "Sem agenda"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	msg := amqp.NewReconcileMessage(p.ID, 2024, 1)
	if err := w.HandleReconcileMessage(context.Background(), msg); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing config, got %v", err)
	}
}

func TestStartupCheckReconcilesActiveProjects(t *testing.T) {
	store := storemem.New()
	ledger := sheetsmem.New()
	w := NewReconcileWorker(store, ledger)
	p := seedActiveProject(t, store)
	ctx := context.Background()

	// A planning-status project must be left alone.
	if _, err := store.CreateProject(ctx, core.Project{UserID: "u1", Name: "Rascunho"}); err != nil {
		t.Fatalf("create dormant project: %v", err)
	}

	if err := w.StartupCheck(ctx, 2024, 2); err != nil {
		t.Fatalf("startup check: %v", err)
	}

	history, err := store.FindMonthlyHistory(ctx, p.ID, 2024, 2)
	if err != nil {
		t.Fatalf("active project should be reconciled: %v", err)
	}
	// February 2024 has 21 weekdays.
	if history.TotalDays != 21 {
		t.Fatalf("expected 21 days, got %d", history.TotalDays)
	}
	if len(ledger.Exports()) != 1 {
		t.Fatalf("expected 1 export, got %d", len(ledger.Exports()))
	}
}

func TestExportFailureDoesNotFailReconcile(t *testing.T) {
	store := storemem.New()
	w := NewReconcileWorker(store, failingLedger{})
	p := seedActiveProject(t, store)

	msg := amqp.NewReconcileMessage(p.ID, 2024, 1)
	if err := w.HandleReconcileMessage(context.Background(), msg); err != nil {
		t.Fatalf("reconcile should survive export failure: %v", err)
	}
}

type failingLedger struct{}

func (failingLedger) ExportMonth(context.Context, core.Project, core.MonthlyHistory) (string, error) {
	return "", errors.New("spreadsheet unavailable")
}
