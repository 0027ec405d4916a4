package memory

import (
	"context"
	"errors"
	"testing"

	"jornada/internal/core"
	"jornada/internal/storage"
)

var _ storage.Store = (*Store)(nil)

func fullWeek() []core.WorkDay {
	days := []core.Weekday{
		core.Sunday, core.Monday, core.Tuesday, core.Wednesday,
		core.Thursday, core.Friday, core.Saturday,
	}
	out := make([]core.WorkDay, 0, 7)
	for _, d := range days {
		enabled := d != core.Sunday && d != core.Saturday
		out = append(out, core.WorkDay{
			Day: d, Enabled: enabled, Start: "09:00", End: "17:00",
		})
	}
	return out
}

func TestProjectLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	p, err := s.CreateProject(ctx, core.Project{UserID: "u1", Name: "Consultoria"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected generated project id")
	}
	if p.Status != core.StatusPlanning {
		t.Fatalf("expected default status planning, got %s", p.Status)
	}

	if err := s.UpdateProjectStatus(ctx, p.ID, core.StatusActive); err != nil {
		t.Fatalf("update status: %v", err)
	}
	active, err := s.ListActiveProjects(ctx)
	if err != nil || len(active) != 1 {
		t.Fatalf("expected one active project, got %d (err %v)", len(active), err)
	}

	if err := s.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if _, err := s.GetProject(ctx, p.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListProjectsFiltersByUserAndSearch(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, spec := range []struct{ user, name string }{
		{"u1", "Site institucional"},
		{"u1", "API de pagamentos"},
		{"u2", "Site pessoal"},
	} {
		if _, err := s.CreateProject(ctx, core.Project{UserID: spec.user, Name: spec.name}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, total, err := s.ListProjects(ctx, "u1", "site", 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].Name != "Site institucional" {
		t.Fatalf("unexpected result: total=%d got=%v", total, got)
	}
}

func TestConfigUniquePerProject(t *testing.T) {
	s := New()
	ctx := context.Background()
	cfg := core.ProjectConfig{ProjectID: "p1", HourlyRate: 80, WorkDays: fullWeek()}

	if _, err := s.CreateProjectConfig(ctx, cfg); err != nil {
		t.Fatalf("create config: %v", err)
	}
	if _, err := s.CreateProjectConfig(ctx, cfg); err == nil {
		t.Fatal("expected duplicate config to fail")
	}

	cfg.HourlyRate = 95
	updated, err := s.UpdateProjectConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("update config: %v", err)
	}
	if updated.HourlyRate != 95 {
		t.Fatalf("expected rate 95, got %v", updated.HourlyRate)
	}
}

func TestRecordsUniquePerDayAndOrdered(t *testing.T) {
	s := New()
	ctx := context.Background()

	h, err := s.CreateMonthlyHistory(ctx, "p1", 2024, 1, 0, 0)
	if err != nil {
		t.Fatalf("create history: %v", err)
	}

	for _, date := range []string{"2024-01-03", "2024-01-01", "2024-01-02"} {
		_, err := s.CreateMonthlyWorkRecord(ctx, core.MonthlyWorkRecord{
			MonthlyHistoryID: h.ID, ProjectID: "p1", Year: 2024, Month: 1, Date: date,
		})
		if err != nil {
			t.Fatalf("create record %s: %v", date, err)
		}
	}
	if _, err := s.CreateMonthlyWorkRecord(ctx, core.MonthlyWorkRecord{
		ProjectID: "p1", Year: 2024, Month: 1, Date: "2024-01-01",
	}); err == nil {
		t.Fatal("expected duplicate (project, date) record to fail")
	}

	recs, err := s.ListMonthlyWorkRecords(ctx, "p1", 2024, 1)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	want := []string{"2024-01-01", "2024-01-02", "2024-01-03"}
	for i, rec := range recs {
		if rec.Date != want[i] {
			t.Fatalf("records not ordered by date: got %s at %d", rec.Date, i)
		}
	}

	found, err := s.FindMonthlyHistory(ctx, "p1", 2024, 1)
	if err != nil {
		t.Fatalf("find history: %v", err)
	}
	if len(found.Records) != 3 {
		t.Fatalf("expected history to carry 3 records, got %d", len(found.Records))
	}
}
