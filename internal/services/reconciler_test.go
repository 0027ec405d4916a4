package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"jornada/internal/core"
	"jornada/internal/storage/memory"
)

func weekdaySchedule(start, end string, discountLunch bool) []core.WorkDay {
	days := []core.Weekday{
		core.Sunday, core.Monday, core.Tuesday, core.Wednesday,
		core.Thursday, core.Friday, core.Saturday,
	}
	out := make([]core.WorkDay, 0, 7)
	for _, d := range days {
		enabled := d != core.Sunday && d != core.Saturday
		out = append(out, core.WorkDay{
			Day:           d,
			Enabled:       enabled,
			Start:         start,
			End:           end,
			DiscountLunch: discountLunch,
		})
	}
	return out
}

func seedProject(t *testing.T, store *memory.Store, workDays []core.WorkDay) core.Project {
	t.Helper()
	ctx := context.Background()

	p, err := store.CreateProject(ctx, core.Project{UserID: "u1", Name: "Consultoria"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	_, err = store.CreateProjectConfig(ctx, core.ProjectConfig{
		ProjectID:  p.ID,
		HourlyRate: 100,
		WorkDays:   workDays,
	})
	if err != nil {
		t.Fatalf("create config: %v", err)
	}
	return p
}

func TestBuildMonthRecordsCoversEveryDay(t *testing.T) {
	r := NewReconciler(memory.New())

	// January 2024: 31 days, 23 weekdays.
	records, err := r.BuildMonthRecords(weekdaySchedule("09:00", "18:00", true), 2024, 1)
	if err != nil {
		t.Fatalf("build records: %v", err)
	}
	if len(records) != 31 {
		t.Fatalf("expected 31 records, got %d", len(records))
	}

	enabled := 0
	for _, rec := range records {
		if rec.Enabled {
			enabled++
			if rec.Start == nil || rec.End == nil {
				t.Fatalf("enabled day %s missing times", rec.Date)
			}
			if rec.Duration != 480 {
				t.Fatalf("day %s: expected 480 minutes, got %d", rec.Date, rec.Duration)
			}
		} else {
			if rec.Start != nil || rec.End != nil {
				t.Fatalf("disabled day %s should have nil times", rec.Date)
			}
			if rec.Duration != 0 {
				t.Fatalf("disabled day %s should have zero duration", rec.Date)
			}
		}
	}
	if enabled != 23 {
		t.Fatalf("expected 23 enabled weekdays, got %d", enabled)
	}
}

func TestBuildMonthRecordsUseCanonicalDates(t *testing.T) {
	r := NewReconciler(memory.New())

	records, err := r.BuildMonthRecords(weekdaySchedule("09:00", "17:00", false), 2024, 1)
	if err != nil {
		t.Fatalf("build records: %v", err)
	}

	// Record dates are the persisted lookup key. They must be stored in the
	// canonical layout, one calendar day apart, so date lookups and string
	// ordering both work.
	want := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, rec := range records {
		parsed, err := time.Parse(core.DateLayout, rec.Date)
		if err != nil {
			t.Fatalf("record date %q is not %s: %v", rec.Date, core.DateLayout, err)
		}
		if !parsed.Equal(want) {
			t.Fatalf("expected date %s, got %s", want.Format(core.DateLayout), rec.Date)
		}
		want = want.AddDate(0, 0, 1)
	}
}

func TestReconcileMonthTotalsAndOrdering(t *testing.T) {
	store := memory.New()
	r := NewReconciler(store)
	p := seedProject(t, store, weekdaySchedule("09:00", "17:00", false))

	history, err := r.ReconcileMonth(context.Background(), p.ID, 2024, 1)
	if err != nil {
		t.Fatalf("reconcile month: %v", err)
	}

	// 23 weekdays at 8h each.
	if history.TotalDays != 23 {
		t.Fatalf("expected 23 total days, got %d", history.TotalDays)
	}
	if history.TotalHours != 184 {
		t.Fatalf("expected 184 total hours, got %v", history.TotalHours)
	}
	if len(history.Records) != 31 {
		t.Fatalf("expected 31 records, got %d", len(history.Records))
	}
	for i := 1; i < len(history.Records); i++ {
		if history.Records[i-1].Date >= history.Records[i].Date {
			t.Fatalf("records not ordered: %s before %s",
				history.Records[i-1].Date, history.Records[i].Date)
		}
	}
	if pay := history.EstimatedPay(100); pay != 18400 {
		t.Fatalf("expected estimated pay 18400, got %v", pay)
	}
}

func TestReconcileMonthIsIdempotent(t *testing.T) {
	store := memory.New()
	r := NewReconciler(store)
	p := seedProject(t, store, weekdaySchedule("09:00", "17:00", false))
	ctx := context.Background()

	first, err := r.ReconcileMonth(ctx, p.ID, 2024, 2)
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	second, err := r.ReconcileMonth(ctx, p.ID, 2024, 2)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}

	if first.ID != second.ID {
		t.Fatal("reconcile should update the history in place, not create a new one")
	}
	if len(first.Records) != len(second.Records) {
		t.Fatalf("record count changed: %d vs %d", len(first.Records), len(second.Records))
	}
	for i := range first.Records {
		if first.Records[i].ID != second.Records[i].ID {
			t.Fatalf("record %s was recreated instead of updated", first.Records[i].Date)
		}
	}
	if second.TotalHours != first.TotalHours || second.TotalDays != first.TotalDays {
		t.Fatal("totals drifted across idempotent reconciles")
	}
}

func TestReconcileMonthAfterScheduleChange(t *testing.T) {
	store := memory.New()
	r := NewReconciler(store)
	p := seedProject(t, store, weekdaySchedule("09:00", "17:00", false))
	ctx := context.Background()

	if _, err := r.ReconcileMonth(ctx, p.ID, 2024, 1); err != nil {
		t.Fatalf("initial reconcile: %v", err)
	}

	// Shorter days with lunch discount: 9h span minus 1h lunch.
	if _, err := store.UpdateProjectConfig(ctx, core.ProjectConfig{
		ProjectID:  p.ID,
		HourlyRate: 100,
		WorkDays:   weekdaySchedule("08:00", "17:00", true),
	}); err != nil {
		t.Fatalf("update config: %v", err)
	}

	history, err := r.ReconcileMonth(ctx, p.ID, 2024, 1)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if history.TotalHours != 184 {
		t.Fatalf("expected 184 hours (23 days x 8h), got %v", history.TotalHours)
	}
	for _, rec := range history.Records {
		if rec.Enabled && !rec.DiscountLunch {
			t.Fatalf("record %s should carry the new lunch discount", rec.Date)
		}
	}
}

func TestReconcileDayUpdatesRecordAndTotals(t *testing.T) {
	store := memory.New()
	r := NewReconciler(store)
	p := seedProject(t, store, weekdaySchedule("09:00", "17:00", false))
	ctx := context.Background()

	if _, err := r.ReconcileMonth(ctx, p.ID, 2024, 1); err != nil {
		t.Fatalf("reconcile month: %v", err)
	}

	// 2024-01-08 is a Monday. Disable it.
	rec, err := r.ReconcileDay(ctx, p.ID, "2024-01-08", core.DayUpdate{Enabled: false})
	if err != nil {
		t.Fatalf("reconcile day: %v", err)
	}
	if rec.Enabled || rec.Start != nil || rec.End != nil || rec.Duration != 0 {
		t.Fatalf("disabled record should be cleared, got %+v", rec)
	}

	history, err := store.FindMonthlyHistory(ctx, p.ID, 2024, 1)
	if err != nil {
		t.Fatalf("find history: %v", err)
	}
	if history.TotalDays != 22 {
		t.Fatalf("expected 22 days after disabling one, got %d", history.TotalDays)
	}
	if history.TotalHours != 176 {
		t.Fatalf("expected 176 hours after disabling one, got %v", history.TotalHours)
	}

	// Re-enable it with different hours and a lunch discount.
	discount := true
	rec, err = r.ReconcileDay(ctx, p.ID, "2024-01-08", core.DayUpdate{
		Enabled:       true,
		Start:         "07:00",
		End:           "17:00",
		DiscountLunch: &discount,
	})
	if err != nil {
		t.Fatalf("re-enable day: %v", err)
	}
	if rec.Duration != 540 {
		t.Fatalf("expected 540 minutes (10h minus lunch), got %d", rec.Duration)
	}

	history, err = store.FindMonthlyHistory(ctx, p.ID, 2024, 1)
	if err != nil {
		t.Fatalf("find history: %v", err)
	}
	if history.TotalDays != 23 {
		t.Fatalf("expected 23 days again, got %d", history.TotalDays)
	}
	if history.TotalHours != 185 {
		t.Fatalf("expected 185 hours (176 + 9), got %v", history.TotalHours)
	}
}

func TestReconcileDayKeepsStoredLunchFlag(t *testing.T) {
	store := memory.New()
	r := NewReconciler(store)
	p := seedProject(t, store, weekdaySchedule("09:00", "18:00", true))
	ctx := context.Background()

	if _, err := r.ReconcileMonth(ctx, p.ID, 2024, 1); err != nil {
		t.Fatalf("reconcile month: %v", err)
	}

	// No DiscountLunch in the update: the stored flag still applies.
	rec, err := r.ReconcileDay(ctx, p.ID, "2024-01-09", core.DayUpdate{
		Enabled: true,
		Start:   "09:00",
		End:     "17:00",
	})
	if err != nil {
		t.Fatalf("reconcile day: %v", err)
	}
	if !rec.DiscountLunch {
		t.Fatal("stored lunch flag should survive a partial update")
	}
	if rec.Duration != 420 {
		t.Fatalf("expected 420 minutes (8h minus lunch), got %d", rec.Duration)
	}
}

func TestReconcileDayAllowsNegativeDuration(t *testing.T) {
	store := memory.New()
	r := NewReconciler(store)
	p := seedProject(t, store, weekdaySchedule("09:00", "17:00", false))
	ctx := context.Background()

	if _, err := r.ReconcileMonth(ctx, p.ID, 2024, 1); err != nil {
		t.Fatalf("reconcile month: %v", err)
	}

	// Inverted range is stored as-is, not clamped.
	rec, err := r.ReconcileDay(ctx, p.ID, "2024-01-10", core.DayUpdate{
		Enabled: true,
		Start:   "10:00",
		End:     "09:00",
	})
	if err != nil {
		t.Fatalf("reconcile day: %v", err)
	}
	if rec.Duration != -60 {
		t.Fatalf("expected -60 minutes for inverted range, got %d", rec.Duration)
	}
}

func TestReconcileErrors(t *testing.T) {
	store := memory.New()
	r := NewReconciler(store)
	ctx := context.Background()

	if _, err := r.ReconcileMonth(ctx, "missing", 2024, 13); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
	if _, err := r.ReconcileMonth(ctx, "missing", 2024, 1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing config, got %v", err)
	}
	if _, err := r.ReconcileDay(ctx, "missing", "2024-01-01", core.DayUpdate{}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing record, got %v", err)
	}
}
