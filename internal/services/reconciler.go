package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"jornada/internal/calendar"
	"jornada/internal/core"
	"jornada/internal/schedule"
	"jornada/internal/storage"
)

// maxDayWriters caps the per-day upsert fan-out of a month rebuild.
const maxDayWriters = 8

// Reconciler rebuilds a project's monthly ledger from its weekly schedule.
// Reconciliation is idempotent: running it twice on an unchanged schedule
// produces the same records and totals.
type Reconciler struct {
	store    storage.Store
	resolver *schedule.Resolver
}

func NewReconciler(store storage.Store) *Reconciler {
	return &Reconciler{
		store:    store,
		resolver: schedule.NewResolver(),
	}
}

// BuildMonthRecords projects the weekly schedule onto every calendar day of
// the month. Disabled days are materialized too, with nil times and zero
// duration, so the ledger always covers the full month.
func (r *Reconciler) BuildMonthRecords(workDays []core.WorkDay, year, month int) ([]core.DayRecord, error) {
	days, err := calendar.ListDaysInMonth(month, year)
	if err != nil {
		return nil, err
	}

	out := make([]core.DayRecord, 0, len(days))
	for _, day := range days {
		resolved, err := r.resolver.ResolveDay(workDays, day.DayOfWeek)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", day.DayOfWeek, err)
		}

		rec := core.DayRecord{
			Date:      day.Date.Format(core.DateLayout),
			DayOfWeek: day.DayOfWeek,
			Enabled:   resolved.Enabled,
		}
		if resolved.Enabled {
			duration, err := schedule.DurationMinutes(resolved.Start, resolved.End, resolved.DiscountLunch)
			if err != nil {
				return nil, fmt.Errorf("duration for %s: %w", rec.Date, err)
			}
			start, end := resolved.Start, resolved.End
			rec.Start = &start
			rec.End = &end
			rec.DiscountLunch = resolved.DiscountLunch
			rec.Duration = duration
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReconcileMonth rebuilds every record of one project month from the current
// schedule and refreshes the monthly aggregate. The returned history carries
// the full record set ordered by date.
func (r *Reconciler) ReconcileMonth(ctx context.Context, projectID string, year, month int) (core.MonthlyHistory, error) {
	if err := core.ValidateMonth(month); err != nil {
		return core.MonthlyHistory{}, err
	}

	cfg, err := r.store.FindProjectConfig(ctx, projectID)
	if err != nil {
		return core.MonthlyHistory{}, fmt.Errorf("load project config: %w", err)
	}

	records, err := r.BuildMonthRecords(cfg.WorkDays, year, month)
	if err != nil {
		return core.MonthlyHistory{}, err
	}

	totalHours, totalDays := monthTotals(records)

	history, err := r.upsertHistory(ctx, projectID, year, month, totalHours, totalDays)
	if err != nil {
		return core.MonthlyHistory{}, err
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxDayWriters)
	for _, rec := range records {
		g.Go(func() error {
			return r.upsertDayRecord(gctx, projectID, history.ID, year, month, rec)
		})
	}
	if err := g.Wait(); err != nil {
		return core.MonthlyHistory{}, fmt.Errorf("write month records: %w", err)
	}

	slog.InfoContext(ctx, "Month reconciled",
		"project_id", projectID,
		"year", year,
		"month", month,
		"total_hours", totalHours,
		"total_days", totalDays,
		"duration", time.Since(start))

	return r.store.FindMonthlyHistory(ctx, projectID, year, month)
}

// ReconcileDay applies a single-day edit to an existing record and brings the
// monthly aggregate back in line with the stored record set.
func (r *Reconciler) ReconcileDay(ctx context.Context, projectID, date string, upd core.DayUpdate) (core.MonthlyWorkRecord, error) {
	rec, err := r.store.FindMonthlyWorkRecord(ctx, projectID, date)
	if err != nil {
		return core.MonthlyWorkRecord{}, fmt.Errorf("find record for %s: %w", date, err)
	}

	rec.Enabled = upd.Enabled
	if upd.DiscountLunch != nil {
		rec.DiscountLunch = *upd.DiscountLunch
	}
	if upd.Enabled {
		duration, err := schedule.DurationMinutes(upd.Start, upd.End, rec.DiscountLunch)
		if err != nil {
			return core.MonthlyWorkRecord{}, err
		}
		start, end := upd.Start, upd.End
		rec.Start = &start
		rec.End = &end
		rec.Duration = duration
	} else {
		rec.Start = nil
		rec.End = nil
		rec.Duration = 0
	}

	if err := r.store.UpdateMonthlyWorkRecord(ctx, rec); err != nil {
		return core.MonthlyWorkRecord{}, fmt.Errorf("update record: %w", err)
	}

	stored, err := r.store.ListMonthlyWorkRecords(ctx, projectID, rec.Year, rec.Month)
	if err != nil {
		return core.MonthlyWorkRecord{}, fmt.Errorf("list month records: %w", err)
	}
	totalHours, totalDays := storedTotals(stored)

	if err := r.store.UpdateMonthlyHistoryTotalsByMonth(ctx, projectID, rec.Year, rec.Month, totalHours, totalDays); err != nil {
		return core.MonthlyWorkRecord{}, fmt.Errorf("refresh monthly totals: %w", err)
	}

	slog.InfoContext(ctx, "Day reconciled",
		"project_id", projectID,
		"record_date", date,
		"enabled", rec.Enabled,
		"duration_minutes", rec.Duration)

	return rec, nil
}

func (r *Reconciler) upsertHistory(ctx context.Context, projectID string, year, month int, totalHours float64, totalDays int) (core.MonthlyHistory, error) {
	history, err := r.store.FindMonthlyHistory(ctx, projectID, year, month)
	if errors.Is(err, core.ErrNotFound) {
		return r.store.CreateMonthlyHistory(ctx, projectID, year, month, totalHours, totalDays)
	}
	if err != nil {
		return core.MonthlyHistory{}, fmt.Errorf("find monthly history: %w", err)
	}
	if err := r.store.UpdateMonthlyHistoryTotals(ctx, history.ID, totalHours, totalDays); err != nil {
		return core.MonthlyHistory{}, err
	}
	history.TotalHours = totalHours
	history.TotalDays = totalDays
	return history, nil
}

func (r *Reconciler) upsertDayRecord(ctx context.Context, projectID, historyID string, year, month int, day core.DayRecord) error {
	existing, err := r.store.FindMonthlyWorkRecord(ctx, projectID, day.Date)
	if errors.Is(err, core.ErrNotFound) {
		_, err := r.store.CreateMonthlyWorkRecord(ctx, core.MonthlyWorkRecord{
			ProjectID:        projectID,
			MonthlyHistoryID: historyID,
			Year:             year,
			Month:            month,
			Date:             day.Date,
			DayOfWeek:        day.DayOfWeek,
			Enabled:          day.Enabled,
			Start:            day.Start,
			End:              day.End,
			DiscountLunch:    day.DiscountLunch,
			Duration:         day.Duration,
		})
		if err != nil {
			return fmt.Errorf("create record %s: %w", day.Date, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("find record %s: %w", day.Date, err)
	}

	existing.MonthlyHistoryID = historyID
	existing.DayOfWeek = day.DayOfWeek
	existing.Enabled = day.Enabled
	existing.Start = day.Start
	existing.End = day.End
	existing.DiscountLunch = day.DiscountLunch
	existing.Duration = day.Duration
	if err := r.store.UpdateMonthlyWorkRecord(ctx, existing); err != nil {
		return fmt.Errorf("update record %s: %w", day.Date, err)
	}
	return nil
}

// monthTotals sums freshly computed day records.
func monthTotals(records []core.DayRecord) (hours float64, days int) {
	var minutes int
	for _, rec := range records {
		if !rec.Enabled {
			continue
		}
		minutes += rec.Duration
		days++
	}
	return float64(minutes) / 60.0, days
}

// storedTotals sums persisted records after a single-day edit.
func storedTotals(records []core.MonthlyWorkRecord) (hours float64, days int) {
	var minutes int
	for _, rec := range records {
		if !rec.Enabled {
			continue
		}
		minutes += rec.Duration
		days++
	}
	return float64(minutes) / 60.0, days
}
