package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"jornada/internal/core"
	"jornada/internal/schedule"
	"jornada/internal/storage"
)

// ReconcilePublisher hands month rebuilds off to a worker. The AMQP client
// is the production implementation.
type ReconcilePublisher interface {
	PublishReconcile(ctx context.Context, projectID string, year, month int) error
}

// ProjectService orchestrates project operations across storage and AMQP.
// Schedule changes reconcile the current month synchronously and fan the
// rest out through the publisher.
type ProjectService struct {
	store      storage.Store
	publisher  ReconcilePublisher
	reconciler *Reconciler
}

func NewProjectService(store storage.Store, publisher ReconcilePublisher) *ProjectService {
	return &ProjectService{
		store:      store,
		publisher:  publisher,
		reconciler: NewReconciler(store),
	}
}

func (s *ProjectService) Reconciler() *Reconciler {
	return s.reconciler
}

// --- projects ---

func (s *ProjectService) CreateProject(ctx context.Context, userID, name, description string) (core.Project, error) {
	return s.store.CreateProject(ctx, core.Project{
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	})
}

// GetProject returns the project only when it belongs to userID. A foreign
// project reads as not found, never as forbidden.
func (s *ProjectService) GetProject(ctx context.Context, userID, id string) (core.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return core.Project{}, err
	}
	if p.UserID != userID {
		return core.Project{}, core.ErrNotFound
	}
	return p, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, userID, search string, limit, offset int) ([]core.Project, int, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, 0, core.ErrMissingUser
	}
	return s.store.ListProjects(ctx, userID, search, limit, offset)
}

func (s *ProjectService) UpdateProjectStatus(ctx context.Context, userID, id string, status core.ProjectStatus) error {
	if _, err := s.GetProject(ctx, userID, id); err != nil {
		return err
	}
	return s.store.UpdateProjectStatus(ctx, id, status)
}

func (s *ProjectService) DeleteProject(ctx context.Context, userID, id string) error {
	if _, err := s.GetProject(ctx, userID, id); err != nil {
		return err
	}
	return s.store.DeleteProject(ctx, id)
}

// --- schedule configuration ---

func (s *ProjectService) GetProjectConfig(ctx context.Context, userID, projectID string) (core.ProjectConfig, error) {
	if _, err := s.GetProject(ctx, userID, projectID); err != nil {
		return core.ProjectConfig{}, err
	}
	return s.store.FindProjectConfig(ctx, projectID)
}

// SaveProjectConfig creates or replaces the project's weekly schedule. On
// success the current month is reconciled in-process so the caller sees
// fresh numbers immediately, and a message is published for the worker to
// re-run it against a live queue.
func (s *ProjectService) SaveProjectConfig(ctx context.Context, userID string, cfg core.ProjectConfig) (core.ProjectConfig, error) {
	if _, err := s.GetProject(ctx, userID, cfg.ProjectID); err != nil {
		return core.ProjectConfig{}, err
	}

	// Inverted ranges are stored as-is and surface as negative durations;
	// warn so the entry can be corrected.
	for _, wd := range cfg.WorkDays {
		if !wd.Enabled {
			continue
		}
		if minutes, err := schedule.DurationMinutes(wd.Start, wd.End, false); err == nil && minutes <= 0 {
			slog.WarnContext(ctx, "Work day has start at or after end",
				"project_id", cfg.ProjectID,
				"day", wd.Day,
				"start", wd.Start,
				"end", wd.End)
		}
	}

	saved, err := s.upsertConfig(ctx, cfg)
	if err != nil {
		return core.ProjectConfig{}, err
	}

	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if _, err := s.reconciler.ReconcileMonth(ctx, cfg.ProjectID, year, month); err != nil {
		slog.ErrorContext(ctx, "Failed to reconcile current month after config change",
			"project_id", cfg.ProjectID, "error", err)
		// Schedule is saved; the worker retries via the queue.
	}
	s.publishReconcile(ctx, cfg.ProjectID, year, month)

	return saved, nil
}

func (s *ProjectService) upsertConfig(ctx context.Context, cfg core.ProjectConfig) (core.ProjectConfig, error) {
	_, err := s.store.FindProjectConfig(ctx, cfg.ProjectID)
	if errors.Is(err, core.ErrNotFound) {
		return s.store.CreateProjectConfig(ctx, cfg)
	}
	if err != nil {
		return core.ProjectConfig{}, fmt.Errorf("find project config: %w", err)
	}
	return s.store.UpdateProjectConfig(ctx, cfg)
}

func (s *ProjectService) publishReconcile(ctx context.Context, projectID string, year, month int) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Publisher not available, skipping reconcile message",
			"project_id", projectID)
		return
	}
	if err := s.publisher.PublishReconcile(ctx, projectID, year, month); err != nil {
		slog.ErrorContext(ctx, "Failed to publish reconcile message",
			"project_id", projectID, "year", year, "month", month, "error", err)
		// Don't fail the request, the config is saved locally.
	}
}

// --- monthly history ---

// GetMonthlyHistory returns the stored aggregate for one month, or
// core.ErrNotFound when the month was never reconciled.
func (s *ProjectService) GetMonthlyHistory(ctx context.Context, userID, projectID string, year, month int) (core.MonthlyHistory, error) {
	if err := core.ValidateMonth(month); err != nil {
		return core.MonthlyHistory{}, err
	}
	if _, err := s.GetProject(ctx, userID, projectID); err != nil {
		return core.MonthlyHistory{}, err
	}
	return s.store.FindMonthlyHistory(ctx, projectID, year, month)
}

// GenerateMonthlyHistory reconciles the month on demand.
func (s *ProjectService) GenerateMonthlyHistory(ctx context.Context, userID, projectID string, year, month int) (core.MonthlyHistory, error) {
	if _, err := s.GetProject(ctx, userID, projectID); err != nil {
		return core.MonthlyHistory{}, err
	}
	return s.reconciler.ReconcileMonth(ctx, projectID, year, month)
}

// UpdateWorkDay applies a single-day edit.
func (s *ProjectService) UpdateWorkDay(ctx context.Context, userID, projectID, date string, upd core.DayUpdate) (core.MonthlyWorkRecord, error) {
	if _, err := s.GetProject(ctx, userID, projectID); err != nil {
		return core.MonthlyWorkRecord{}, err
	}
	if _, err := time.Parse(core.DateLayout, date); err != nil {
		return core.MonthlyWorkRecord{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return s.reconciler.ReconcileDay(ctx, projectID, date, upd)
}

// --- tasks ---

func (s *ProjectService) CreateTask(ctx context.Context, userID string, t core.Task) (core.Task, error) {
	if _, err := s.GetProject(ctx, userID, t.ProjectID); err != nil {
		return core.Task{}, err
	}
	return s.store.CreateTask(ctx, t)
}

func (s *ProjectService) ListTasks(ctx context.Context, userID, projectID string) ([]core.Task, error) {
	if _, err := s.GetProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.store.ListTasks(ctx, projectID)
}

func (s *ProjectService) UpdateTaskStatus(ctx context.Context, id string, status core.TaskStatus) error {
	return s.store.UpdateTaskStatus(ctx, id, status)
}

func (s *ProjectService) DeleteTask(ctx context.Context, id string) error {
	return s.store.DeleteTask(ctx, id)
}

// Close releases the underlying store.
func (s *ProjectService) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
