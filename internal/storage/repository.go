package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"jornada/internal/core"
)

// SQLiteRepository is the durable Store implementation.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- projects ---

func (r *SQLiteRepository) CreateProject(ctx context.Context, p core.Project) (core.Project, error) {
	if err := p.Validate(); err != nil {
		return core.Project{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = core.StatusPlanning
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	const q = `
INSERT INTO projects (id, user_id, name, description, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, p.ID, p.UserID, p.Name, p.Description, string(p.Status), p.CreatedAt, p.UpdatedAt); err != nil {
		return core.Project{}, fmt.Errorf("create project: %w", err)
	}

	slog.InfoContext(ctx, "Project created", "project_id", p.ID, "user_id", p.UserID, "name", p.Name)
	return p, nil
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (core.Project, error) {
	const q = `
SELECT id, user_id, name, description, status, created_at, updated_at
FROM projects WHERE id = ?`
	var p core.Project
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Project{}, core.ErrNotFound
	}
	if err != nil {
		return core.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context, userID, search string, limit, offset int) ([]core.Project, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	pattern := "%" + strings.TrimSpace(search) + "%"

	var total int
	const countQ = `
SELECT COUNT(*) FROM projects WHERE user_id = ? AND (name LIKE ? OR description LIKE ?)`
	if err := r.db.QueryRowContext(ctx, countQ, userID, pattern, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	const q = `
SELECT id, user_id, name, description, status, created_at, updated_at
FROM projects
WHERE user_id = ? AND (name LIKE ? OR description LIKE ?)
ORDER BY created_at DESC
LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, userID, pattern, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]core.Project, 0, limit)
	for rows.Next() {
		var p core.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate projects: %w", err)
	}
	return out, total, nil
}

func (r *SQLiteRepository) ListActiveProjects(ctx context.Context) ([]core.Project, error) {
	const q = `
SELECT id, user_id, name, description, status, created_at, updated_at
FROM projects WHERE status = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q, string(core.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("list active projects: %w", err)
	}
	defer rows.Close()

	var out []core.Project
	for rows.Next() {
		var p core.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateProjectStatus(ctx context.Context, id string, status core.ProjectStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid project status: %s", status)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update project status: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Project deleted", "project_id", id)
	return nil
}

// --- project configs ---

func (r *SQLiteRepository) FindProjectConfig(ctx context.Context, projectID string) (core.ProjectConfig, error) {
	const q = `
SELECT id, project_id, hourly_rate, work_days, created_at, updated_at
FROM project_configs WHERE project_id = ?`
	var (
		cfg  core.ProjectConfig
		days string
	)
	err := r.db.QueryRowContext(ctx, q, projectID).
		Scan(&cfg.ID, &cfg.ProjectID, &cfg.HourlyRate, &days, &cfg.CreatedAt, &cfg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ProjectConfig{}, core.ErrNotFound
	}
	if err != nil {
		return core.ProjectConfig{}, fmt.Errorf("find project config: %w", err)
	}
	if err := json.Unmarshal([]byte(days), &cfg.WorkDays); err != nil {
		return core.ProjectConfig{}, fmt.Errorf("decode work days: %w", err)
	}
	return cfg, nil
}

func (r *SQLiteRepository) CreateProjectConfig(ctx context.Context, cfg core.ProjectConfig) (core.ProjectConfig, error) {
	if err := cfg.Validate(); err != nil {
		return core.ProjectConfig{}, err
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cfg.CreatedAt, cfg.UpdatedAt = now, now

	days, err := json.Marshal(cfg.WorkDays)
	if err != nil {
		return core.ProjectConfig{}, fmt.Errorf("encode work days: %w", err)
	}

	const q = `
INSERT INTO project_configs (id, project_id, hourly_rate, work_days, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, cfg.ID, cfg.ProjectID, cfg.HourlyRate, string(days), cfg.CreatedAt, cfg.UpdatedAt); err != nil {
		return core.ProjectConfig{}, fmt.Errorf("create project config: %w", err)
	}

	slog.InfoContext(ctx, "Project config created", "project_id", cfg.ProjectID, "hourly_rate", cfg.HourlyRate)
	return cfg, nil
}

func (r *SQLiteRepository) UpdateProjectConfig(ctx context.Context, cfg core.ProjectConfig) (core.ProjectConfig, error) {
	if err := cfg.Validate(); err != nil {
		return core.ProjectConfig{}, err
	}
	days, err := json.Marshal(cfg.WorkDays)
	if err != nil {
		return core.ProjectConfig{}, fmt.Errorf("encode work days: %w", err)
	}
	cfg.UpdatedAt = time.Now().UTC()

	const q = `
UPDATE project_configs SET hourly_rate = ?, work_days = ?, updated_at = ?
WHERE project_id = ?`
	res, err := r.db.ExecContext(ctx, q, cfg.HourlyRate, string(days), cfg.UpdatedAt, cfg.ProjectID)
	if err != nil {
		return core.ProjectConfig{}, fmt.Errorf("update project config: %w", err)
	}
	if err := requireRow(res); err != nil {
		return core.ProjectConfig{}, err
	}
	return r.FindProjectConfig(ctx, cfg.ProjectID)
}

func (r *SQLiteRepository) DeleteProjectConfig(ctx context.Context, projectID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM project_configs WHERE project_id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("delete project config: %w", err)
	}
	return requireRow(res)
}

// --- monthly histories ---

func (r *SQLiteRepository) FindMonthlyHistory(ctx context.Context, projectID string, year, month int) (core.MonthlyHistory, error) {
	const q = `
SELECT id, project_id, year, month, total_hours, total_days, created_at, updated_at
FROM monthly_histories WHERE project_id = ? AND year = ? AND month = ?`
	var h core.MonthlyHistory
	err := r.db.QueryRowContext(ctx, q, projectID, year, month).
		Scan(&h.ID, &h.ProjectID, &h.Year, &h.Month, &h.TotalHours, &h.TotalDays, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.MonthlyHistory{}, core.ErrNotFound
	}
	if err != nil {
		return core.MonthlyHistory{}, fmt.Errorf("find monthly history: %w", err)
	}

	h.Records, err = r.ListMonthlyWorkRecords(ctx, projectID, year, month)
	if err != nil {
		return core.MonthlyHistory{}, err
	}
	return h, nil
}

func (r *SQLiteRepository) CreateMonthlyHistory(ctx context.Context, projectID string, year, month int, totalHours float64, totalDays int) (core.MonthlyHistory, error) {
	h := core.MonthlyHistory{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		Year:       year,
		Month:      month,
		TotalHours: totalHours,
		TotalDays:  totalDays,
	}
	now := time.Now().UTC()
	h.CreatedAt, h.UpdatedAt = now, now

	const q = `
INSERT INTO monthly_histories (id, project_id, year, month, total_hours, total_days, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, h.ID, h.ProjectID, h.Year, h.Month, h.TotalHours, h.TotalDays, h.CreatedAt, h.UpdatedAt); err != nil {
		return core.MonthlyHistory{}, fmt.Errorf("create monthly history: %w", err)
	}

	slog.InfoContext(ctx, "Monthly history created",
		"project_id", projectID, "year", year, "month", month)
	return h, nil
}

func (r *SQLiteRepository) UpdateMonthlyHistoryTotals(ctx context.Context, historyID string, totalHours float64, totalDays int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE monthly_histories SET total_hours = ?, total_days = ?, updated_at = ? WHERE id = ?`,
		totalHours, totalDays, time.Now().UTC(), historyID)
	if err != nil {
		return fmt.Errorf("update monthly history totals: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) UpdateMonthlyHistoryTotalsByMonth(ctx context.Context, projectID string, year, month int, totalHours float64, totalDays int) error {
	// Matching-rows update: callers of single-day edits know the tuple,
	// not the history id.
	_, err := r.db.ExecContext(ctx,
		`UPDATE monthly_histories SET total_hours = ?, total_days = ?, updated_at = ?
		 WHERE project_id = ? AND year = ? AND month = ?`,
		totalHours, totalDays, time.Now().UTC(), projectID, year, month)
	if err != nil {
		return fmt.Errorf("update monthly history totals by month: %w", err)
	}
	return nil
}

// --- monthly work records ---

const workRecordCols = `id, monthly_history_id, project_id, year, month, date, day_of_week,
enabled, start_time, end_time, discount_lunch, duration, created_at, updated_at`

func scanWorkRecord(row interface{ Scan(...any) error }) (core.MonthlyWorkRecord, error) {
	var rec core.MonthlyWorkRecord
	err := row.Scan(&rec.ID, &rec.MonthlyHistoryID, &rec.ProjectID, &rec.Year, &rec.Month,
		&rec.Date, &rec.DayOfWeek, &rec.Enabled, &rec.Start, &rec.End,
		&rec.DiscountLunch, &rec.Duration, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}

func (r *SQLiteRepository) FindMonthlyWorkRecord(ctx context.Context, projectID, date string) (core.MonthlyWorkRecord, error) {
	q := `SELECT ` + workRecordCols + ` FROM monthly_work_records WHERE project_id = ? AND date = ?`
	rec, err := scanWorkRecord(r.db.QueryRowContext(ctx, q, projectID, date))
	if errors.Is(err, sql.ErrNoRows) {
		return core.MonthlyWorkRecord{}, core.ErrNotFound
	}
	if err != nil {
		return core.MonthlyWorkRecord{}, fmt.Errorf("find monthly work record: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRepository) GetMonthlyWorkRecord(ctx context.Context, id string) (core.MonthlyWorkRecord, error) {
	q := `SELECT ` + workRecordCols + ` FROM monthly_work_records WHERE id = ?`
	rec, err := scanWorkRecord(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.MonthlyWorkRecord{}, core.ErrNotFound
	}
	if err != nil {
		return core.MonthlyWorkRecord{}, fmt.Errorf("get monthly work record: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRepository) CreateMonthlyWorkRecord(ctx context.Context, rec core.MonthlyWorkRecord) (core.MonthlyWorkRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now

	const q = `
INSERT INTO monthly_work_records
  (id, monthly_history_id, project_id, year, month, date, day_of_week,
   enabled, start_time, end_time, discount_lunch, duration, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.MonthlyHistoryID, rec.ProjectID, rec.Year, rec.Month, rec.Date, rec.DayOfWeek,
		rec.Enabled, rec.Start, rec.End, rec.DiscountLunch, rec.Duration, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return core.MonthlyWorkRecord{}, fmt.Errorf("create monthly work record: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRepository) UpdateMonthlyWorkRecord(ctx context.Context, rec core.MonthlyWorkRecord) error {
	const q = `
UPDATE monthly_work_records
SET monthly_history_id = ?, year = ?, month = ?, day_of_week = ?,
    enabled = ?, start_time = ?, end_time = ?, discount_lunch = ?, duration = ?, updated_at = ?
WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		rec.MonthlyHistoryID, rec.Year, rec.Month, rec.DayOfWeek,
		rec.Enabled, rec.Start, rec.End, rec.DiscountLunch, rec.Duration, time.Now().UTC(), rec.ID)
	if err != nil {
		return fmt.Errorf("update monthly work record: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListMonthlyWorkRecords(ctx context.Context, projectID string, year, month int) ([]core.MonthlyWorkRecord, error) {
	q := `SELECT ` + workRecordCols + `
FROM monthly_work_records
WHERE project_id = ? AND year = ? AND month = ?
ORDER BY date ASC`
	rows, err := r.db.QueryContext(ctx, q, projectID, year, month)
	if err != nil {
		return nil, fmt.Errorf("list monthly work records: %w", err)
	}
	defer rows.Close()

	var out []core.MonthlyWorkRecord
	for rows.Next() {
		rec, err := scanWorkRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan monthly work record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// --- tasks ---

func (r *SQLiteRepository) CreateTask(ctx context.Context, t core.Task) (core.Task, error) {
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = core.TaskTodo
	}
	t.CreatedAt = time.Now().UTC()

	const q = `
INSERT INTO tasks (id, project_id, title, description, status, created_at)
VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, t.ID, t.ProjectID, t.Title, t.Description, string(t.Status), t.CreatedAt); err != nil {
		return core.Task{}, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, projectID string) ([]core.Task, error) {
	const q = `
SELECT id, project_id, title, description, status, created_at
FROM tasks WHERE project_id = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []core.Task
	for rows.Next() {
		var t core.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateTaskStatus(ctx context.Context, id string, status core.TaskStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid task status: %s", status)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
