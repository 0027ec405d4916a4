package storage

import (
	"context"

	"jornada/internal/core"
)

// Store is the persistence port the services layer depends on. The SQLite
// repository is the production implementation; the memory subpackage backs
// dev mode and tests.
type Store interface {
	// Projects
	CreateProject(ctx context.Context, p core.Project) (core.Project, error)
	GetProject(ctx context.Context, id string) (core.Project, error)
	ListProjects(ctx context.Context, userID, search string, limit, offset int) ([]core.Project, int, error)
	ListActiveProjects(ctx context.Context) ([]core.Project, error)
	UpdateProjectStatus(ctx context.Context, id string, status core.ProjectStatus) error
	DeleteProject(ctx context.Context, id string) error

	// Project configuration
	FindProjectConfig(ctx context.Context, projectID string) (core.ProjectConfig, error)
	CreateProjectConfig(ctx context.Context, cfg core.ProjectConfig) (core.ProjectConfig, error)
	UpdateProjectConfig(ctx context.Context, cfg core.ProjectConfig) (core.ProjectConfig, error)
	DeleteProjectConfig(ctx context.Context, projectID string) error

	// Monthly aggregates
	FindMonthlyHistory(ctx context.Context, projectID string, year, month int) (core.MonthlyHistory, error)
	CreateMonthlyHistory(ctx context.Context, projectID string, year, month int, totalHours float64, totalDays int) (core.MonthlyHistory, error)
	UpdateMonthlyHistoryTotals(ctx context.Context, historyID string, totalHours float64, totalDays int) error
	UpdateMonthlyHistoryTotalsByMonth(ctx context.Context, projectID string, year, month int, totalHours float64, totalDays int) error

	// Per-day work records
	FindMonthlyWorkRecord(ctx context.Context, projectID, date string) (core.MonthlyWorkRecord, error)
	GetMonthlyWorkRecord(ctx context.Context, id string) (core.MonthlyWorkRecord, error)
	CreateMonthlyWorkRecord(ctx context.Context, rec core.MonthlyWorkRecord) (core.MonthlyWorkRecord, error)
	UpdateMonthlyWorkRecord(ctx context.Context, rec core.MonthlyWorkRecord) error
	ListMonthlyWorkRecords(ctx context.Context, projectID string, year, month int) ([]core.MonthlyWorkRecord, error)

	// Tasks
	CreateTask(ctx context.Context, t core.Task) (core.Task, error)
	ListTasks(ctx context.Context, projectID string) ([]core.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status core.TaskStatus) error
	DeleteTask(ctx context.Context, id string) error

	Close() error
}
