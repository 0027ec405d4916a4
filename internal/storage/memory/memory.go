package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"jornada/internal/core"
)

// Store is a mutex-guarded in-memory implementation of storage.Store,
// used for dev mode and tests.
type Store struct {
	mu        sync.Mutex
	projects  map[string]core.Project
	configs   map[string]core.ProjectConfig // keyed by project id
	histories map[string]core.MonthlyHistory
	records   map[string]core.MonthlyWorkRecord
	tasks     map[string]core.Task
}

func New() *Store {
	return &Store{
		projects:  map[string]core.Project{},
		configs:   map[string]core.ProjectConfig{},
		histories: map[string]core.MonthlyHistory{},
		records:   map[string]core.MonthlyWorkRecord{},
		tasks:     map[string]core.Task{},
	}
}

func (s *Store) Close() error { return nil }

// --- projects ---

func (s *Store) CreateProject(_ context.Context, p core.Project) (core.Project, error) {
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

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p
	return p, nil
}

func (s *Store) GetProject(_ context.Context, id string) (core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return core.Project{}, core.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListProjects(_ context.Context, userID, search string, limit, offset int) ([]core.Project, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	needle := strings.ToLower(strings.TrimSpace(search))

	s.mu.Lock()
	defer s.mu.Unlock()

	var all []core.Project
	for _, p := range s.projects {
		if p.UserID != userID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return append([]core.Project(nil), all[offset:end]...), total, nil
}

func (s *Store) ListActiveProjects(_ context.Context) ([]core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Project
	for _, p := range s.projects {
		if p.Status == core.StatusActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateProjectStatus(_ context.Context, id string, status core.ProjectStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid project status: %s", status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return core.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	s.projects[id] = p
	return nil
}

func (s *Store) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.projects, id)
	delete(s.configs, id)
	for hid, h := range s.histories {
		if h.ProjectID == id {
			delete(s.histories, hid)
		}
	}
	for rid, rec := range s.records {
		if rec.ProjectID == id {
			delete(s.records, rid)
		}
	}
	for tid, t := range s.tasks {
		if t.ProjectID == id {
			delete(s.tasks, tid)
		}
	}
	return nil
}

// --- project configs ---

func (s *Store) FindProjectConfig(_ context.Context, projectID string) (core.ProjectConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.configs[projectID]
	if !ok {
		return core.ProjectConfig{}, core.ErrNotFound
	}
	return cfg, nil
}

func (s *Store) CreateProjectConfig(_ context.Context, cfg core.ProjectConfig) (core.ProjectConfig, error) {
	if err := cfg.Validate(); err != nil {
		return core.ProjectConfig{}, err
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cfg.CreatedAt, cfg.UpdatedAt = now, now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configs[cfg.ProjectID]; ok {
		return core.ProjectConfig{}, fmt.Errorf("config already exists for project %s", cfg.ProjectID)
	}
	s.configs[cfg.ProjectID] = cfg
	return cfg, nil
}

func (s *Store) UpdateProjectConfig(_ context.Context, cfg core.ProjectConfig) (core.ProjectConfig, error) {
	if err := cfg.Validate(); err != nil {
		return core.ProjectConfig{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.configs[cfg.ProjectID]
	if !ok {
		return core.ProjectConfig{}, core.ErrNotFound
	}
	cfg.ID = old.ID
	cfg.CreatedAt = old.CreatedAt
	cfg.UpdatedAt = time.Now().UTC()
	s.configs[cfg.ProjectID] = cfg
	return cfg, nil
}

func (s *Store) DeleteProjectConfig(_ context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configs[projectID]; !ok {
		return core.ErrNotFound
	}
	delete(s.configs, projectID)
	return nil
}

// --- monthly histories ---

func (s *Store) FindMonthlyHistory(_ context.Context, projectID string, year, month int) (core.MonthlyHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.histories {
		if h.ProjectID == projectID && h.Year == year && h.Month == month {
			h.Records = s.recordsForMonthLocked(projectID, year, month)
			return h, nil
		}
	}
	return core.MonthlyHistory{}, core.ErrNotFound
}

func (s *Store) CreateMonthlyHistory(_ context.Context, projectID string, year, month int, totalHours float64, totalDays int) (core.MonthlyHistory, error) {
	now := time.Now().UTC()
	h := core.MonthlyHistory{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		Year:       year,
		Month:      month,
		TotalHours: totalHours,
		TotalDays:  totalDays,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.histories {
		if existing.ProjectID == projectID && existing.Year == year && existing.Month == month {
			return core.MonthlyHistory{}, fmt.Errorf("history already exists for %s %d-%d", projectID, year, month)
		}
	}
	s.histories[h.ID] = h
	return h, nil
}

func (s *Store) UpdateMonthlyHistoryTotals(_ context.Context, historyID string, totalHours float64, totalDays int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.histories[historyID]
	if !ok {
		return core.ErrNotFound
	}
	h.TotalHours = totalHours
	h.TotalDays = totalDays
	h.UpdatedAt = time.Now().UTC()
	s.histories[historyID] = h
	return nil
}

func (s *Store) UpdateMonthlyHistoryTotalsByMonth(_ context.Context, projectID string, year, month int, totalHours float64, totalDays int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, h := range s.histories {
		if h.ProjectID == projectID && h.Year == year && h.Month == month {
			h.TotalHours = totalHours
			h.TotalDays = totalDays
			h.UpdatedAt = time.Now().UTC()
			s.histories[id] = h
		}
	}
	return nil
}

// --- monthly work records ---

func (s *Store) FindMonthlyWorkRecord(_ context.Context, projectID, date string) (core.MonthlyWorkRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.ProjectID == projectID && rec.Date == date {
			return rec, nil
		}
	}
	return core.MonthlyWorkRecord{}, core.ErrNotFound
}

func (s *Store) GetMonthlyWorkRecord(_ context.Context, id string) (core.MonthlyWorkRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return core.MonthlyWorkRecord{}, core.ErrNotFound
	}
	return rec, nil
}

func (s *Store) CreateMonthlyWorkRecord(_ context.Context, rec core.MonthlyWorkRecord) (core.MonthlyWorkRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.records {
		if existing.ProjectID == rec.ProjectID && existing.Date == rec.Date {
			return core.MonthlyWorkRecord{}, fmt.Errorf("record already exists for %s on %s", rec.ProjectID, rec.Date)
		}
	}
	s.records[rec.ID] = rec
	return rec, nil
}

func (s *Store) UpdateMonthlyWorkRecord(_ context.Context, rec core.MonthlyWorkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.records[rec.ID]
	if !ok {
		return core.ErrNotFound
	}
	rec.ProjectID = old.ProjectID
	rec.Date = old.Date
	rec.CreatedAt = old.CreatedAt
	rec.UpdatedAt = time.Now().UTC()
	s.records[rec.ID] = rec
	return nil
}

func (s *Store) ListMonthlyWorkRecords(_ context.Context, projectID string, year, month int) ([]core.MonthlyWorkRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordsForMonthLocked(projectID, year, month), nil
}

func (s *Store) recordsForMonthLocked(projectID string, year, month int) []core.MonthlyWorkRecord {
	var out []core.MonthlyWorkRecord
	for _, rec := range s.records {
		if rec.ProjectID == projectID && rec.Year == year && rec.Month == month {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// --- tasks ---

func (s *Store) CreateTask(_ context.Context, t core.Task) (core.Task, error) {
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

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
	return t, nil
}

func (s *Store) ListTasks(_ context.Context, projectID string) ([]core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Task
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateTaskStatus(_ context.Context, id string, status core.TaskStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid task status: %s", status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return core.ErrNotFound
	}
	t.Status = status
	s.tasks[id] = t
	return nil
}

func (s *Store) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}
