package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

const (
	StatusActive    ProjectStatus = "active"
	StatusInactive  ProjectStatus = "inactive"
	StatusPlanning  ProjectStatus = "planning"
	StatusCompleted ProjectStatus = "completed"
)

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "inprogress"
	TaskDone       TaskStatus = "done"
)

// DateLayout is the canonical persisted date format (no timezone drift).
const DateLayout = "2006-01-02"

// TimeLayout is the canonical persisted time-of-day format, 24h.
const TimeLayout = "15:04"

type (
	Weekday       string
	ProjectStatus string
	TaskStatus    string

	// Project is a user-owned unit of tracked work.
	Project struct {
		ID          string
		UserID      string
		Name        string
		Description string
		Status      ProjectStatus
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// WorkDay is one weekday's work-hours configuration.
	WorkDay struct {
		Day           Weekday `json:"day"`
		Enabled       bool    `json:"enabled"`
		Start         string  `json:"start"` // "HH:MM"
		End           string  `json:"end"`   // "HH:MM"
		DiscountLunch bool    `json:"discountLunch"`
	}

	// ProjectConfig holds a project's weekly schedule and hourly rate.
	// WorkDays carries exactly one entry per weekday.
	ProjectConfig struct {
		ID         string
		ProjectID  string
		HourlyRate float64
		WorkDays   []WorkDay
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	// MonthlyWorkRecord is one materialized calendar day of a project's month.
	// Start and End are nil when the day is not a scheduled work day.
	MonthlyWorkRecord struct {
		ID               string
		ProjectID        string
		MonthlyHistoryID string
		Year             int
		Month            int
		Date             string // "YYYY-MM-DD"
		DayOfWeek        string
		Enabled          bool
		Start            *string
		End              *string
		DiscountLunch    bool
		Duration         int // minutes; may be negative for inverted ranges
		CreatedAt        time.Time
		UpdatedAt        time.Time
	}

	// MonthlyHistory is the monthly aggregate for one (project, year, month).
	// TotalHours and TotalDays are always recomputed from the full record set,
	// never patched incrementally.
	MonthlyHistory struct {
		ID         string
		ProjectID  string
		Year       int
		Month      int
		TotalHours float64
		TotalDays  int
		Records    []MonthlyWorkRecord
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	// DayRecord is a freshly computed (not yet persisted) per-day record,
	// the reconciler's input unit.
	DayRecord struct {
		Date          string // "YYYY-MM-DD"
		DayOfWeek     string
		Enabled       bool
		Start         *string
		End           *string
		DiscountLunch bool
		Duration      int
	}

	// DayUpdate is the partial update applied to a single work record.
	// DiscountLunch is optional: nil leaves the stored flag untouched.
	DayUpdate struct {
		Enabled       bool
		Start         string
		End           string
		DiscountLunch *bool
	}

	Task struct {
		ID          string
		ProjectID   string
		Title       string
		Description string
		Status      TaskStatus
		CreatedAt   time.Time
	}

	User struct {
		ID    string
		Name  string
		Email string
	}
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidTime    = errors.New("invalid time of day")
	ErrInvalidMonth   = errors.New("invalid month")
	ErrInvalidWeekday = errors.New("invalid weekday")
	ErrMissingUser    = errors.New("missing user id")
	ErrMissingProject = errors.New("missing project id")
	ErrEmptyName      = errors.New("empty project name")
	ErrInvalidRate    = errors.New("invalid hourly rate")
)

func (w Weekday) IsValid() bool {
	switch w {
	case Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday:
		return true
	default:
		return false
	}
}

func (s ProjectStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPlanning, StatusCompleted:
		return true
	default:
		return false
	}
}

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	default:
		return false
	}
}

// ParseTimeOfDay converts an "HH:MM" string to minutes since midnight.
func ParseTimeOfDay(s string) (int, error) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ValidateMonth checks that month is in the 1-12 range.
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	return nil
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return ErrMissingUser
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > 200 {
		return errors.New("project name too long (max 200 characters)")
	}
	if p.Status != "" && !p.Status.IsValid() {
		return fmt.Errorf("invalid project status: %s", p.Status)
	}
	return nil
}

func (wd WorkDay) Validate() error {
	if !wd.Day.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidWeekday, wd.Day)
	}
	if _, err := ParseTimeOfDay(wd.Start); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if _, err := ParseTimeOfDay(wd.End); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	return nil
}

func (c ProjectConfig) Validate() error {
	if strings.TrimSpace(c.ProjectID) == "" {
		return ErrMissingProject
	}
	if c.HourlyRate < 0 {
		return ErrInvalidRate
	}
	if len(c.WorkDays) != 7 {
		return fmt.Errorf("work days must cover all 7 weekdays, got %d", len(c.WorkDays))
	}
	seen := make(map[Weekday]bool, 7)
	for _, wd := range c.WorkDays {
		if err := wd.Validate(); err != nil {
			return fmt.Errorf("day %s: %w", wd.Day, err)
		}
		if seen[wd.Day] {
			return fmt.Errorf("duplicate weekday entry: %s", wd.Day)
		}
		seen[wd.Day] = true
	}
	return nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ProjectID) == "" {
		return ErrMissingProject
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("empty task title")
	}
	if t.Status != "" && !t.Status.IsValid() {
		return fmt.Errorf("invalid task status: %s", t.Status)
	}
	return nil
}

// EstimatedPay returns hours worked times the given hourly rate.
func (h MonthlyHistory) EstimatedPay(hourlyRate float64) float64 {
	return h.TotalHours * hourlyRate
}
