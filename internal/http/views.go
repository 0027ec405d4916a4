package http

import (
	"time"

	"jornada/internal/core"
)

// JSON views of the domain types. The domain structs carry no wire tags on
// purpose; the API shape is owned here.

type projectView struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type projectListView struct {
	Projects []projectView `json:"projects"`
	Total    int           `json:"total"`
	Limit    int           `json:"limit"`
	Offset   int           `json:"offset"`
}

type configView struct {
	ID         string         `json:"id"`
	ProjectID  string         `json:"projectId"`
	HourlyRate float64        `json:"hourlyRate"`
	WorkDays   []core.WorkDay `json:"workDays"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

type recordView struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	DayOfWeek     string  `json:"dayOfWeek"`
	Enabled       bool    `json:"enabled"`
	Start         *string `json:"start"`
	End           *string `json:"end"`
	DiscountLunch bool    `json:"discountLunch"`
	Duration      int     `json:"duration"`
}

type historyView struct {
	ID           string       `json:"id"`
	ProjectID    string       `json:"projectId"`
	Year         int          `json:"year"`
	Month        int          `json:"month"`
	TotalHours   float64      `json:"totalHours"`
	TotalDays    int          `json:"totalDays"`
	EstimatedPay *float64     `json:"estimatedPay,omitempty"`
	Records      []recordView `json:"records"`
}

type taskView struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toProjectView(p core.Project) projectView {
	return projectView{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toConfigView(c core.ProjectConfig) configView {
	return configView{
		ID:         c.ID,
		ProjectID:  c.ProjectID,
		HourlyRate: c.HourlyRate,
		WorkDays:   c.WorkDays,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func toRecordView(rec core.MonthlyWorkRecord) recordView {
	return recordView{
		ID:            rec.ID,
		Date:          rec.Date,
		DayOfWeek:     rec.DayOfWeek,
		Enabled:       rec.Enabled,
		Start:         rec.Start,
		End:           rec.End,
		DiscountLunch: rec.DiscountLunch,
		Duration:      rec.Duration,
	}
}

// toHistoryView renders the aggregate. hourlyRate is optional: pass a nil
// pointer when no schedule exists and the estimate is omitted.
func toHistoryView(h core.MonthlyHistory, hourlyRate *float64) historyView {
	records := make([]recordView, 0, len(h.Records))
	for _, rec := range h.Records {
		records = append(records, toRecordView(rec))
	}

	v := historyView{
		ID:         h.ID,
		ProjectID:  h.ProjectID,
		Year:       h.Year,
		Month:      h.Month,
		TotalHours: h.TotalHours,
		TotalDays:  h.TotalDays,
		Records:    records,
	}
	if hourlyRate != nil {
		pay := h.EstimatedPay(*hourlyRate)
		v.EstimatedPay = &pay
	}
	return v
}

func toTaskView(t core.Task) taskView {
	return taskView{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
	}
}
