package http

import (
	"fmt"
	"net/http"
	"time"

	"jornada/internal/core"
)

type updateWorkDayRequest struct {
	Date          string `json:"date"`
	Enabled       bool   `json:"enabled"`
	Start         string `json:"start"`
	End           string `json:"end"`
	DiscountLunch *bool  `json:"discountLunch"`
}

func historyKey(userID, projectID string, year, month int) string {
	return fmt.Sprintf("%s/%s/%04d-%02d", userID, projectID, year, month)
}

func (s *Server) invalidateHistory(userID, projectID string, year, month int) {
	s.historyCache.Delete(historyKey(userID, projectID, year, month))
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	projectID := r.PathValue("id")
	year, month := parseYearMonth(r)

	key := historyKey(uid, projectID, year, month)
	if cached, ok := s.historyCache.Get(key); ok {
		writeJSON(w, http.StatusOK, s.historyResponse(r, uid, cached))
		return
	}

	h, err := s.svc.GetMonthlyHistory(r.Context(), uid, projectID, year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.historyCache.Set(key, h)
	writeJSON(w, http.StatusOK, s.historyResponse(r, uid, h))
}

func (s *Server) handleGenerateHistory(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	projectID := r.PathValue("id")
	year, month := parseYearMonth(r)

	h, err := s.svc.GenerateMonthlyHistory(r.Context(), uid, projectID, year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateHistory(uid, projectID, year, month)
	writeJSON(w, http.StatusCreated, s.historyResponse(r, uid, h))
}

func (s *Server) handleUpdateWorkDay(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateWorkDayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	projectID := r.PathValue("id")
	rec, err := s.svc.UpdateWorkDay(r.Context(), uid, projectID, req.Date, core.DayUpdate{
		Enabled:       req.Enabled,
		Start:         req.Start,
		End:           req.End,
		DiscountLunch: req.DiscountLunch,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	// The edit changed the month's totals; evict the stale aggregate.
	if d, perr := time.Parse("2006-01-02", req.Date); perr == nil {
		s.invalidateHistory(uid, projectID, d.Year(), int(d.Month()))
	}

	writeJSON(w, http.StatusOK, toRecordView(rec))
}

// historyResponse attaches the estimated pay when the project has a
// schedule with an hourly rate. A "rate" query parameter (accepting comma
// or dot decimals) overrides the configured one for what-if estimates.
func (s *Server) historyResponse(r *http.Request, uid string, h core.MonthlyHistory) historyView {
	var rate *float64

	if v := r.URL.Query().Get("rate"); v != "" {
		if parsed, err := core.ParseHourlyRate(v); err == nil {
			rate = &parsed
		}
	}
	if rate == nil {
		cfg, err := s.svc.GetProjectConfig(r.Context(), uid, h.ProjectID)
		if err == nil && cfg.HourlyRate > 0 {
			rate = &cfg.HourlyRate
		}
	}

	return toHistoryView(h, rate)
}
