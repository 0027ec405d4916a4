package http

import (
	"net/http"
	"time"

	"jornada/internal/core"
)

type saveConfigRequest struct {
	HourlyRate float64        `json:"hourlyRate"`
	WorkDays   []core.WorkDay `json:"workDays"`
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cfg, err := s.svc.GetProjectConfig(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toConfigView(cfg))
}

func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req saveConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	projectID := r.PathValue("id")
	cfg, err := s.svc.SaveProjectConfig(r.Context(), uid, core.ProjectConfig{
		ProjectID:  projectID,
		HourlyRate: req.HourlyRate,
		WorkDays:   req.WorkDays,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Saving a schedule re-reconciles the current month; drop any cached view.
	now := time.Now()
	s.invalidateHistory(uid, projectID, now.Year(), int(now.Month()))

	writeJSON(w, http.StatusOK, toConfigView(cfg))
}
