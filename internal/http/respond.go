package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"jornada/internal/core"
	applog "jornada/internal/log"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP status codes. Unrecognized errors
// become 500s with a generic body; the detail stays in the logs.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrMissingUser):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing user id"})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrInvalidWeekday),
		errors.Is(err, core.ErrMissingProject),
		strings.Contains(err.Error(), "decode request body"):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, core.ErrInvalidTime),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidRate),
		isValidation(err):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	default:
		applog.FromContext(r.Context()).Error("Request failed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err.Error())
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// isValidation catches validation messages that are not sentinel errors,
// such as duplicate weekday entries or oversized names.
func isValidation(err error) bool {
	msg := err.Error()
	for _, needle := range []string{
		"work days",
		"duplicate weekday",
		"too long",
		"empty task title",
		"invalid project status",
		"invalid task status",
		"invalid date",
	} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}
