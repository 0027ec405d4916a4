package http

import (
	"fmt"
	"net/http"

	"jornada/internal/core"
)

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type taskStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	t, err := s.svc.CreateTask(r.Context(), uid, core.Task{
		ProjectID:   r.PathValue("id"),
		Title:       sanitizeInput(req.Title),
		Description: sanitizeInput(req.Description),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTaskView(t))
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tasks, err := s.svc.ListTasks(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, toTaskView(t))
	}

	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	if _, err := userID(r); err != nil {
		writeError(w, r, err)
		return
	}

	var req taskStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	status := core.TaskStatus(req.Status)
	if !status.IsValid() {
		writeError(w, r, fmt.Errorf("invalid task status %q", req.Status))
		return
	}

	if err := s.svc.UpdateTaskStatus(r.Context(), r.PathValue("id"), status); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if _, err := userID(r); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.DeleteTask(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
