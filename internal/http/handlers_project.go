package http

import (
	"fmt"
	"net/http"

	"jornada/internal/core"
)

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type projectStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := s.svc.CreateProject(r.Context(), uid, sanitizeInput(req.Name), sanitizeInput(req.Description))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProjectView(p))
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	limit, offset := parsePagination(r)
	search := sanitizeInput(r.URL.Query().Get("search"))

	projects, total, err := s.svc.ListProjects(r.Context(), uid, search, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, toProjectView(p))
	}

	writeJSON(w, http.StatusOK, projectListView{
		Projects: views,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := s.svc.GetProject(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProjectView(p))
}

func (s *Server) handleUpdateProjectStatus(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req projectStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	status := core.ProjectStatus(req.Status)
	if !status.IsValid() {
		writeError(w, r, fmt.Errorf("invalid project status %q", req.Status))
		return
	}

	if err := s.svc.UpdateProjectStatus(r.Context(), uid, r.PathValue("id"), status); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.DeleteProject(r.Context(), uid, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
