package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"jornada/internal/core"
	"jornada/internal/services"
	"jornada/internal/storage/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := memory.New()
	svc := services.NewProjectService(store, nil)
	s := NewServer(":0", svc, DefaultOptions())
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
	})
	return s
}

func doRequest(t *testing.T, s *Server, method, target, uid string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	if uid != "" {
		req.Header.Set("X-User-ID", uid)
	}

	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func createProject(t *testing.T, s *Server, uid, name string) projectView {
	t.Helper()
	rec := doRequest(t, s, http.MethodPost, "/projects", uid, createProjectRequest{Name: name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project: status %d, body %s", rec.Code, rec.Body.String())
	}
	return decodeBody[projectView](t, rec)
}

func weekdaySchedule() []core.WorkDay {
	days := []core.Weekday{
		core.Sunday, core.Monday, core.Tuesday, core.Wednesday,
		core.Thursday, core.Friday, core.Saturday,
	}
	out := make([]core.WorkDay, 0, len(days))
	for _, d := range days {
		enabled := d != core.Sunday && d != core.Saturday
		out = append(out, core.WorkDay{
			Day:     d,
			Enabled: enabled,
			Start:   "09:00",
			End:     "17:00",
		})
	}
	return out
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(t, s, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d, want 200", path, rec.Code)
		}
	}
}

func TestMissingUser(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/projects", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}

	body := decodeBody[errorBody](t, rec)
	if body.Error != "missing user id" {
		t.Errorf("error %q, want %q", body.Error, "missing user id")
	}
}

func TestProjectCRUD(t *testing.T) {
	s := newTestServer(t)

	p := createProject(t, s, "u1", "Client Alpha")
	if p.Status != string(core.StatusPlanning) {
		t.Errorf("new project status %q, want planning", p.Status)
	}

	rec := doRequest(t, s, http.MethodGet, "/projects", "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	list := decodeBody[projectListView](t, rec)
	if list.Total != 1 || len(list.Projects) != 1 {
		t.Fatalf("list total=%d len=%d, want 1/1", list.Total, len(list.Projects))
	}

	rec = doRequest(t, s, http.MethodGet, "/projects/"+p.ID, "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPut, "/projects/"+p.ID+"/status", "u1",
		projectStatusRequest{Status: "active"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status update: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, http.MethodDelete, "/projects/"+p.ID, "u1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/projects/"+p.ID, "u1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status %d, want 404", rec.Code)
	}
}

func TestForeignProjectHidden(t *testing.T) {
	s := newTestServer(t)

	p := createProject(t, s, "u1", "Private")

	rec := doRequest(t, s, http.MethodGet, "/projects/"+p.ID, "u2", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign get: status %d, want 404", rec.Code)
	}

	rec = doRequest(t, s, http.MethodDelete, "/projects/"+p.ID, "u2", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign delete: status %d, want 404", rec.Code)
	}
}

func TestInvalidStatusRejected(t *testing.T) {
	s := newTestServer(t)
	p := createProject(t, s, "u1", "Proj")

	rec := doRequest(t, s, http.MethodPut, "/projects/"+p.ID+"/status", "u1",
		projectStatusRequest{Status: "archived"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", rec.Code)
	}
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/projects", bytes.NewBufferString("{not json"))
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestConfigAndHistoryFlow(t *testing.T) {
	s := newTestServer(t)
	p := createProject(t, s, "u1", "Client Beta")

	rec := doRequest(t, s, http.MethodGet, "/projects/"+p.ID+"/config", "u1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("config before save: status %d, want 404", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPut, "/projects/"+p.ID+"/config", "u1",
		saveConfigRequest{HourlyRate: 100, WorkDays: weekdaySchedule()})
	if rec.Code != http.StatusOK {
		t.Fatalf("save config: status %d, body %s", rec.Code, rec.Body.String())
	}
	cfg := decodeBody[configView](t, rec)
	if cfg.HourlyRate != 100 || len(cfg.WorkDays) != 7 {
		t.Fatalf("config rate=%v days=%d", cfg.HourlyRate, len(cfg.WorkDays))
	}

	// January 2024 has 23 weekdays at 8h each.
	rec = doRequest(t, s, http.MethodPost,
		"/projects/"+p.ID+"/monthly-history?year=2024&month=1", "u1", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate: status %d, body %s", rec.Code, rec.Body.String())
	}
	h := decodeBody[historyView](t, rec)
	if h.TotalDays != 23 || h.TotalHours != 184 {
		t.Fatalf("generated totals days=%d hours=%v, want 23/184", h.TotalDays, h.TotalHours)
	}
	if len(h.Records) != 31 {
		t.Fatalf("records %d, want 31", len(h.Records))
	}
	if h.EstimatedPay == nil || *h.EstimatedPay != 18400 {
		t.Fatalf("estimated pay %v, want 18400", h.EstimatedPay)
	}

	rec = doRequest(t, s, http.MethodGet,
		"/projects/"+p.ID+"/monthly-history?year=2024&month=1", "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get history: status %d", rec.Code)
	}

	// Disabling one Monday drops the totals and must evict the cached month.
	rec = doRequest(t, s, http.MethodPut, "/projects/"+p.ID+"/monthly-history", "u1",
		updateWorkDayRequest{Date: "2024-01-08", Enabled: false})
	if rec.Code != http.StatusOK {
		t.Fatalf("day update: status %d, body %s", rec.Code, rec.Body.String())
	}
	day := decodeBody[recordView](t, rec)
	if day.Enabled || day.Duration != 0 || day.Start != nil {
		t.Fatalf("disabled day: %+v", day)
	}

	rec = doRequest(t, s, http.MethodGet,
		"/projects/"+p.ID+"/monthly-history?year=2024&month=1", "u1", nil)
	h = decodeBody[historyView](t, rec)
	if h.TotalDays != 22 || h.TotalHours != 176 {
		t.Fatalf("totals after edit days=%d hours=%v, want 22/176", h.TotalDays, h.TotalHours)
	}

	// Ad-hoc rate override for what-if estimates, comma decimals included.
	rec = doRequest(t, s, http.MethodGet,
		"/projects/"+p.ID+"/monthly-history?year=2024&month=1&rate=50,00", "u1", nil)
	h = decodeBody[historyView](t, rec)
	if h.EstimatedPay == nil || *h.EstimatedPay != 8800 {
		t.Fatalf("override pay %v, want 8800", h.EstimatedPay)
	}
}

func TestHistoryMissingMonth(t *testing.T) {
	s := newTestServer(t)
	p := createProject(t, s, "u1", "Proj")

	rec := doRequest(t, s, http.MethodGet,
		"/projects/"+p.ID+"/monthly-history?year=2024&month=1", "u1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet,
		"/projects/"+p.ID+"/monthly-history?year=2024&month=13", "u1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("month 13: status %d, want 400", rec.Code)
	}
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestServer(t)
	p := createProject(t, s, "u1", "Proj")

	rec := doRequest(t, s, http.MethodPost, "/projects/"+p.ID+"/tasks", "u1",
		createTaskRequest{Title: "Write proposal"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task: status %d, body %s", rec.Code, rec.Body.String())
	}
	task := decodeBody[taskView](t, rec)
	if task.Status != string(core.TaskTodo) {
		t.Errorf("task status %q, want todo", task.Status)
	}

	rec = doRequest(t, s, http.MethodGet, "/projects/"+p.ID+"/tasks", "u1", nil)
	tasks := decodeBody[[]taskView](t, rec)
	if len(tasks) != 1 {
		t.Fatalf("tasks %d, want 1", len(tasks))
	}

	rec = doRequest(t, s, http.MethodPut, "/tasks/"+task.ID+"/status", "u1",
		taskStatusRequest{Status: "done"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("task status: status %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodDelete, "/tasks/"+task.ID, "u1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("task delete: status %d", rec.Code)
	}
}
