package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"jornada/internal/cache"
	"jornada/internal/core"
	applog "jornada/internal/log"
	"jornada/internal/middleware/ratelimit"
	"jornada/internal/middleware/security"
	"jornada/internal/middleware/trace"
	"jornada/internal/services"
	appweb "jornada/web"
)

// Options tune server-side caching and throttling.
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
}

func DefaultOptions() Options {
	return Options{
		CacheSize: 256,
		CacheTTL:  30 * time.Second,
	}
}

type Server struct {
	http.Server
	svc       *services.ProjectService
	templates *template.Template

	// Reconciled months are read far more often than they change; cache
	// them per (user, project, month) and invalidate on writes.
	historyCache *cache.LRUCache[core.MonthlyHistory]
	cacheManager *cache.Manager

	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	headers  *security.HeadersMiddleware
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, svc *services.ProjectService, opts Options) *Server {
	if opts.CacheSize <= 0 {
		opts = DefaultOptions()
	}

	mux := http.NewServeMux()
	detector := security.NewDetector()

	requestLogger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentHTTP,
	})

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: applog.Middleware(requestLogger)(mux),
		},
		svc:          svc,
		historyCache: cache.NewLRUCache[core.MonthlyHistory](opts.CacheSize, opts.CacheTTL),
		cacheManager: cache.NewManager(),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:       trace.NewMiddleware(detector.ExtractClientIP),
		headers:      security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		detector:     detector,
	}

	s.cacheManager.Register(s.historyCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /{$}", s.protect(s.handleIndex))

	mux.HandleFunc("POST /projects", s.protect(s.handleCreateProject))
	mux.HandleFunc("GET /projects", s.protect(s.handleListProjects))
	mux.HandleFunc("GET /projects/{id}", s.protect(s.handleGetProject))
	mux.HandleFunc("PUT /projects/{id}/status", s.protect(s.handleUpdateProjectStatus))
	mux.HandleFunc("DELETE /projects/{id}", s.protect(s.handleDeleteProject))

	mux.HandleFunc("GET /projects/{id}/config", s.protect(s.handleGetConfig))
	mux.HandleFunc("PUT /projects/{id}/config", s.protect(s.handleSaveConfig))

	mux.HandleFunc("GET /projects/{id}/monthly-history", s.protect(s.handleGetHistory))
	mux.HandleFunc("POST /projects/{id}/monthly-history", s.protect(s.handleGenerateHistory))
	mux.HandleFunc("PUT /projects/{id}/monthly-history", s.protect(s.handleUpdateWorkDay))

	mux.HandleFunc("POST /projects/{id}/tasks", s.protect(s.handleCreateTask))
	mux.HandleFunc("GET /projects/{id}/tasks", s.protect(s.handleListTasks))
	mux.HandleFunc("PUT /tasks/{id}/status", s.protect(s.handleUpdateTaskStatus))
	mux.HandleFunc("DELETE /tasks/{id}", s.protect(s.handleDeleteTask))

	return s
}

// protect chains tracing, security headers, threat detection and rate
// limiting around a handler.
func (s *Server) protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := s.detector.ExtractClientIP(r)

		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request blocked",
				"client_ip", clientIP, "path", r.URL.Path)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		if isWrite(r.Method) && !s.limiter.Allow(clientIP) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		handler := s.tracer.Middleware(s.headers.Middleware(next))
		handler.ServeHTTP(w, r)
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	data := struct {
		Year  int
		Month int
	}{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		applog.FromContext(r.Context()).Error("Index template execution failed",
			applog.FieldError, err.Error(),
			applog.FieldPath, r.URL.Path,
			applog.FieldComponent, applog.ComponentTemplate)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
