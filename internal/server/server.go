package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazz-dev/kbprobe/internal/storage"
)

// Store defines the storage queries the server needs.
type Store interface {
	AllLatest(ctx context.Context) ([]storage.Result, error)
	LatestResult(ctx context.Context, probeName string) (*storage.Result, error)
	History(ctx context.Context, probeName string, limit, offset int) ([]storage.Result, int, error)
	UptimePercent(ctx context.Context, probeName string, last int) (float64, error)
}

// Server holds the chi router and its dependencies.
type Server struct {
	store      Store
	probeNames []string
	router     chi.Router
	logger     *slog.Logger
}

// New creates a new Server and registers all routes. probeNames is the list
// of registered probes in registration order.
func New(store Store, probeNames []string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:      store,
		probeNames: probeNames,
		router:     chi.NewRouter(),
		logger:     logger,
	}
	s.registerRoutes()
	return s
}

// Router returns the chi router (for mounting or testing).
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/probes", s.handleListProbes)
	r.Get("/api/probes/{name}", s.handleGetProbe)
	r.Get("/api/probes/{name}/history", s.handleGetProbeHistory)
}

// --- Response helpers ---

type envelope struct {
	Data  interface{} `json:"data"`
	Error string      `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Error: msg})
}

func (s *Server) knownProbe(name string) bool {
	for _, n := range s.probeNames {
		if n == name {
			return true
		}
	}
	return false
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type probeDetail struct {
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	DurationMs  int64      `json:"duration_ms"`
	Detail      string     `json:"detail"`
	Error       string     `json:"error"`
	UptimePct   float64    `json:"uptime_percent"`
	LastChecked *time.Time `json:"last_checked"`
}

func (s *Server) handleListProbes(w http.ResponseWriter, r *http.Request) {
	latest, err := s.store.AllLatest(r.Context())
	if err != nil {
		s.logger.Error("AllLatest", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	byProbe := make(map[string]storage.Result, len(latest))
	for _, res := range latest {
		byProbe[res.Probe] = res
	}

	details := make([]probeDetail, 0, len(s.probeNames))
	for _, name := range s.probeNames {
		d := probeDetail{
			Name:   name,
			Status: "unknown",
		}
		if res, ok := byProbe[name]; ok {
			d.Status = res.Status
			d.DurationMs = res.DurationMs
			d.Detail = res.Detail
			d.Error = res.Error
			t := res.CheckedAt
			d.LastChecked = &t
			pct, _ := s.store.UptimePercent(r.Context(), name, 100)
			d.UptimePct = pct
		}
		details = append(details, d)
	}

	writeJSON(w, http.StatusOK, details)
}

type probeDetailResponse struct {
	probeDetail
	RecentResults []storage.Result `json:"recent_results"`
}

func (s *Server) handleGetProbe(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if !s.knownProbe(name) {
		writeError(w, http.StatusNotFound, "probe not found")
		return
	}

	latest, err := s.store.LatestResult(r.Context(), name)
	if err != nil {
		s.logger.Error("LatestResult", "probe", name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	history, _, err := s.store.History(r.Context(), name, 10, 0)
	if err != nil {
		s.logger.Error("History", "probe", name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	pct, _ := s.store.UptimePercent(r.Context(), name, 100)

	d := probeDetail{
		Name:      name,
		Status:    "unknown",
		UptimePct: pct,
	}
	if latest != nil {
		d.Status = latest.Status
		d.DurationMs = latest.DurationMs
		d.Detail = latest.Detail
		d.Error = latest.Error
		t := latest.CheckedAt
		d.LastChecked = &t
	}

	writeJSON(w, http.StatusOK, probeDetailResponse{
		probeDetail:   d,
		RecentResults: history,
	})
}

type historyResponse struct {
	Results []storage.Result `json:"results"`
	Total   int              `json:"total"`
}

func (s *Server) handleGetProbeHistory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if !s.knownProbe(name) {
		writeError(w, http.StatusNotFound, "probe not found")
		return
	}

	const maxLimit = 1000

	limit := 50
	offset := 0

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		if n > maxLimit {
			n = maxLimit
		}
		limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid offset parameter")
			return
		}
		offset = n
	}

	results, total, err := s.store.History(r.Context(), name, limit, offset)
	if err != nil {
		s.logger.Error("History", "probe", name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{
		Results: results,
		Total:   total,
	})
}

// --- Middleware ---

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
		)
	})
}
