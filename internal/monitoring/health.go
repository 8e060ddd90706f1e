// internal/monitoring/health.go
package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valpere/ProductScrapexter/internal/utils"
)

// Run phases reported by /healthz.
const (
	PhaseStarting    = "starting"
	PhaseDiscovering = "discovering"
	PhaseExtracting  = "extracting"
	PhaseExporting   = "exporting"
	PhaseUploading   = "uploading"
	PhaseDone        = "done"
)

// HealthStatus is the /healthz response body.
type HealthStatus struct {
	Status    string        `json:"status"`
	Phase     string        `json:"phase"`
	Uptime    time.Duration `json:"uptime_ns"`
	StartedAt time.Time     `json:"started_at"`
}

// RunState tracks the phase of a pipeline run for health reporting.
type RunState struct {
	mu        sync.RWMutex
	phase     string
	startedAt time.Time
}

// NewRunState creates a state in PhaseStarting.
func NewRunState() *RunState {
	return &RunState{phase: PhaseStarting, startedAt: time.Now()}
}

// SetPhase records the current phase. Safe on a nil receiver.
func (s *RunState) SetPhase(phase string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.phase = phase
	s.mu.Unlock()
}

// Snapshot returns the current health view.
func (s *RunState) Snapshot() HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return HealthStatus{
		Status:    "ok",
		Phase:     s.phase,
		Uptime:    time.Since(s.startedAt),
		StartedAt: s.startedAt,
	}
}

// HealthHandler serves the run state as JSON.
func (s *RunState) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(s.Snapshot())
	}
}

// NewRouter exposes /metrics and /healthz.
func NewRouter(mm *MetricsManager, state *RunState) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(mm.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", state.HealthHandler()).Methods(http.MethodGet)
	return r
}

// Server is the optional monitoring endpoint for a run.
type Server struct {
	httpServer *http.Server
	logger     utils.Logger
}

// StartServer listens on addr in the background.
func StartServer(addr string, handler http.Handler, logger utils.Logger) *Server {
	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Monitoring server failed: %v", err)
		}
	}()
	logger.Infof("Monitoring endpoint listening on %s", addr)
	return s
}

// Shutdown stops the server, waiting for in-flight requests up to ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
