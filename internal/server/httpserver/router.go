package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yndnr/poold/internal/telemetry/logger"
	"github.com/yndnr/poold/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Metrics is exposed on /metrics. Nil selects the global registry.
	Metrics *metric.Registry

	// Ready reports readiness for /ready. Nil means always ready.
	Ready func() bool

	// Logger for request logging.
	Logger logger.Logger
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	log := logger.OrDefault(cfg.Logger)
	reg := cfg.Metrics
	if reg == nil {
		reg = metric.Global()
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", reg.Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ready != nil && !cfg.Ready() {
			writeJSON(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		writeJSON(w, http.StatusOK, "ready")
	})

	return Chain(mux, Recover(log), RequestID(), AccessLog(log))
}

func writeJSON(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
