// internal/server/ops.go
package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ops serves health, readiness and Prometheus metrics on a separate port.
type Ops struct {
	personas []string
	gatherer prometheus.Gatherer
	ready    atomic.Bool
}

// NewOps reports on the given personas. A nil gatherer means the default registry.
func NewOps(personas []string, gatherer prometheus.Gatherer) *Ops {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Ops{personas: personas, gatherer: gatherer}
}

func (o *Ops) SetReady(ready bool) {
	o.ready.Store(ready)
}

func (o *Ops) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		if !o.ready.Load() {
			writeStatus(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "starting",
				"time":   time.Now().Format(time.RFC3339),
			})
			return
		}
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status":   "ready",
			"personas": o.personas,
			"time":     time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}))
	return mux
}

func writeStatus(w http.ResponseWriter, code int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
