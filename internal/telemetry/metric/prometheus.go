// Package metric provides Prometheus metrics for poold.
package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "poold"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	ConnectionsAccepted prometheus.Counter
	ConnectionsActive   prometheus.Gauge
	ConnectionsRejected prometheus.Counter
	AcceptErrors        prometheus.Counter

	ActivationSource *prometheus.GaugeVec
	Shutdowns        *prometheus.CounterVec
	SocketCleanups   *prometheus.CounterVec
}

// NewRegistry creates a registry with the poold metrics, the Go runtime
// collector and the process collector registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		ConnectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_accepted_total",
			Help:      "Connections accepted on the control socket.",
		}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Connections currently being served.",
		}),
		ConnectionsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_rejected_total",
			Help:      "Connections closed without being served.",
		}),
		AcceptErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accept_errors_total",
			Help:      "Temporary errors returned by accept.",
		}),
		ActivationSource: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "activation_source",
			Help:      "Where the listening socket came from (1 for the active source).",
		}, []string{"source"}),
		Shutdowns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shutdowns_total",
			Help:      "Shutdown sequences by trigger.",
		}, []string{"trigger"}),
		SocketCleanups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "socket_cleanups_total",
			Help:      "Socket path cleanup outcomes.",
		}, []string{"result"}),
	}

	r.registry.MustRegister(
		r.ConnectionsAccepted,
		r.ConnectionsActive,
		r.ConnectionsRejected,
		r.AcceptErrors,
		r.ActivationSource,
		r.Shutdowns,
		r.SocketCleanups,
		NewCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns an HTTP handler for /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ConnAccepted records an accepted connection that is now being served.
func (r *Registry) ConnAccepted() {
	if r == nil {
		return
	}
	r.ConnectionsAccepted.Inc()
	r.ConnectionsActive.Inc()
}

// ConnClosed records the end of a served connection.
func (r *Registry) ConnClosed() {
	if r == nil {
		return
	}
	r.ConnectionsActive.Dec()
}

// ConnRejected records a connection dropped without being served.
func (r *Registry) ConnRejected() {
	if r == nil {
		return
	}
	r.ConnectionsRejected.Inc()
}

// AcceptError records a temporary accept failure.
func (r *Registry) AcceptError() {
	if r == nil {
		return
	}
	r.AcceptErrors.Inc()
}

// SetActivationSource marks source ("systemd" or "bind") as active.
func (r *Registry) SetActivationSource(source string) {
	if r == nil {
		return
	}
	r.ActivationSource.Reset()
	r.ActivationSource.WithLabelValues(source).Set(1)
}

// ShutdownTriggered records which path started shutdown ("signal" or "serve_exit").
func (r *Registry) ShutdownTriggered(trigger string) {
	if r == nil {
		return
	}
	r.Shutdowns.WithLabelValues(trigger).Inc()
}

// CleanupResult records a socket cleanup outcome
// ("removed", "already_absent", "external", "failed").
func (r *Registry) CleanupResult(result string) {
	if r == nil {
		return
	}
	r.SocketCleanups.WithLabelValues(result).Inc()
}
