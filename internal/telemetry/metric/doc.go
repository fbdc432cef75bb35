// Package metric provides Prometheus metrics for poold.
//
//   - prometheus.go: registry, lifecycle counters and the HTTP handler
//   - collector.go: build info and uptime collector
//
// Metrics cover the accept loop (accepted, active, accept errors), the
// activation source, shutdown triggers and socket cleanup results. All
// recording methods are safe on a nil *Registry so components can run
// without metrics.
package metric
