// Package httpserver serves the daemon's optional HTTP endpoint:
//
//   - /metrics: Prometheus metrics
//   - /health: liveness
//   - /ready: 200 while the control socket is being served, 503 otherwise
//
// The endpoint is enabled by metrics.addr and is independent of the
// control socket lifecycle.
package httpserver
