// Package metric provides Prometheus metrics for poold.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/poold/internal/infra/buildinfo"
)

// Collector reports build information and daemon uptime at scrape time.
type Collector struct {
	started   time.Time
	buildDesc *prometheus.Desc
	upDesc    *prometheus.Desc
}

// NewCollector creates a collector whose uptime starts now.
func NewCollector() *Collector {
	return &Collector{
		started: time.Now(),
		buildDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "build_info"),
			"Build information of the running daemon.",
			[]string{"version", "commit"}, nil,
		),
		upDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "uptime_seconds"),
			"Seconds since the daemon started.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.buildDesc
	ch <- c.upDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	info := buildinfo.Get()
	ch <- prometheus.MustNewConstMetric(c.buildDesc, prometheus.GaugeValue, 1, info.Version, info.Commit)
	ch <- prometheus.MustNewConstMetric(c.upDesc, prometheus.GaugeValue, time.Since(c.started).Seconds())
}
