// Package config defines the server configuration structure.
package config

import (
	"encoding/json"
	"time"
)

// ServerConfig is the root configuration for poold.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server" yaml:"server" json:"server"`
	Metrics MetricsSection `koanf:"metrics" yaml:"metrics" json:"metrics"`
	Log     LogSection     `koanf:"log" yaml:"log" json:"log"`
}

// ServerSection configures the accept loop and connection handling.
type ServerSection struct {
	// MaxConnections bounds concurrently served connections. 0 means unlimited.
	MaxConnections int `koanf:"max_connections" yaml:"max_connections" json:"max_connections"`

	// AcceptRate is the sustained accept rate in connections per second.
	// 0 disables throttling.
	AcceptRate float64 `koanf:"accept_rate" yaml:"accept_rate" json:"accept_rate"`

	// AcceptBurst is the token bucket size used with AcceptRate.
	AcceptBurst int `koanf:"accept_burst" yaml:"accept_burst" json:"accept_burst"`

	// MaxAcceptErrors is the number of consecutive temporary accept
	// errors tolerated before the serve loop gives up.
	MaxAcceptErrors int `koanf:"max_accept_errors" yaml:"max_accept_errors" json:"max_accept_errors"`

	// IdleTimeout closes a connection that sent nothing for this long.
	// 0 disables the timeout.
	IdleTimeout time.Duration `koanf:"idle_timeout" yaml:"idle_timeout" json:"idle_timeout"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	// Addr is the TCP address for /metrics. Empty disables the endpoint.
	Addr string `koanf:"addr" yaml:"addr" json:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level" json:"level"`
	Format string `koanf:"format" yaml:"format" json:"format"`
}

// MarshalJSON renders IdleTimeout in time.Duration string form, the same
// form the loader accepts.
func (s ServerSection) MarshalJSON() ([]byte, error) {
	type plain ServerSection
	return json.Marshal(struct {
		plain
		IdleTimeout string `json:"idle_timeout"`
	}{plain(s), s.IdleTimeout.String()})
}
