// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultMaxConnections  = 64
	DefaultAcceptRate      = 0
	DefaultAcceptBurst     = 16
	DefaultMaxAcceptErrors = 10
	DefaultIdleTimeout     = 5 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			MaxConnections:  DefaultMaxConnections,
			AcceptRate:      DefaultAcceptRate,
			AcceptBurst:     DefaultAcceptBurst,
			MaxAcceptErrors: DefaultMaxAcceptErrors,
			IdleTimeout:     DefaultIdleTimeout,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
