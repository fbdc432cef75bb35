// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Verify validates a loaded configuration.
func Verify(cfg *ServerConfig) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Metrics); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.MaxConnections < 0 {
		return errors.New("server.max_connections must not be negative")
	}
	if cfg.AcceptRate < 0 {
		return errors.New("server.accept_rate must not be negative")
	}
	if cfg.AcceptRate > 0 && cfg.AcceptBurst < 1 {
		return errors.New("server.accept_burst must be at least 1 when accept_rate is set")
	}
	if cfg.MaxAcceptErrors < 1 {
		return errors.New("server.max_accept_errors must be at least 1")
	}
	if cfg.IdleTimeout < 0 {
		return errors.New("server.idle_timeout must not be negative")
	}
	return nil
}

func verifyMetrics(cfg *MetricsSection) error {
	if cfg.Addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("metrics.addr %q: %w", cfg.Addr, err)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		return fmt.Errorf("log.format %q is not one of json, text, console", cfg.Format)
	}
	return nil
}
