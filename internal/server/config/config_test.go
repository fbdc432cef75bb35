// Package config defines the server configuration structure.
package config

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.MaxConnections != DefaultMaxConnections {
		t.Errorf("MaxConnections = %d, want %d", cfg.Server.MaxConnections, DefaultMaxConnections)
	}
	if cfg.Server.AcceptRate != 0 {
		t.Errorf("AcceptRate = %v, want 0 (unthrottled)", cfg.Server.AcceptRate)
	}
	if cfg.Server.MaxAcceptErrors != DefaultMaxAcceptErrors {
		t.Errorf("MaxAcceptErrors = %d, want %d", cfg.Server.MaxAcceptErrors, DefaultMaxAcceptErrors)
	}
	if cfg.Server.IdleTimeout != DefaultIdleTimeout {
		t.Errorf("IdleTimeout = %v, want %v", cfg.Server.IdleTimeout, DefaultIdleTimeout)
	}
	if cfg.Metrics.Addr != "" {
		t.Errorf("Metrics.Addr = %q, want empty", cfg.Metrics.Addr)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, DefaultLogFormat)
	}

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) = %v, want nil", err)
	}
}

func TestDefault_ReturnsFreshCopy(t *testing.T) {
	a := Default()
	b := Default()
	a.Server.MaxConnections = 1

	if b.Server.MaxConnections != DefaultMaxConnections {
		t.Error("Default() should not share state between calls")
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(*ServerConfig) {},
		},
		{
			name:    "negative max connections",
			mutate:  func(c *ServerConfig) { c.Server.MaxConnections = -1 },
			wantErr: "server.max_connections",
		},
		{
			name:    "negative accept rate",
			mutate:  func(c *ServerConfig) { c.Server.AcceptRate = -0.5 },
			wantErr: "server.accept_rate",
		},
		{
			name: "rate without burst",
			mutate: func(c *ServerConfig) {
				c.Server.AcceptRate = 10
				c.Server.AcceptBurst = 0
			},
			wantErr: "server.accept_burst",
		},
		{
			name: "rate with burst",
			mutate: func(c *ServerConfig) {
				c.Server.AcceptRate = 10
				c.Server.AcceptBurst = 1
			},
		},
		{
			name:    "zero max accept errors",
			mutate:  func(c *ServerConfig) { c.Server.MaxAcceptErrors = 0 },
			wantErr: "server.max_accept_errors",
		},
		{
			name:    "negative idle timeout",
			mutate:  func(c *ServerConfig) { c.Server.IdleTimeout = -time.Second },
			wantErr: "server.idle_timeout",
		},
		{
			name:    "metrics addr without port",
			mutate:  func(c *ServerConfig) { c.Metrics.Addr = "localhost" },
			wantErr: "metrics.addr",
		},
		{
			name:   "metrics addr",
			mutate: func(c *ServerConfig) { c.Metrics.Addr = "127.0.0.1:9464" },
		},
		{
			name:    "unknown log level",
			mutate:  func(c *ServerConfig) { c.Log.Level = "verbose" },
			wantErr: "log.level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *ServerConfig) { c.Log.Format = "xml" },
			wantErr: `log.format "xml" is not one of json, text, console`,
		},
		{
			name:   "console format",
			mutate: func(c *ServerConfig) { c.Log.Format = "console" },
		},
		{
			name:   "case insensitive level",
			mutate: func(c *ServerConfig) { c.Log.Level = "DEBUG" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Verify(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Verify() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Verify() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() = %q, want error containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestVerify_Nil(t *testing.T) {
	if err := Verify(nil); err == nil {
		t.Error("Verify(nil) should fail")
	}
}

func TestServerConfig_JSON(t *testing.T) {
	cfg := Default()
	cfg.Metrics.Addr = "127.0.0.1:9464"

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	out := string(data)
	for _, want := range []string{
		`"server":{`,
		`"max_connections":64`,
		`"accept_burst":16`,
		`"idle_timeout":"5m0s"`,
		`"addr":"127.0.0.1:9464"`,
		`"level":"info"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON %s missing %s", out, want)
		}
	}
	if strings.Contains(out, "MaxConnections") || strings.Contains(out, "300000000000") {
		t.Errorf("JSON %s should use tag names and readable durations", out)
	}
}
