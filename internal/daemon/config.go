package daemon

import (
	"fmt"

	"github.com/yndnr/poold/internal/infra/confloader"
	"github.com/yndnr/poold/internal/server/config"
	"github.com/yndnr/poold/internal/telemetry/logger"
)

// LoadConfig loads the configuration from defaults, the optional file,
// the environment and overrides, then validates it. Errors are *Error of
// KindConfig.
func LoadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, &Error{Kind: KindConfig, Err: err}
	}

	if err := config.Verify(cfg); err != nil {
		return nil, &Error{Kind: KindConfig, Err: fmt.Errorf("invalid configuration: %w", err)}
	}

	return cfg, nil
}

// NewLogger builds the process logger from the log section and installs
// it as the default.
func NewLogger(cfg config.LogSection) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}
