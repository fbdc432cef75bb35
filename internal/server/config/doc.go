// Package config provides the poold daemon configuration.
//
// This package defines the configuration structure and its validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation of loaded values
//
// Configuration is loaded via internal/infra/confloader from an optional
// YAML document and POOLD_ environment variables. A missing document
// yields Default().
package config
