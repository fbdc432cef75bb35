// Package buildinfo provides build information for poold.
//
// Values are injected via ldflags:
//
//   - Version: Semantic version (e.g., "1.0.0")
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//
// GoVersion is read from the running binary.
//
// Usage:
//
//	go build -ldflags "-X github.com/yndnr/poold/internal/infra/buildinfo.Version=v1.0.0"
package buildinfo
