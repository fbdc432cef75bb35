// Package logger provides structured logging for poold.
//
//   - logger.go: slog-based Logger, level control, package default
//   - context.go: carrying a Logger and connection ID through context
//
// Lifecycle transitions of the daemon (activation, serving, signal,
// cleanup, exit) are logged through this package so that a single log
// stream shows which path triggered shutdown.
package logger
