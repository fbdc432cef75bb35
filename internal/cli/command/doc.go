// Package command provides the poold command line, built on urfave/cli/v2:
//
//   - daemon: run the daemon in the foreground
//   - config: print the effective configuration
//   - ctl: send one control command to a running daemon
//   - version: print build information
package command
