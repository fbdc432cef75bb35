// Package shutdown provides the daemon's signal handler.
//
// The handler is armed when it is created: SIGINT and SIGTERM are
// captured from that moment, so a signal delivered before the serve loop
// starts is queued instead of lost. On the first signal the handler:
//
//   - stops the server, if a Stopper was given
//   - runs the registered shutdown hooks in reverse order
//   - cleans up the socket path
//   - exits the process when there is no Stopper to unwind the main path
//
// When signals must be captured before the pieces the handler drives
// exist, Arm registers early and the channel is handed over with
// WithSignalChannel.
//
// Usage:
//
//	h := shutdown.NewHandler(
//		shutdown.WithStopper(srv),
//		shutdown.WithCleanup(coord.Cleanup),
//	)
//	defer h.Close()
//	h.Spawn()
//	err := srv.Serve(ln)
package shutdown
