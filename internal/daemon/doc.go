// Package daemon wires the daemon's startup and shutdown together.
//
// Run captures termination signals first, then loads the configuration,
// obtains the listening socket and serves until the server stops or a
// signal arrives. Whichever path finishes first cleans up the socket;
// the socket path is removed only if the daemon bound it itself.
package daemon
