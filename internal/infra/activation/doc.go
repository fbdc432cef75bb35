// Package activation decides where the daemon's listening socket comes from.
//
// A supervisor (systemd) may hand the process an already bound socket
// through the LISTEN_PID / LISTEN_FDS convention. When it does, the
// socket is Inherited and the daemon never touches its filesystem path.
// Otherwise the daemon binds the requested path itself and the socket is
// SelfBound: the daemon owns that path and must remove it exactly once.
//
// Ownership is carried by the Origin value returned from Resolve and is
// never inferred from whether the path exists on disk.
package activation
