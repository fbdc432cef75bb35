// Package localserver runs the daemon's accept loop on the Unix socket.
//
// The server takes an already-open listener, so it does not care whether
// the socket came from systemd or was bound by the daemon. Stop is the
// cooperative stop used by the signal handler: it closes the listener and
// the active connections, and Serve returns nil once every connection
// goroutine has finished.
//
// Accepted connections are handed to a ConnHandler. The default handler
// is a line-based control dispatcher (ping, status, version, help).
package localserver
