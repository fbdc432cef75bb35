// Package main provides the entry point for poold.
//
// poold is a local control daemon. Under systemd it serves the socket
// passed by socket activation; standalone it binds its own socket in the
// runtime directory and removes it again on SIGINT or SIGTERM.
package main
