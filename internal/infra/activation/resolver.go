package activation

import (
	"errors"
	"net"
	"os"

	"github.com/coreos/go-systemd/v22/activation"
	"golang.org/x/sys/unix"

	"github.com/yndnr/poold/internal/telemetry/logger"
	"github.com/yndnr/poold/internal/telemetry/metric"
)

// Activation sources reported to metrics.
const (
	SourceSystemd = "systemd"
	SourceBind    = "bind"
)

// Resolver obtains the daemon's single listening socket.
type Resolver struct {
	log       logger.Logger
	metrics   *metric.Registry
	lookupEnv func(string) (string, bool)
	getpid    func() int
	files     func(unsetEnv bool) []*os.File
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		r.log = l
	}
}

// WithMetrics records the chosen activation source.
func WithMetrics(m *metric.Registry) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithEnv replaces the environment lookup used to detect a handoff.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(r *Resolver) {
		r.lookupEnv = lookup
	}
}

// WithPID replaces the function returning this process's pid.
func WithPID(getpid func() int) Option {
	return func(r *Resolver) {
		r.getpid = getpid
	}
}

// WithFiles replaces the source of inherited descriptors.
func WithFiles(files func(unsetEnv bool) []*os.File) Option {
	return func(r *Resolver) {
		r.files = files
	}
}

// NewResolver creates a Resolver reading the real process environment.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		lookupEnv: os.LookupEnv,
		getpid:    os.Getpid,
		files:     activation.Files,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = logger.OrDefault(r.log).With("component", "activation")
	return r
}

// Resolve returns the listener and its origin. A supervisor handoff is
// preferred; without one, path is bound. Handoff absence or malformation
// is logged at info and never returned. A bind failure is returned as a
// *BindError and no listener is left open.
func (r *Resolver) Resolve(path string) (Origin, net.Listener, error) {
	r.log.Info("resolving activation source", "socket", path)

	l, err := r.inherit()
	if err == nil {
		r.log.Info("using systemd activation socket", "addr", l.Addr().String())
		r.metrics.SetActivationSource(SourceSystemd)
		return InheritedOrigin(), l, nil
	}
	r.log.Info("no systemd activation socket", "reason", err.Error(), "malformed", isMalformed(err))

	l, err = bind(path)
	if err != nil {
		var be *BindError
		if errors.As(err, &be) {
			r.log.Error("binding socket failed", "socket", path, "reason", be.Reason(), "error", be.Err)
		}
		return Origin{}, nil, err
	}

	r.log.Info("bound socket", "socket", path)
	r.metrics.SetActivationSource(SourceBind)
	return SelfBoundOrigin(path), l, nil
}

// bind creates a Unix listener at path with owner-only permissions. The
// listener does not unlink path on Close; removal belongs to the cleanup
// coordinator so that it happens exactly once.
func bind(path string) (net.Listener, error) {
	if path == "" {
		return nil, &BindError{Path: path, Err: errors.New("empty socket path")}
	}

	old := unix.Umask(0o077)
	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	unix.Umask(old)
	if err != nil {
		return nil, &BindError{Path: path, Err: err}
	}

	l.SetUnlinkOnClose(false)
	return l, nil
}
