// Package cleanup removes the daemon's socket path exactly once.
//
// Both the signal path and the normal exit path call Cleanup. The first
// call performs the removal; every later call returns the same result
// without touching the filesystem again.
package cleanup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"

	"github.com/yndnr/poold/internal/infra/activation"
	"github.com/yndnr/poold/internal/telemetry/logger"
	"github.com/yndnr/poold/internal/telemetry/metric"
)

// Cleanup outcomes, also used as metric labels.
const (
	ResultRemoved       = "removed"
	ResultAlreadyAbsent = "already_absent"
	ResultExternal      = "external"
	ResultFailed        = "failed"
)

// Coordinator performs at most one removal of the owned socket path.
type Coordinator struct {
	origin  activation.Origin
	log     logger.Logger
	metrics *metric.Registry
	remove  func(string) error

	once   sync.Once
	done   atomic.Bool
	err    error
	result string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) {
		c.log = l
	}
}

// WithMetrics records cleanup outcomes.
func WithMetrics(m *metric.Registry) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithRemoveFunc replaces os.Remove.
func WithRemoveFunc(remove func(string) error) Option {
	return func(c *Coordinator) {
		c.remove = remove
	}
}

// New creates a Coordinator for the origin captured at startup.
func New(origin activation.Origin, opts ...Option) *Coordinator {
	c := &Coordinator{
		origin: origin,
		remove: os.Remove,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logger.OrDefault(c.log).With("component", "cleanup")
	return c
}

// Cleanup removes the owned socket path on the first call and returns
// the memoized outcome on every call. Concurrent callers block until the
// first removal finishes. A path that is already gone is not an error.
func (c *Coordinator) Cleanup() error {
	c.once.Do(c.run)
	return c.err
}

// Done reports whether the cleanup has completed.
func (c *Coordinator) Done() bool {
	return c.done.Load()
}

// Result returns the outcome label of the cleanup, or "" before it ran.
func (c *Coordinator) Result() string {
	if !c.done.Load() {
		return ""
	}
	return c.result
}

func (c *Coordinator) run() {
	path, owned := c.origin.OwnedPath()
	if !owned {
		c.log.Info("systemd manages the socket, not cleaning it up")
		c.finish(ResultExternal, nil)
		return
	}

	c.log.Info("cleaning up socket", "socket", path)
	err := c.remove(path)
	switch {
	case err == nil:
		c.log.Info("socket removed", "socket", path)
		c.finish(ResultRemoved, nil)
	case errors.Is(err, fs.ErrNotExist):
		c.log.Debug("socket already removed", "socket", path)
		c.finish(ResultAlreadyAbsent, nil)
	default:
		c.log.Error("socket cleanup failed", "socket", path, "error", err)
		c.finish(ResultFailed, fmt.Errorf("remove socket %s: %w", path, err))
	}
}

func (c *Coordinator) finish(result string, err error) {
	c.result = result
	c.err = err
	c.done.Store(true)
	c.metrics.CleanupResult(result)
}
