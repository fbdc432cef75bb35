package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/yndnr/poold/internal/telemetry/logger"
)

// Stopper is a server with a cooperative stop.
type Stopper interface {
	Stop()
}

// StopperFunc adapts a function to Stopper.
type StopperFunc func()

// Stop calls f.
func (f StopperFunc) Stop() { f() }

// DefaultSignals are the termination signals the handler captures.
func DefaultSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}

// Handler waits for a termination signal and performs the shutdown actions.
type Handler struct {
	log     logger.Logger
	stopper Stopper
	cleanup func() error
	exit    func(int)
	signals []os.Signal

	sigCh  <-chan os.Signal
	disarm func()

	mu       sync.Mutex
	hooks    []func(context.Context) error
	received os.Signal

	spawnOnce sync.Once
	closeOnce sync.Once
	quit      chan struct{}
	done      chan struct{}
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		h.log = l
	}
}

// WithStopper sets the server to stop on signal. Without a stopper the
// handler terminates the process after cleanup.
func WithStopper(s Stopper) Option {
	return func(h *Handler) {
		h.stopper = s
	}
}

// WithCleanup sets the socket cleanup to run on signal.
func WithCleanup(fn func() error) Option {
	return func(h *Handler) {
		h.cleanup = fn
	}
}

// WithExitFunc replaces os.Exit.
func WithExitFunc(fn func(int)) Option {
	return func(h *Handler) {
		h.exit = fn
	}
}

// WithSignals replaces the captured signals.
func WithSignals(sigs ...os.Signal) Option {
	return func(h *Handler) {
		h.signals = sigs
	}
}

// WithSignalChannel makes the handler read signals from ch instead of
// registering with os/signal.
func WithSignalChannel(ch <-chan os.Signal) Option {
	return func(h *Handler) {
		h.sigCh = ch
	}
}

// Arm starts capturing sigs (DefaultSignals when none are given) and
// returns the channel they are delivered on together with a function
// that stops the capture. A caller that needs signals queued before the
// handler exists arms first and passes the channel to WithSignalChannel;
// it then owns the disarm call.
func Arm(sigs ...os.Signal) (<-chan os.Signal, func()) {
	if len(sigs) == 0 {
		sigs = DefaultSignals()
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	return ch, func() { signal.Stop(ch) }
}

// NewHandler creates and arms a signal handler.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		exit:    os.Exit,
		signals: DefaultSignals(),
		hooks:   make([]func(context.Context) error, 0),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = logger.OrDefault(h.log).With("component", "shutdown")

	if h.sigCh == nil {
		h.sigCh, h.disarm = Arm(h.signals...)
	}

	return h
}

// OnShutdown registers a hook run after the server is stopped and before
// the socket is cleaned up. Hooks are called in reverse order of
// registration; their errors are logged and do not stop the sequence.
func (h *Handler) OnShutdown(hook func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// Spawn starts waiting for a signal in the background. It is a no-op
// after the first call or after Close.
func (h *Handler) Spawn() {
	h.spawnOnce.Do(func() {
		go h.run()
	})
}

// Close disarms the handler and waits for the background goroutine to
// exit. If a shutdown sequence is in progress, Close waits for it.
func (h *Handler) Close() {
	h.closeOnce.Do(func() {
		close(h.quit)
		h.spawnOnce.Do(func() {
			close(h.done)
		})
		<-h.done
		if h.disarm != nil {
			h.disarm()
		}
	})
}

// Done returns a channel that closes when the background goroutine exits.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

// Signal returns the signal that triggered shutdown, or nil.
func (h *Handler) Signal() os.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.received
}

func (h *Handler) run() {
	defer close(h.done)

	select {
	case sig, ok := <-h.sigCh:
		if !ok {
			return
		}
		h.shutdown(sig)
	case <-h.quit:
	}
}

func (h *Handler) shutdown(sig os.Signal) {
	h.mu.Lock()
	h.received = sig
	hooks := make([]func(context.Context) error, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	h.log.Info("signal received", "signal", sig.String())

	if h.stopper != nil {
		h.log.Info("stopping server")
		h.stopper.Stop()
	}

	ctx := context.Background()
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			h.log.Warn("shutdown hook failed", "error", err)
		}
	}

	cleanupFailed := false
	if h.cleanup != nil {
		if err := h.cleanup(); err != nil {
			h.log.Warn("socket cleanup failed", "error", err)
			cleanupFailed = true
		}
	}

	if h.stopper == nil {
		code := 0
		if cleanupFailed {
			code = 1
		}
		h.log.Info("daemon exiting", "trigger", "signal", "code", code)
		h.exit(code)
	}
}
