package localserver

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"

	"github.com/yndnr/poold/internal/server/config"
	"github.com/yndnr/poold/internal/telemetry/logger"
	"github.com/yndnr/poold/internal/telemetry/metric"
)

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// ErrAlreadyServing is returned when Serve is called twice.
var ErrAlreadyServing = errors.New("localserver: already serving")

// ServeError is a non-recoverable accept failure.
type ServeError struct {
	Err error
}

func (e *ServeError) Error() string {
	return "accept: " + e.Err.Error()
}

func (e *ServeError) Unwrap() error {
	return e.Err
}

// ConnHandler serves one accepted connection. The server closes conn
// after ServeConn returns; ctx is cancelled when the server stops.
type ConnHandler interface {
	ServeConn(ctx context.Context, conn net.Conn)
}

// ConnHandlerFunc adapts a function to ConnHandler.
type ConnHandlerFunc func(ctx context.Context, conn net.Conn)

// ServeConn calls f.
func (f ConnHandlerFunc) ServeConn(ctx context.Context, conn net.Conn) {
	f(ctx, conn)
}

// Stats is a snapshot of the server's connection counters.
type Stats struct {
	Addr     string
	Active   int64
	Accepted uint64
	Rejected uint64
	Uptime   time.Duration
}

// Server represents the local control server.
type Server struct {
	cfg     config.ServerSection
	handler ConnHandler
	log     logger.Logger
	metrics *metric.Registry
	limiter *rate.Limiter
	sem     chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	stopped  bool
	stopOnce sync.Once

	running   atomic.Bool
	startedAt atomic.Int64
	active    atomic.Int64
	accepted  atomic.Uint64
	rejected  atomic.Uint64
	wg        sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithMetrics records connection metrics.
func WithMetrics(m *metric.Registry) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a server. A nil handler selects the control dispatcher.
func New(cfg config.ServerSection, handler ConnHandler, opts ...Option) *Server {
	if cfg.MaxAcceptErrors < 1 {
		cfg.MaxAcceptErrors = config.Default().Server.MaxAcceptErrors
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:     cfg,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
		conns:   make(map[net.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.OrDefault(s.log).With("component", "localserver")

	if s.handler == nil {
		s.handler = NewHandler(s.Stats, cfg.IdleTimeout)
	}
	if cfg.AcceptRate > 0 {
		burst := cfg.AcceptBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.AcceptRate), burst)
	}
	if cfg.MaxConnections > 0 {
		s.sem = make(chan struct{}, cfg.MaxConnections)
	}
	return s
}

// Serve accepts connections on ln until Stop is called or accept fails
// for good. It returns nil after a Stop and a *ServeError otherwise.
// If Stop was called before Serve, ln is closed and Serve returns nil.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.listener != nil {
		s.mu.Unlock()
		return ErrAlreadyServing
	}
	s.listener = ln
	stopped := s.stopped
	s.mu.Unlock()

	if stopped {
		s.log.Info("stop requested before serving")
		_ = ln.Close()
		return nil
	}

	s.running.Store(true)
	s.startedAt.Store(time.Now().UnixNano())
	defer func() {
		s.closeAll()
		s.wg.Wait()
		s.running.Store(false)
	}()

	s.log.Info("serving", "addr", ln.Addr().String())
	return s.acceptLoop(ln)
}

func (s *Server) acceptLoop(ln net.Listener) error {
	var delay time.Duration
	failures := 0

	for {
		if s.limiter != nil {
			if err := s.limiter.Wait(s.ctx); err != nil {
				return nil
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			if s.isStopped() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.metrics.AcceptError()
			if !isTemporary(err) {
				s.log.Error("accept failed", "error", err)
				return &ServeError{Err: err}
			}

			failures++
			if failures > s.cfg.MaxAcceptErrors {
				s.log.Error("too many consecutive accept errors", "errors", failures, "error", err)
				return &ServeError{Err: err}
			}
			if delay == 0 {
				delay = minAcceptDelay
			} else {
				delay *= 2
			}
			if delay > maxAcceptDelay {
				delay = maxAcceptDelay
			}
			s.log.Warn("accept failed, retrying", "error", err, "delay", delay)

			t := time.NewTimer(delay)
			select {
			case <-t.C:
			case <-s.ctx.Done():
				t.Stop()
				return nil
			}
			continue
		}
		delay = 0
		failures = 0

		s.dispatch(conn)
	}
}

func (s *Server) dispatch(conn net.Conn) {
	if !s.acquire() {
		s.rejected.Add(1)
		s.metrics.ConnRejected()
		s.log.Warn("connection limit reached, rejecting", "max_connections", s.cfg.MaxConnections)
		_, _ = conn.Write([]byte("error: too many connections\n"))
		_ = conn.Close()
		return
	}
	if !s.track(conn) {
		s.release()
		s.rejected.Add(1)
		s.metrics.ConnRejected()
		_ = conn.Close()
		return
	}

	id := ulid.Make().String()
	s.accepted.Add(1)
	s.active.Add(1)
	s.metrics.ConnAccepted()
	s.log.Debug("connection accepted", append([]any{"conn_id", id}, peerAttrs(conn)...)...)

	ctx := logger.WithConnID(logger.WithLogger(s.ctx, s.log), id)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release()
		defer func() {
			s.untrack(conn)
			_ = conn.Close()
			s.active.Add(-1)
			s.metrics.ConnClosed()
			logger.L(ctx).Debug("connection closed")
		}()
		s.handler.ServeConn(ctx, conn)
	}()
}

// Stop stops the server: the listener and every active connection are
// closed. It may be called before, during or after Serve, any number
// of times.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()

		s.log.Debug("stop requested")
		s.cancel()
		s.closeAll()
	})
}

// Running reports whether Serve is accepting connections.
func (s *Server) Running() bool {
	return s.running.Load()
}

// Addr returns the listener address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stats returns the current connection counters.
func (s *Server) Stats() Stats {
	st := Stats{
		Active:   s.active.Load(),
		Accepted: s.accepted.Load(),
		Rejected: s.rejected.Load(),
	}
	if addr := s.Addr(); addr != nil {
		st.Addr = addr.String()
	}
	if started := s.startedAt.Load(); started != 0 {
		st.Uptime = time.Since(time.Unix(0, started))
	}
	return st
}

func (s *Server) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// closeAll closes the listener and all tracked connections.
func (s *Server) closeAll() {
	s.mu.Lock()
	ln := s.listener
	conns := make([]net.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	for _, c := range conns {
		_ = c.Close()
	}
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) acquire() bool {
	if s.sem == nil {
		return true
	}
	select {
	case s.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Server) release() {
	if s.sem == nil {
		return
	}
	<-s.sem
}

// isTemporary reports whether an accept error is worth retrying.
func isTemporary(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, unix.EMFILE) ||
		errors.Is(err, unix.ENFILE) ||
		errors.Is(err, unix.ECONNABORTED) ||
		errors.Is(err, unix.ENOBUFS) ||
		errors.Is(err, unix.ENOMEM) ||
		errors.Is(err, unix.EINTR)
}
