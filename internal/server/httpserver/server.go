package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/yndnr/poold/internal/telemetry/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	listener   net.Listener
	log        logger.Logger
	done       chan struct{}
}

// New creates a new HTTP server.
func New(addr string, handler http.Handler, log logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
		},
		handler: handler,
		log:     logger.OrDefault(log).With("component", "httpserver"),
		done:    make(chan struct{}),
	}
}

// Start binds the address and serves in the background. Bind errors are
// returned synchronously.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.log.Info("metrics endpoint listening", "addr", ln.Addr().String())

	go func() {
		defer close(s.done)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("metrics endpoint stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown gracefully shuts down the server. It gives up on requests still
// in flight when ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.listener != nil {
		select {
		case <-s.done:
		case <-ctx.Done():
		}
	}
	return err
}
