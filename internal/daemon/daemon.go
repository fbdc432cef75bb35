package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/yndnr/poold/internal/infra/activation"
	"github.com/yndnr/poold/internal/infra/buildinfo"
	"github.com/yndnr/poold/internal/infra/cleanup"
	"github.com/yndnr/poold/internal/infra/shutdown"
	"github.com/yndnr/poold/internal/server/config"
	"github.com/yndnr/poold/internal/server/httpserver"
	"github.com/yndnr/poold/internal/server/localserver"
	"github.com/yndnr/poold/internal/telemetry/logger"
	"github.com/yndnr/poold/internal/telemetry/metric"
)

// Shutdown triggers, also used as metric labels.
const (
	TriggerSignal    = "signal"
	TriggerServeExit = "serve_exit"
)

// metricsShutdownTimeout bounds how long open scrapes may hold up exit.
const metricsShutdownTimeout = 5 * time.Second

// Options configures Run.
type Options struct {
	// ConfigFile is the optional configuration document.
	ConfigFile string

	// Overrides are dotted configuration keys that win over the file and
	// the environment. Empty strings are ignored.
	Overrides map[string]any

	// Config, when set, is used instead of loading ConfigFile.
	Config *config.ServerConfig

	// Socket is the path to bind when no socket is handed over.
	Socket string

	// Logger overrides the logger built from the configuration.
	Logger logger.Logger

	// Metrics overrides the global metrics registry.
	Metrics *metric.Registry

	// Handler overrides the control dispatcher.
	Handler localserver.ConnHandler

	// Signals replaces process signal delivery.
	Signals <-chan os.Signal

	// ResolverOptions are passed to the activation resolver.
	ResolverOptions []activation.Option

	remove   func(string) error
	sdNotify func(bool, string) (bool, error)
	onArmed  func()
	onBound  func()
	onServe  func(*localserver.Server)
}

var running atomic.Bool

// Run starts the daemon and blocks until it has shut down. It returns nil
// after an orderly shutdown. Failures are *Error values; a serve failure
// and a cleanup failure are both reported, joined.
//
// Termination signals are captured from the start of Run. One that
// arrives before the socket is resolved ends Run without binding; one
// that arrives later goes through the stop and cleanup sequence.
//
// Only one Run may be active per process.
func Run(opts Options) error {
	if !running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer running.Store(false)

	sigs := opts.Signals
	if sigs == nil {
		var disarm func()
		sigs, disarm = shutdown.Arm()
		defer disarm()
	}
	if opts.onArmed != nil {
		opts.onArmed()
	}

	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = LoadConfig(opts.ConfigFile, opts.Overrides); err != nil {
			return err
		}
	} else if err := config.Verify(cfg); err != nil {
		return &Error{Kind: KindConfig, Err: fmt.Errorf("invalid configuration: %w", err)}
	}

	log := opts.Logger
	if log == nil {
		var err error
		if log, err = NewLogger(cfg.Log); err != nil {
			return &Error{Kind: KindConfig, Err: fmt.Errorf("init logger: %w", err)}
		}
	}
	reg := opts.Metrics
	if reg == nil {
		reg = metric.Global()
	}

	log.Info("starting daemon",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", opts.ConfigFile,
		"socket", opts.Socket)

	select {
	case sig := <-sigs:
		log.Info("signal received before bind", "signal", sig.String())
		reg.ShutdownTriggered(TriggerSignal)
		log.Info("daemon exiting", "trigger", TriggerSignal, "origin", "none", "code", 0)
		return nil
	default:
	}

	resolver := activation.NewResolver(append([]activation.Option{
		activation.WithLogger(log),
		activation.WithMetrics(reg),
	}, opts.ResolverOptions...)...)

	origin, ln, err := resolver.Resolve(opts.Socket)
	if err != nil {
		return &Error{Kind: KindBind, Err: err}
	}
	if opts.onBound != nil {
		opts.onBound()
	}

	cleanupOpts := []cleanup.Option{cleanup.WithLogger(log), cleanup.WithMetrics(reg)}
	if opts.remove != nil {
		cleanupOpts = append(cleanupOpts, cleanup.WithRemoveFunc(opts.remove))
	}
	coord := cleanup.New(origin, cleanupOpts...)

	srv := localserver.New(cfg.Server, opts.Handler,
		localserver.WithLogger(log),
		localserver.WithMetrics(reg))

	var metricsSrv *httpserver.Server
	if cfg.Metrics.Addr != "" {
		router := httpserver.NewRouter(httpserver.RouterConfig{
			Metrics: reg,
			Ready:   srv.Running,
			Logger:  log,
		})
		metricsSrv = httpserver.New(cfg.Metrics.Addr, router, log)
		if err := metricsSrv.Start(); err != nil {
			_ = ln.Close()
			return errors.Join(
				&Error{Kind: KindBind, Err: fmt.Errorf("metrics endpoint: %w", err)},
				cleanupError(coord.Cleanup()),
			)
		}
	}

	sd := newNotifier(log, opts.sdNotify)

	sh := shutdown.NewHandler(
		shutdown.WithLogger(log),
		shutdown.WithStopper(srv),
		shutdown.WithCleanup(coord.Cleanup),
		shutdown.WithSignalChannel(sigs),
	)
	sh.OnShutdown(func(context.Context) error {
		reg.ShutdownTriggered(TriggerSignal)
		return nil
	})
	sh.OnShutdown(func(context.Context) error {
		sd.stopping()
		return nil
	})
	sh.Spawn()

	if opts.onServe != nil {
		opts.onServe(srv)
	}
	sd.ready()
	serveErr := srv.Serve(ln)

	// The listener is closed once Serve returns, so the path can go now,
	// before anything below has a chance to block.
	cleanupErr := cleanupError(coord.Cleanup())

	// Waits for a signal-triggered sequence that is still running.
	sh.Close()

	trigger := TriggerSignal
	if sh.Signal() == nil {
		trigger = TriggerServeExit
		reg.ShutdownTriggered(TriggerServeExit)
		sd.stopping()
	}

	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		if err := metricsSrv.Shutdown(ctx); err != nil {
			log.Warn("metrics endpoint shutdown failed", "error", err)
		}
		cancel()
	}

	var errs []error
	if serveErr != nil {
		log.Error("serve failed", "error", serveErr)
		errs = append(errs, &Error{Kind: KindServe, Err: serveErr})
	}
	if cleanupErr != nil {
		errs = append(errs, cleanupErr)
	}

	err = errors.Join(errs...)
	code := 0
	if err != nil {
		code = 1
	}
	log.Info("daemon exiting", "trigger", trigger, "origin", origin.String(), "code", code)
	return err
}

func cleanupError(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindCleanup, Err: err}
}
