package cleanup

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/poold/internal/infra/activation"
	"github.com/yndnr/poold/internal/telemetry/logger"
	"github.com/yndnr/poold/internal/telemetry/metric"
)

func boundSocket(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sock")
	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		t.Fatalf("ListenUnix() error = %v", err)
	}
	l.SetUnlinkOnClose(false)
	l.Close()
	return path
}

func TestCleanup_SelfBoundRemovesPath(t *testing.T) {
	path := boundSocket(t)
	reg := metric.NewRegistry()

	c := New(activation.SelfBoundOrigin(path), WithLogger(logger.Nop()), WithMetrics(reg))
	if c.Done() {
		t.Error("Done() should be false before Cleanup")
	}
	if err := c.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("socket path should be gone, stat err = %v", err)
	}
	if c.Result() != ResultRemoved {
		t.Errorf("Result() = %q, want %q", c.Result(), ResultRemoved)
	}
	if got := testutil.ToFloat64(reg.SocketCleanups.WithLabelValues(ResultRemoved)); got != 1 {
		t.Errorf("socket_cleanups_total{removed} = %v, want 1", got)
	}
}

func TestCleanup_SecondCallIsNoop(t *testing.T) {
	path := boundSocket(t)

	var calls atomic.Int32
	c := New(activation.SelfBoundOrigin(path),
		WithLogger(logger.Nop()),
		WithRemoveFunc(func(p string) error {
			calls.Add(1)
			return os.Remove(p)
		}),
	)

	if err := c.Cleanup(); err != nil {
		t.Fatalf("first Cleanup() error = %v", err)
	}
	if err := c.Cleanup(); err != nil {
		t.Fatalf("second Cleanup() error = %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("remove called %d times, want 1", n)
	}
}

func TestCleanup_ConcurrentCallers(t *testing.T) {
	path := boundSocket(t)

	var calls atomic.Int32
	c := New(activation.SelfBoundOrigin(path),
		WithLogger(logger.Nop()),
		WithRemoveFunc(func(p string) error {
			calls.Add(1)
			return os.Remove(p)
		}),
	)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.Cleanup()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Cleanup() error = %v", err)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("remove called %d times, want 1", n)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("socket path should be gone, stat err = %v", err)
	}
}

func TestCleanup_AlreadyAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.sock")
	reg := metric.NewRegistry()

	c := New(activation.SelfBoundOrigin(path), WithLogger(logger.Nop()), WithMetrics(reg))
	if err := c.Cleanup(); err != nil {
		t.Fatalf("Cleanup() of a missing path should succeed, got %v", err)
	}
	if c.Result() != ResultAlreadyAbsent {
		t.Errorf("Result() = %q, want %q", c.Result(), ResultAlreadyAbsent)
	}
	if got := testutil.ToFloat64(reg.SocketCleanups.WithLabelValues(ResultAlreadyAbsent)); got != 1 {
		t.Errorf("socket_cleanups_total{already_absent} = %v, want 1", got)
	}
}

func TestCleanup_InheritedIsNoop(t *testing.T) {
	called := false
	c := New(activation.InheritedOrigin(),
		WithLogger(logger.Nop()),
		WithRemoveFunc(func(string) error {
			called = true
			return nil
		}),
	)

	if err := c.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if called {
		t.Error("inherited sockets must never be removed")
	}
	if c.Result() != ResultExternal {
		t.Errorf("Result() = %q, want %q", c.Result(), ResultExternal)
	}
}

func TestCleanup_InheritedIgnoresExistingPath(t *testing.T) {
	// A path existing on disk does not make the daemon its owner.
	path := boundSocket(t)

	c := New(activation.InheritedOrigin(), WithLogger(logger.Nop()))
	if err := c.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("supervisor-owned path must survive cleanup: %v", err)
	}
}

func TestCleanup_FailureIsMemoized(t *testing.T) {
	var calls atomic.Int32
	c := New(activation.SelfBoundOrigin("/run/poold/test.sock"),
		WithLogger(logger.Nop()),
		WithRemoveFunc(func(p string) error {
			calls.Add(1)
			return &os.PathError{Op: "remove", Path: p, Err: syscall.EACCES}
		}),
	)

	first := c.Cleanup()
	if first == nil {
		t.Fatal("Cleanup() should report a removal failure")
	}
	if !errors.Is(first, syscall.EACCES) {
		t.Errorf("Cleanup() = %v, want wrapped EACCES", first)
	}

	if second := c.Cleanup(); second != first {
		t.Errorf("second Cleanup() = %v, want the memoized %v", second, first)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("remove called %d times, want 1", n)
	}
	if c.Result() != ResultFailed {
		t.Errorf("Result() = %q, want %q", c.Result(), ResultFailed)
	}
}
