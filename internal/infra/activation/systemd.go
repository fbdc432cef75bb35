package activation

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
)

// Environment variables of the systemd socket activation protocol.
const (
	envListenPID = "LISTEN_PID"
	envListenFDs = "LISTEN_FDS"
)

// inherit returns the supervisor-provided listener. It returns an error
// wrapping ErrNoHandoff when the environment carries no handoff for this
// process, and one wrapping ErrMalformedHandoff when it does but the
// handoff is unusable.
func (r *Resolver) inherit() (net.Listener, error) {
	fds, ok := r.lookupEnv(envListenFDs)
	if !ok || fds == "" {
		return nil, ErrNoHandoff
	}

	pidStr, ok := r.lookupEnv(envListenPID)
	if !ok {
		return nil, fmt.Errorf("%w: %s set without %s", ErrMalformedHandoff, envListenFDs, envListenPID)
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q: %v", ErrMalformedHandoff, envListenPID, pidStr, err)
	}
	if self := r.getpid(); pid != self {
		return nil, fmt.Errorf("%w: %s=%d is not this process (%d)", ErrNoHandoff, envListenPID, pid, self)
	}

	// The handoff is addressed to us: consume it on every path so the
	// variables are unset and no passed descriptor outlives a failure.
	files := r.files(true)

	n, err := strconv.Atoi(fds)
	if err != nil {
		closeFiles(files)
		return nil, fmt.Errorf("%w: %s=%q: %v", ErrMalformedHandoff, envListenFDs, fds, err)
	}
	if n != 1 {
		closeFiles(files)
		return nil, fmt.Errorf("%w: expected exactly one socket, got %s=%d", ErrMalformedHandoff, envListenFDs, n)
	}
	if len(files) != 1 {
		closeFiles(files)
		return nil, fmt.Errorf("%w: supervisor passed %d descriptors", ErrMalformedHandoff, len(files))
	}

	f := files[0]
	// FileListener dups the descriptor, so the original is always closed.
	defer f.Close()

	l, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("%w: descriptor %q is not a listener: %v", ErrMalformedHandoff, f.Name(), err)
	}
	if _, ok := l.(*net.UnixListener); !ok {
		addr := l.Addr()
		l.Close()
		return nil, fmt.Errorf("%w: descriptor is a %s listener, want unix", ErrMalformedHandoff, addr.Network())
	}

	return l, nil
}

func closeFiles(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}

// isMalformed reports whether err describes a present-but-unusable handoff.
func isMalformed(err error) bool {
	return errors.Is(err, ErrMalformedHandoff)
}
