package activation

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

var (
	// ErrNoHandoff means no supervisor socket was passed to this process.
	ErrNoHandoff = errors.New("activation: no socket handoff")

	// ErrMalformedHandoff means the handoff environment was present but
	// could not be turned into exactly one Unix stream listener.
	ErrMalformedHandoff = errors.New("activation: malformed socket handoff")
)

// Bind failure reasons reported by BindError.Reason.
const (
	ReasonInUse            = "in use"
	ReasonPermissionDenied = "permission denied"
	ReasonParentMissing    = "parent directory missing"
	ReasonOther            = "other"
)

// BindError is returned when the fallback bind fails. It is fatal: the
// daemon must not serve without a listener.
type BindError struct {
	Path string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s (%s): %v", e.Path, e.Reason(), e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// Reason classifies the underlying failure.
func (e *BindError) Reason() string {
	switch {
	case errors.Is(e.Err, unix.EADDRINUSE):
		return ReasonInUse
	case errors.Is(e.Err, unix.EACCES), errors.Is(e.Err, unix.EPERM):
		return ReasonPermissionDenied
	case errors.Is(e.Err, unix.ENOENT), errors.Is(e.Err, unix.ENOTDIR):
		return ReasonParentMissing
	default:
		return ReasonOther
	}
}
