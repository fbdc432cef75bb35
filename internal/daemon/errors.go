package daemon

import "errors"

// Kind classifies a fatal daemon error.
type Kind int

const (
	// KindConfig is a configuration load or validation failure.
	KindConfig Kind = iota + 1
	// KindBind is a failure to obtain a listening endpoint.
	KindBind
	// KindServe is a failure of the accept loop.
	KindServe
	// KindCleanup is a failure to remove the socket path.
	KindCleanup
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindBind:
		return "bind"
	case KindServe:
		return "serve"
	case KindCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// ErrAlreadyRunning is returned when Run is called while another Run is
// active in the same process.
var ErrAlreadyRunning = errors.New("daemon: already running")

// Error is a classified daemon error.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err, or any error it joins or wraps, is an
// *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	switch x := err.(type) {
	case nil:
		return false
	case *Error:
		if x.Kind == kind {
			return true
		}
		return IsKind(x.Err, kind)
	case interface{ Unwrap() []error }:
		for _, e := range x.Unwrap() {
			if IsKind(e, kind) {
				return true
			}
		}
		return false
	case interface{ Unwrap() error }:
		return IsKind(x.Unwrap(), kind)
	default:
		return false
	}
}
