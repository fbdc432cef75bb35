package activation

import "fmt"

// Kind identifies who created the listening socket.
type Kind int

const (
	// Inherited sockets were passed in by a supervising process.
	Inherited Kind = iota + 1
	// SelfBound sockets were bound by this process at a filesystem path.
	SelfBound
)

func (k Kind) String() string {
	switch k {
	case Inherited:
		return "inherited"
	case SelfBound:
		return "self-bound"
	default:
		return "unknown"
	}
}

// Origin records where the listener came from and, for self-bound
// sockets, the path this process is responsible for removing.
type Origin struct {
	kind Kind
	path string
}

// InheritedOrigin returns the origin of a supervisor-provided socket.
func InheritedOrigin() Origin {
	return Origin{kind: Inherited}
}

// SelfBoundOrigin returns the origin of a socket bound at path.
func SelfBoundOrigin(path string) Origin {
	return Origin{kind: SelfBound, path: path}
}

// Kind returns the origin kind. The zero Origin has an unknown kind.
func (o Origin) Kind() Kind {
	return o.kind
}

// OwnedPath returns the filesystem path this process must clean up.
// It reports false for inherited sockets.
func (o Origin) OwnedPath() (string, bool) {
	if o.kind != SelfBound {
		return "", false
	}
	return o.path, true
}

func (o Origin) String() string {
	if o.kind == SelfBound {
		return fmt.Sprintf("%s(%s)", o.kind, o.path)
	}
	return o.kind.String()
}
