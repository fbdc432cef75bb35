package daemon

import (
	"fmt"
	"os"
	"path/filepath"
)

// SocketName is the socket file name inside the runtime directory.
const SocketName = "poold.sock"

// DefaultRuntimeDir returns $XDG_RUNTIME_DIR/poold, or a per-user
// directory under the system temp dir when XDG_RUNTIME_DIR is unset.
func DefaultRuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "poold")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("poold-%d", os.Getuid()))
}

// SocketPath returns the socket path inside runtimeDir.
func SocketPath(runtimeDir string) string {
	return filepath.Join(runtimeDir, SocketName)
}

// EnsureRuntimeDir creates dir with mode 0700 if it does not exist.
func EnsureRuntimeDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create runtime dir: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat runtime dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("runtime dir %s is not a directory", dir)
	}
	return nil
}
