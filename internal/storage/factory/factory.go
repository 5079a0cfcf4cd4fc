// Package factory resolves a storage backend by name, the way the
// teacher's own multi-backend registry does, so KABAN_DB_DRIVER (§6) has
// somewhere real to land. Kaban only ships the "sqlite" backend; the
// registry exists so a second backend can register itself (e.g. from a
// build-tag-gated file) without this package or the service layer
// changing.
package factory

import (
	"context"
	"fmt"
	"os"

	"github.com/kabanhq/kaban/internal/storage"
)

// DriverEnv is the environment variable that selects a backend when the
// caller doesn't specify one explicitly (§6).
const DriverEnv = "KABAN_DB_DRIVER"

// DefaultBackend is used when DriverEnv is unset and no backend was
// requested explicitly.
const DefaultBackend = "sqlite"

// BackendFactory opens a Store at path with the given options.
type BackendFactory func(ctx context.Context, path string, opts Options) (storage.Store, error)

var backendRegistry = make(map[string]BackendFactory)

// RegisterBackend makes a backend available under name. Called from an
// init() in the backend's own package (see sqlite/register.go).
func RegisterBackend(name string, f BackendFactory) {
	backendRegistry[name] = f
}

// Options configures how a backend opens its store.
type Options struct {
	ReadOnly bool
}

// New opens a Store using the backend named by KABAN_DB_DRIVER, falling
// back to DefaultBackend when the variable is unset.
func New(ctx context.Context, path string) (storage.Store, error) {
	backend := os.Getenv(DriverEnv)
	if backend == "" {
		backend = DefaultBackend
	}
	return NewWithBackend(ctx, backend, path, Options{})
}

// NewWithBackend opens a Store using an explicitly named backend,
// ignoring KABAN_DB_DRIVER. Unregistered backends (e.g. "libsql", which
// §6 names as a valid request but which this module does not implement)
// fail with a clear error naming the backend rather than a generic
// "unknown backend".
func NewWithBackend(ctx context.Context, backend, path string, opts Options) (storage.Store, error) {
	f, ok := backendRegistry[backend]
	if !ok {
		if len(backendRegistry) == 0 {
			return nil, fmt.Errorf("storage backend %q is not registered (no backends compiled in)", backend)
		}
		return nil, fmt.Errorf("storage backend %q is not available in this build", backend)
	}
	return f(ctx, path, opts)
}
