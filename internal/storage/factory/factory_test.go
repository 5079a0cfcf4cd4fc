package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kabanhq/kaban/internal/storage"
)

func TestNewWithBackend_Unregistered(t *testing.T) {
	_, err := NewWithBackend(context.Background(), "libsql", "/tmp/fake", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "libsql")
}

func TestRegisterBackend_RoutesByName(t *testing.T) {
	called := false
	RegisterBackend("test-backend", func(ctx context.Context, path string, opts Options) (storage.Store, error) {
		called = true
		return nil, nil
	})
	defer delete(backendRegistry, "test-backend")

	_, _ = NewWithBackend(context.Background(), "test-backend", "/fake", Options{})
	assert.True(t, called, "registered backend factory should have been invoked")
}

func TestNew_DefaultsWhenEnvUnset(t *testing.T) {
	t.Setenv(DriverEnv, "")

	called := ""
	RegisterBackend(DefaultBackend, func(ctx context.Context, path string, opts Options) (storage.Store, error) {
		called = path
		return nil, nil
	})
	defer delete(backendRegistry, DefaultBackend)

	dbPath := filepath.Join(t.TempDir(), "board.db")
	_, _ = New(context.Background(), dbPath)
	assert.Equal(t, dbPath, called)
}

func TestNew_HonoursEnvOverride(t *testing.T) {
	t.Setenv(DriverEnv, "custom")

	called := false
	RegisterBackend("custom", func(ctx context.Context, path string, opts Options) (storage.Store, error) {
		called = true
		return nil, nil
	})
	defer delete(backendRegistry, "custom")

	_, _ = New(context.Background(), "/fake")
	assert.True(t, called)
}
