package sqlite

import (
	"context"

	"go.uber.org/zap"

	"github.com/kabanhq/kaban/internal/storage"
	"github.com/kabanhq/kaban/internal/storage/factory"
)

func init() {
	factory.RegisterBackend("sqlite", func(ctx context.Context, path string, opts factory.Options) (storage.Store, error) {
		return New(ctx, path, zap.NewNop())
	})
}
