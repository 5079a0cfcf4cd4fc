package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kabanhq/kaban/internal/types"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := New(context.Background(), filepath.Join(dir, "kaban.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestBoard(t *testing.T, s *Store) *types.Board {
	t.Helper()
	board, err := s.InitializeBoard(context.Background(), types.DefaultConfig("test board"))
	if err != nil {
		t.Fatalf("initialize board: %v", err)
	}
	return board
}
