package board

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kabanhq/kaban/internal/kerrors"
	"github.com/kabanhq/kaban/internal/storage/sqlite"
	"github.com/kabanhq/kaban/internal/types"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "kaban.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return New(store)
}

func TestInitializeBoardSeedsDefaultColumns(t *testing.T) {
	svc := newTestService(t)
	board, err := svc.InitializeBoard(context.Background(), types.DefaultConfig("demo"))
	require.NoError(t, err)
	assert.Equal(t, "demo", board.Name)

	cols, err := svc.GetColumns(context.Background(), board.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, cols)
}

func TestGetColumnResolvesCaseInsensitiveName(t *testing.T) {
	svc := newTestService(t)
	board, err := svc.InitializeBoard(context.Background(), types.DefaultConfig("demo"))
	require.NoError(t, err)

	col, err := svc.GetColumn(context.Background(), board.ID, "TODO")
	require.NoError(t, err)
	assert.Equal(t, "todo", col.ID)
}

func TestGetTerminalColumnReturnsDone(t *testing.T) {
	svc := newTestService(t)
	board, err := svc.InitializeBoard(context.Background(), types.DefaultConfig("demo"))
	require.NoError(t, err)

	col, err := svc.GetTerminalColumn(context.Background(), board.ID)
	require.NoError(t, err)
	assert.True(t, col.IsTerminal)
}

func TestSetScorerForBoardPersistsConfig(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.InitializeBoard(context.Background(), types.DefaultConfig("demo"))
	require.NoError(t, err)

	require.NoError(t, svc.SetScorerForBoard(context.Background(), "combined"))

	got, err := svc.store.GetConfig(context.Background(), "active_scorer")
	require.NoError(t, err)
	assert.Equal(t, "combined", got)
}

func TestGetBoardBeforeInitIsNotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.GetBoard(context.Background())
	require.Error(t, err)
	assert.Equal(t, kerrors.NotFound, kerrors.KindOf(err))
}
