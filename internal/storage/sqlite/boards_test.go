package sqlite

import (
	"context"
	"testing"

	"github.com/kabanhq/kaban/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeBoardCreatesDefaultColumns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	board, err := s.InitializeBoard(ctx, types.DefaultConfig("demo"))
	require.NoError(t, err)
	assert.Equal(t, "demo", board.Name)
	assert.NotEmpty(t, board.ID)

	cols, err := s.GetColumns(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, cols, 5)
	assert.Equal(t, "backlog", cols[0].ID)
	assert.Equal(t, "done", cols[4].ID)
	assert.True(t, cols[4].IsTerminal)
	assert.Equal(t, 3, cols[2].WIPLimit)
}

func TestInitializeBoardIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.InitializeBoard(ctx, types.DefaultConfig("demo"))
	require.NoError(t, err)

	second, err := s.InitializeBoard(ctx, types.DefaultConfig("ignored"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "demo", second.Name)
}

func TestGetColumnResolvesByNameCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	board := newTestBoard(t, s)

	col, err := s.GetColumn(context.Background(), board.ID, "IN_PROGRESS")
	require.NoError(t, err)
	assert.Equal(t, "in_progress", col.ID)
}

func TestGetBoardNotFoundBeforeInit(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetBoard(context.Background())
	assert.Error(t, err)
}
