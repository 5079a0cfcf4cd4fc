package kaban

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndToEndAddMoveAndExport(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "kaban.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	boards := NewBoardService(store)
	tasks := NewTaskService(store)

	board, err := boards.InitializeBoard(ctx, DefaultBoardConfig("Demo"))
	require.NoError(t, err)

	created, err := tasks.AddTask(ctx, board.ID, "tester", AddTaskParams{Title: "ship the release"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.BoardTaskID)

	moved, err := store.MoveTask(ctx, created.ID, "in_progress", false, "tester")
	require.NoError(t, err)
	require.NotNil(t, moved.StartedAt)

	cols, err := boards.GetColumns(ctx, board.ID)
	require.NoError(t, err)

	view := MarkdownBoardView{Name: board.Name}
	for _, c := range cols {
		cv := MarkdownColumnView{Column: c}
		colTasks, err := tasks.ListTasks(ctx, board.ID, TaskFilter{ColumnID: c.ID})
		require.NoError(t, err)
		cv.Tasks = colTasks
		view.Columns = append(view.Columns, cv)
	}

	doc := ExportMarkdown(view, MarkdownExportOpts{IncludeMetadata: true})
	assert.Contains(t, doc, "# Demo")
	assert.Contains(t, doc, "ship the release")

	parsed := ParseMarkdown(doc)
	assert.Equal(t, "Demo", parsed.BoardName)
}

func TestErrorKindRoundTrips(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "kaban.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.GetBoard(ctx)
	require.Error(t, err)
	assert.True(t, IsErrorKind(err, ErrNotFound))
}
