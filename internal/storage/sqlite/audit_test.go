package sqlite

import (
	"context"
	"testing"

	"github.com/kabanhq/kaban/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskEmitsCreateAudit(t *testing.T) {
	s := newTestStore(t)
	board := newTestBoard(t, s)
	task := newTestTask(t, s, board, "backlog", "audited")

	page, err := s.GetHistory(context.Background(), types.HistoryFilter{ObjectID: task.ID})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, types.EventCreate, page.Entries[0].EventType)
	assert.Equal(t, types.ObjectTask, page.Entries[0].ObjectType)
}

func TestUpdateTaskEmitsPerFieldAudit(t *testing.T) {
	s := newTestStore(t)
	board := newTestBoard(t, s)
	task := newTestTask(t, s, board, "backlog", "audited")

	title := "new title"
	desc := "new description"
	_, err := s.UpdateTask(context.Background(), task.ID, 0, types.TaskUpdate{Title: &title, Description: &desc}, "tester")
	require.NoError(t, err)

	page, err := s.GetHistory(context.Background(), types.HistoryFilter{ObjectID: task.ID, EventType: types.EventUpdate})
	require.NoError(t, err)
	assert.Len(t, page.Entries, 2)

	fields := map[string]bool{}
	for _, e := range page.Entries {
		fields[e.FieldName] = true
	}
	assert.True(t, fields["title"])
	assert.True(t, fields["description"])
}

func TestDeleteTaskEmitsDeleteAudit(t *testing.T) {
	s := newTestStore(t)
	board := newTestBoard(t, s)
	task := newTestTask(t, s, board, "backlog", "to delete")
	require.NoError(t, s.DeleteTask(context.Background(), task.ID, "tester"))

	page, err := s.GetHistory(context.Background(), types.HistoryFilter{ObjectID: task.ID, EventType: types.EventDelete})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
}

func TestGetHistoryHasMoreAndTotal(t *testing.T) {
	s := newTestStore(t)
	board := newTestBoard(t, s)
	for i := 0; i < 3; i++ {
		newTestTask(t, s, board, "backlog", "task")
	}

	page, err := s.GetHistory(context.Background(), types.HistoryFilter{ObjectType: types.ObjectTask, EventType: types.EventCreate, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Entries, 2)
	assert.True(t, page.HasMore)
}

func TestGetStatsAggregatesByEventAndActor(t *testing.T) {
	s := newTestStore(t)
	board := newTestBoard(t, s)
	newTestTask(t, s, board, "backlog", "one")

	stats, err := s.GetStats(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.ByEvent[types.EventCreate], 1)
	assert.Contains(t, stats.RecentActors, "tester")
}
