package sqlite

import (
	"context"
	"testing"

	"github.com/kabanhq/kaban/internal/kerrors"
	"github.com/kabanhq/kaban/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTask(t *testing.T, s *Store, board *types.Board, columnID, title string) *types.Task {
	t.Helper()
	task := &types.Task{BoardID: board.ID, ColumnID: columnID, Title: title}
	require.NoError(t, s.CreateTask(context.Background(), task, "tester"))
	return task
}

func TestCreateTaskAllocatesShortIDAndPosition(t *testing.T) {
	s := newTestStore(t)
	board := newTestBoard(t, s)

	first := newTestTask(t, s, board, "backlog", "first")
	second := newTestTask(t, s, board, "backlog", "second")

	assert.Equal(t, int64(1), first.BoardTaskID)
	assert.Equal(t, int64(2), second.BoardTaskID)
	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)
	assert.Len(t, first.ID, 26)
	assert.Equal(t, int64(1), first.Version)
}

func TestGetTaskByBoardTaskID(t *testing.T) {
	s := newTestStore(t)
	board := newTestBoard(t, s)
	created := newTestTask(t, s, board, "backlog", "findme")

	got, err := s.GetTaskByBoardTaskID(context.Background(), board.ID, created.BoardTaskID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestFindTasksByPrefixAmbiguous(t *testing.T) {
	s := newTestStore(t)
	board := newTestBoard(t, s)
	newTestTask(t, s, board, "backlog", "one")
	newTestTask(t, s, board, "backlog", "two")

	matches, err := s.FindTasksByPrefix(context.Background(), board.ID, "")
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestListTasksExcludesArchivedByDefault(t *testing.T) {
	s := newTestStore(t)
	board := newTestBoard(t, s)
	task := newTestTask(t, s, board, "backlog", "archive me")

	_, err := s.ArchiveTask(context.Background(), task.ID, "tester")
	require.NoError(t, err)

	visible, err := s.ListTasks(context.Background(), board.ID, types.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, visible)

	withArchived, err := s.ListTasks(context.Background(), board.ID, types.TaskFilter{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, withArchived, 1)
}

func TestUpdateTaskBumpsVersionAndRejectsStaleExpectedVersion(t *testing.T) {
	s := newTestStore(t)
	board := newTestBoard(t, s)
	task := newTestTask(t, s, board, "backlog", "update me")

	title := "updated title"
	updated, err := s.UpdateTask(context.Background(), task.ID, task.Version, types.TaskUpdate{Title: &title}, "tester")
	require.NoError(t, err)
	assert.Equal(t, "updated title", updated.Title)
	assert.Equal(t, task.Version+1, updated.Version)

	_, err = s.UpdateTask(context.Background(), task.ID, task.Version, types.TaskUpdate{Title: &title}, "tester")
	require.Error(t, err)
	assert.Equal(t, kerrors.Conflict, kerrors.KindOf(err))
}

func TestMoveTaskStampsStartedAndCompleted(t *testing.T) {
	s := newTestStore(t)
	board := newTestBoard(t, s)
	task := newTestTask(t, s, board, "backlog", "move me")

	moved, err := s.MoveTask(context.Background(), task.ID, "in_progress", false, "tester")
	require.NoError(t, err)
	require.NotNil(t, moved.StartedAt)
	assert.Nil(t, moved.CompletedAt)

	done, err := s.MoveTask(context.Background(), task.ID, "done", false, "tester")
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
}

func TestMoveTaskEnforcesWIPLimit(t *testing.T) {
	s := newTestStore(t)
	board := newTestBoard(t, s)

	for i := 0; i < 2; i++ {
		task := newTestTask(t, s, board, "backlog", "filler")
		_, err := s.MoveTask(context.Background(), task.ID, "review", false, "tester")
		require.NoError(t, err)
	}

	overflow := newTestTask(t, s, board, "backlog", "overflow")
	_, err := s.MoveTask(context.Background(), overflow.ID, "review", false, "tester")
	require.Error(t, err)
	assert.Equal(t, kerrors.Validation, kerrors.KindOf(err))

	_, err = s.MoveTask(context.Background(), overflow.ID, "review", true, "tester")
	require.NoError(t, err)
}

func TestMoveTaskRefusesWhenBlocked(t *testing.T) {
	s := newTestStore(t)
	board := newTestBoard(t, s)
	blocker := newTestTask(t, s, board, "backlog", "blocker")
	blocked := newTestTask(t, s, board, "backlog", "blocked")

	require.NoError(t, s.AddLink(context.Background(), blocked.ID, blocker.ID, types.LinkBlockedBy, "tester"))

	_, err := s.MoveTask(context.Background(), blocked.ID, "todo", false, "tester")
	require.Error(t, err)
	assert.Equal(t, kerrors.Blocked, kerrors.KindOf(err))

	// moving to backlog is always allowed even while blocked.
	_, err = s.MoveTask(context.Background(), blocked.ID, "backlog", false, "tester")
	require.NoError(t, err)
}

func TestArchiveAndRestoreTask(t *testing.T) {
	s := newTestStore(t)
	board := newTestBoard(t, s)
	task := newTestTask(t, s, board, "backlog", "toggle me")

	archived, err := s.ArchiveTask(context.Background(), task.ID, "tester")
	require.NoError(t, err)
	assert.True(t, archived.Archived)
	require.NotNil(t, archived.ArchivedAt)

	restored, err := s.RestoreTask(context.Background(), task.ID, "tester")
	require.NoError(t, err)
	assert.False(t, restored.Archived)
	assert.Nil(t, restored.ArchivedAt)
}

func TestAssignAndUnassignTask(t *testing.T) {
	s := newTestStore(t)
	board := newTestBoard(t, s)
	task := newTestTask(t, s, board, "backlog", "assign me")

	assigned, err := s.AssignTask(context.Background(), task.ID, "claude", "tester")
	require.NoError(t, err)
	assert.Equal(t, "claude", assigned.AssignedTo)

	unassigned, err := s.UnassignTask(context.Background(), task.ID, "tester")
	require.NoError(t, err)
	assert.Empty(t, unassigned.AssignedTo)
}

func TestDeleteTaskRemovesLinks(t *testing.T) {
	s := newTestStore(t)
	board := newTestBoard(t, s)
	a := newTestTask(t, s, board, "backlog", "a")
	b := newTestTask(t, s, board, "backlog", "b")
	require.NoError(t, s.AddLink(context.Background(), a.ID, b.ID, types.LinkRelated, "tester"))

	require.NoError(t, s.DeleteTask(context.Background(), a.ID, "tester"))

	links, err := s.GetLinks(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Empty(t, links.Related)
}
