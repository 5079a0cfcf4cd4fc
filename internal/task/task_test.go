package task

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kabanhq/kaban/internal/kerrors"
	"github.com/kabanhq/kaban/internal/storage/sqlite"
	"github.com/kabanhq/kaban/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	store, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "kaban.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	board, err := store.InitializeBoard(context.Background(), types.DefaultConfig("test"))
	require.NoError(t, err)

	return New(store), board.ID
}

func TestResolveByShortID(t *testing.T) {
	svc, boardID := newTestService(t)
	created, err := svc.AddTask(context.Background(), boardID, "tester", AddTaskParams{Title: "find me"})
	require.NoError(t, err)

	got, err := svc.Resolve(context.Background(), boardID, "#1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	got2, err := svc.Resolve(context.Background(), boardID, "1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got2.ID)
}

func TestResolveByFullID(t *testing.T) {
	svc, boardID := newTestService(t)
	created, err := svc.AddTask(context.Background(), boardID, "tester", AddTaskParams{Title: "full id"})
	require.NoError(t, err)

	got, err := svc.Resolve(context.Background(), boardID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestResolveByPrefixAmbiguous(t *testing.T) {
	svc, boardID := newTestService(t)
	one, err := svc.AddTask(context.Background(), boardID, "tester", AddTaskParams{Title: "one"})
	require.NoError(t, err)
	two, err := svc.AddTask(context.Background(), boardID, "tester", AddTaskParams{Title: "two"})
	require.NoError(t, err)

	// Both ids are stamped moments apart, so their first 4 (timestamp)
	// characters agree and that prefix matches both tasks.
	prefix := one.ID[:4]
	require.Equal(t, prefix, two.ID[:4])

	_, err = svc.Resolve(context.Background(), boardID, prefix)
	require.Error(t, err)
	assert.Equal(t, kerrors.AmbiguousID, kerrors.KindOf(err))
}

func TestResolveNotFound(t *testing.T) {
	svc, boardID := newTestService(t)
	_, err := svc.Resolve(context.Background(), boardID, "zzzz")
	require.Error(t, err)
	assert.Equal(t, kerrors.NotFound, kerrors.KindOf(err))
}

func TestAddTaskValidatesTitle(t *testing.T) {
	svc, boardID := newTestService(t)
	_, err := svc.AddTask(context.Background(), boardID, "tester", AddTaskParams{Title: ""})
	require.Error(t, err)
	assert.Equal(t, kerrors.Validation, kerrors.KindOf(err))
}

func TestAddTaskRejectsUnknownColumn(t *testing.T) {
	svc, boardID := newTestService(t)
	_, err := svc.AddTask(context.Background(), boardID, "tester", AddTaskParams{Title: "x", ColumnID: "nope"})
	require.Error(t, err)
}

func TestUpdateTaskParsesRelativeDueDate(t *testing.T) {
	svc, boardID := newTestService(t)
	created, err := svc.AddTask(context.Background(), boardID, "tester", AddTaskParams{Title: "needs a date"})
	require.NoError(t, err)

	updated, err := svc.UpdateTask(context.Background(), created.ID, created.Version, UpdateTaskParams{DueDate: "1d"}, "tester")
	require.NoError(t, err)
	require.NotNil(t, updated.DueDate)

	cleared, err := svc.UpdateTask(context.Background(), created.ID, updated.Version, UpdateTaskParams{ClearDueDate: true}, "tester")
	require.NoError(t, err)
	assert.Nil(t, cleared.DueDate)
}

func TestUpdateTaskRejectsBadTitle(t *testing.T) {
	svc, boardID := newTestService(t)
	created, err := svc.AddTask(context.Background(), boardID, "tester", AddTaskParams{Title: "ok"})
	require.NoError(t, err)

	_, err = svc.UpdateTask(context.Background(), created.ID, created.Version, UpdateTaskParams{Title: strPtr("")}, "tester")
	require.Error(t, err)
	assert.Equal(t, kerrors.Validation, kerrors.KindOf(err))
}

func strPtr(s string) *string { return &s }

func TestAddTaskWithDependsOnCreatesBlockedByLink(t *testing.T) {
	svc, boardID := newTestService(t)
	blocker, err := svc.AddTask(context.Background(), boardID, "tester", AddTaskParams{Title: "blocker"})
	require.NoError(t, err)

	dependent, err := svc.AddTask(context.Background(), boardID, "tester", AddTaskParams{Title: "dependent", DependsOn: []string{blocker.ID}})
	require.NoError(t, err)
	assert.NotEmpty(t, dependent.ID)

	links, err := svc.store.GetLinks(context.Background(), dependent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{blocker.ID}, links.BlockedBy)
}
