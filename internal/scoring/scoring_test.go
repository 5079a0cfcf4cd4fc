package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/kabanhq/kaban/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIFOScoresAgeInDays(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	task := &types.Task{CreatedAt: now.Add(-72 * time.Hour)}

	score, err := (FIFO{}).Score(context.Background(), task, now)
	require.NoError(t, err)
	assert.Equal(t, 3.0, score)
}

func TestPriorityTakesHighestLabel(t *testing.T) {
	task := &types.Task{Labels: []string{"low", "P1", "other"}}
	score, err := (Priority{}).Score(context.Background(), task, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 500.0, score)
}

func TestPriorityUntaggedIsZero(t *testing.T) {
	task := &types.Task{Labels: []string{"backend"}}
	score, err := (Priority{}).Score(context.Background(), task, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestDueDateOverdue(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	due := now.Add(-48 * time.Hour)
	task := &types.Task{DueDate: &due}

	score, err := (DueDate{}).Score(context.Background(), task, now)
	require.NoError(t, err)
	assert.Equal(t, 1020.0, score)
}

func TestDueDateNoneIsZero(t *testing.T) {
	score, err := (DueDate{}).Score(context.Background(), &types.Task{}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestBlockingUsesInjectedCounter(t *testing.T) {
	b := Blocking{Count: func(_ context.Context, taskID string) (int, error) {
		assert.Equal(t, "t1", taskID)
		return 2, nil
	}}
	score, err := b.Score(context.Background(), &types.Task{ID: "t1"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 100.0, score)
}

func TestRankTasksOrdersDescendingStableOnTies(t *testing.T) {
	svc := NewService()
	svc.AddScorer(Priority{})

	now := time.Now()
	a := &types.Task{ID: "a", Labels: []string{"low"}}
	b := &types.Task{ID: "b", Labels: []string{"low"}}
	c := &types.Task{ID: "c", Labels: []string{"critical"}}

	ranked, err := svc.RankTasks(context.Background(), []*types.Task{a, b, c}, now)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, "c", ranked[0].Task.ID)
	assert.Equal(t, "a", ranked[1].Task.ID)
	assert.Equal(t, "b", ranked[2].Task.ID)
}

func TestScoreTaskBreakdownMatchesScorers(t *testing.T) {
	svc := NewService()
	svc.AddScorer(Priority{})
	svc.AddScorer(FIFO{})

	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	task := &types.Task{Labels: []string{"high"}, CreatedAt: now.Add(-24 * time.Hour)}

	scored, err := svc.ScoreTask(context.Background(), task, now)
	require.NoError(t, err)
	assert.Equal(t, 100.0, scored.Breakdown["priority"])
	assert.Equal(t, 1.0, scored.Breakdown["fifo"])
	assert.Equal(t, 101.0, scored.Total)
}

func TestRemoveScorerDropsFromRotation(t *testing.T) {
	svc := NewService()
	svc.AddScorer(Priority{})
	svc.AddScorer(FIFO{})
	svc.RemoveScorer("fifo")

	task := &types.Task{Labels: []string{"critical"}, CreatedAt: time.Now()}
	scored, err := svc.ScoreTask(context.Background(), task, time.Now())
	require.NoError(t, err)
	_, hasFifo := scored.Breakdown["fifo"]
	assert.False(t, hasFifo)
}
