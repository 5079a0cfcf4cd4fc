package scoring

import (
	"context"
	"strings"
	"time"

	"github.com/kabanhq/kaban/internal/types"
)

// priorityWeights maps case-insensitive labels to a priority score.
// Untagged tasks score 0.
var priorityWeights = map[string]float64{
	"critical": 1000, "p0": 1000,
	"urgent": 500, "p1": 500,
	"high": 100, "p2": 100,
	"medium": 50, "p3": 50,
	"low": 10, "p4": 10,
}

// FIFO scores by age: (now - createdAt) in days. Prevents starvation of
// old, low-priority tasks.
type FIFO struct{}

func (FIFO) Name() string        { return "fifo" }
func (FIFO) Description() string { return "age in days since creation" }
func (FIFO) Score(_ context.Context, task *types.Task, now time.Time) (float64, error) {
	days := now.Sub(task.CreatedAt).Hours() / 24
	if days < 0 {
		return 0, nil
	}
	return days, nil
}

// Priority scores by the highest-weighted priority label on the task.
type Priority struct{}

func (Priority) Name() string        { return "priority" }
func (Priority) Description() string { return "highest-weighted priority label" }
func (Priority) Score(_ context.Context, task *types.Task, _ time.Time) (float64, error) {
	var best float64
	for _, label := range task.Labels {
		if w, ok := priorityWeights[strings.ToLower(label)]; ok && w > best {
			best = w
		}
	}
	return best, nil
}

// DueDate scores by proximity to (or past) the task's due date.
// Overdue tasks score highest; tasks with no due date score 0.
type DueDate struct{}

func (DueDate) Name() string        { return "due-date" }
func (DueDate) Description() string { return "urgency from proximity to due date" }
func (DueDate) Score(_ context.Context, task *types.Task, now time.Time) (float64, error) {
	if task.DueDate == nil {
		return 0, nil
	}
	d := task.DueDate.Sub(now).Hours() / 24 // days remaining, negative if overdue
	switch {
	case d < 0:
		return 1000 + (-d)*10, nil
	case d <= 1:
		return 500, nil
	case d <= 7:
		return 100 + (7-d)*10, nil
	default:
		score := 50 - d
		if score < 0 {
			score = 0
		}
		return score, nil
	}
}

// BlockingCounter is injected by the dependency service (C4) so the
// blocking scorer never touches storage directly.
type BlockingCounter func(ctx context.Context, taskID string) (int, error)

// Blocking scores by how many other tasks this one blocks: a task that
// unblocks five others is more urgent than one that unblocks none.
type Blocking struct {
	Count BlockingCounter
}

func (Blocking) Name() string        { return "blocking" }
func (Blocking) Description() string { return "count of tasks this one blocks, times 50" }
func (b Blocking) Score(ctx context.Context, task *types.Task, _ time.Time) (float64, error) {
	if b.Count == nil {
		return 0, nil
	}
	n, err := b.Count(ctx, task.ID)
	if err != nil {
		return 0, err
	}
	return float64(n) * 50, nil
}

// CombinedWeights configures Combined's weighted sum. An all-zero value
// falls back to DefaultWeights (priority 0.5, dueDate 0.3, fifo 0.2,
// blocking 0 i.e. opt-in); otherwise every field is used as given, so a
// zero field drops that scorer from the sum.
type CombinedWeights struct {
	Priority float64
	DueDate  float64
	FIFO     float64
	Blocking float64
}

// DefaultWeights is the board-level default combined weighting.
func DefaultWeights() CombinedWeights {
	return CombinedWeights{Priority: 0.5, DueDate: 0.3, FIFO: 0.2}
}

// Combined is a weighted sum of the four base scorers. It is the
// board-level default scorer.
type Combined struct {
	Weights  CombinedWeights
	Blocking BlockingCounter
}

func (Combined) Name() string        { return "combined" }
func (Combined) Description() string { return "weighted sum of priority, due-date, fifo, and blocking" }
func (c Combined) Score(ctx context.Context, task *types.Task, now time.Time) (float64, error) {
	weights := c.Weights
	if weights == (CombinedWeights{}) {
		weights = DefaultWeights()
	}

	priority, err := (Priority{}).Score(ctx, task, now)
	if err != nil {
		return 0, err
	}
	due, err := (DueDate{}).Score(ctx, task, now)
	if err != nil {
		return 0, err
	}
	fifo, err := (FIFO{}).Score(ctx, task, now)
	if err != nil {
		return 0, err
	}

	total := priority*weights.Priority + due*weights.DueDate + fifo*weights.FIFO

	if c.Blocking != nil && weights.Blocking != 0 {
		blocking, err := (Blocking{Count: c.Blocking}).Score(ctx, task, now)
		if err != nil {
			return 0, err
		}
		total += blocking * weights.Blocking
	}

	return total, nil
}
