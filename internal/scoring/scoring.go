// Package scoring ranks tasks by urgency. A Scorer is a small, pure,
// named function from a task to a non-negative number; the
// ScoringService holds an ordered set of active scorers and sums their
// output per task.
package scoring

import (
	"context"
	"sort"
	"time"

	"github.com/kabanhq/kaban/internal/types"
)

// Scorer assigns an urgency score to a task. Implementations must be
// deterministic for a given now: same task, same now, same score.
type Scorer interface {
	Name() string
	Description() string
	Score(ctx context.Context, task *types.Task, now time.Time) (float64, error)
}

// Scored is one task's total score plus the per-scorer breakdown that
// produced it, keyed by scorer name.
type Scored struct {
	Task      *types.Task
	Total     float64
	Breakdown map[string]float64
}

// Service holds an ordered, named set of active scorers.
type Service struct {
	order   []string
	scorers map[string]Scorer
}

// NewService returns an empty service; callers add scorers with AddScorer.
func NewService() *Service {
	return &Service{scorers: make(map[string]Scorer)}
}

// AddScorer appends s to the active set, or replaces it in place if a
// scorer with the same name is already active.
func (svc *Service) AddScorer(s Scorer) {
	name := s.Name()
	if _, exists := svc.scorers[name]; !exists {
		svc.order = append(svc.order, name)
	}
	svc.scorers[name] = s
}

// RemoveScorer drops a scorer by name. A miss is a no-op.
func (svc *Service) RemoveScorer(name string) {
	if _, ok := svc.scorers[name]; !ok {
		return
	}
	delete(svc.scorers, name)
	for i, n := range svc.order {
		if n == name {
			svc.order = append(svc.order[:i], svc.order[i+1:]...)
			break
		}
	}
}

// ScoreTask evaluates every active scorer against task and sums the result.
func (svc *Service) ScoreTask(ctx context.Context, task *types.Task, now time.Time) (Scored, error) {
	result := Scored{Task: task, Breakdown: make(map[string]float64, len(svc.order))}
	for _, name := range svc.order {
		s := svc.scorers[name]
		score, err := s.Score(ctx, task, now)
		if err != nil {
			return Scored{}, err
		}
		result.Breakdown[name] = score
		result.Total += score
	}
	return result, nil
}

// RankTasks scores every task and returns them sorted by Total
// descending, stable on ties (original order preserved among equals).
func (svc *Service) RankTasks(ctx context.Context, tasks []*types.Task, now time.Time) ([]Scored, error) {
	out := make([]Scored, len(tasks))
	for i, t := range tasks {
		scored, err := svc.ScoreTask(ctx, t, now)
		if err != nil {
			return nil, err
		}
		out[i] = scored
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	return out, nil
}
