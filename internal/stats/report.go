package stats

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/compquiz/internal/model"
	"github.com/verte-zerg/compquiz/internal/store"
)

// BuildRunSummary loads every attempt of a run and aggregates it.
func BuildRunSummary(ctx context.Context, st *store.Store, runID string) (model.RunSummary, error) {
	attempts, err := st.ListAttempts(ctx, runID)
	if err != nil {
		return model.RunSummary{}, err
	}
	levels, err := st.LevelSummaries(ctx, runID)
	if err != nil {
		return model.RunSummary{}, err
	}

	elapsed := lo.Map(attempts, func(a model.Attempt, _ int) time.Duration {
		return a.Elapsed
	})
	correct := lo.CountBy(attempts, func(a model.Attempt) bool { return a.Correct })
	errored := lo.CountBy(attempts, func(a model.Attempt) bool { return a.Errored })

	summary := model.RunSummary{
		RunID:   runID,
		Levels:  levels,
		Elapsed: elapsed,
		Correct: correct,
		Total:   len(attempts),
		Errored: errored,
	}
	if len(attempts) > 0 {
		summary.Finished = attempts[len(attempts)-1].AnsweredAt
	}
	return summary, nil
}
