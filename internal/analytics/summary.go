package analytics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/cadence/internal/constants"
	apperrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/models"
)

// Stats bundles both metrics for one habit
type Stats struct {
	Habit      models.Habit `json:"habit"`
	Streak     int          `json:"streak"`
	Rate       Rate         `json:"rate"`
	WindowDays int          `json:"window_days"`
	Completed  int          `json:"completed_total"`
}

// Stats computes streak and rate from a single read of the habit's logs
func (e *Engine) Stats(ownerID, habitID string, windowDays int) (Stats, error) {
	habit, logs, err := e.load(ownerID, habitID)
	if err != nil {
		return Stats{}, err
	}
	return e.stats(habit, logs, windowDays), nil
}

func (e *Engine) stats(habit models.Habit, logs []models.CompletionLog, windowDays int) Stats {
	if windowDays <= 0 {
		windowDays = constants.DefaultRateWindowDays
	}
	now := e.clock.Now()
	return Stats{
		Habit:      habit,
		Streak:     Streak(e.cal, habit, logs, now),
		Rate:       CompletionRate(e.cal, habit, logs, now, windowDays),
		WindowDays: windowDays,
		Completed:  len(completedKeys(e.cal, habit, logs)),
	}
}

// Summaries computes Stats for each habit concurrently. Results keep the
// order of habits. The first store failure cancels the remaining work.
func (e *Engine) Summaries(ctx context.Context, habits []models.Habit, windowDays int) ([]Stats, error) {
	out := make([]Stats, len(habits))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.SummaryConcurrency)
	for i, habit := range habits {
		i, habit := i, habit
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			logs, err := e.store.ListCompletedLogs(habit.OwnerID, habit.ID)
			if err != nil {
				return apperrors.Store(err)
			}
			out[i] = e.stats(habit, logs, windowDays)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
