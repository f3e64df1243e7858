// Package recorder writes completion logs. A period holds at most one log;
// recording again for the same period updates it in place.
package recorder

import (
	"time"

	"github.com/julianstephens/cadence/internal/clock"
	apperrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/period"
	"github.com/julianstephens/cadence/internal/storage"
)

type Service struct {
	store storage.LogStore
	cal   period.Calendar
	clock clock.Clock
}

// Result describes what a Record call did
type Result struct {
	Habit     models.Habit
	PeriodKey time.Time
	Completed bool
	// BecameCompleted is true when the period had no completed log before
	// this call and has one now. Of several concurrent calls for one period
	// at most one sees it.
	BecameCompleted bool
	// FirstCompletion is true only the first time the period is ever
	// completed, however often it is unmarked and marked again.
	FirstCompletion bool
}

func NewService(store storage.LogStore, cal period.Calendar, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Service{store: store, cal: cal, clock: clk}
}

// Record marks the period containing date as completed (or not). Dates in a
// period before the habit was created, or in a future period, are refused.
func (s *Service) Record(ownerID, habitID string, date time.Time, completed bool) (Result, error) {
	habit, err := s.store.GetHabit(ownerID, habitID)
	if err != nil {
		return Result{}, apperrors.Store(err)
	}

	key := s.cal.Key(habit.Frequency, date, habit.SpecificWeekdays)

	current := s.cal.Key(habit.Frequency, s.clock.Now(), habit.SpecificWeekdays)
	if key.After(current) {
		return Result{}, apperrors.Invalid("%s is in a future period", s.cal.Format(key))
	}
	first := s.cal.Key(habit.Frequency, habit.CreatedAt, habit.SpecificWeekdays)
	if key.Before(first) {
		return Result{}, apperrors.Invalid("%s is before %q was created", s.cal.Format(key), habit.Name)
	}

	write, err := s.store.UpsertLog(ownerID, habitID, key, completed)
	if err != nil {
		return Result{}, apperrors.Store(err)
	}

	logger.Info("Recorded completion",
		"owner", ownerID,
		"habit", habitID,
		"period", s.cal.Format(key),
		"completed", completed,
		"was_completed", write.WasCompleted,
	)

	return Result{
		Habit:           habit,
		PeriodKey:       key,
		Completed:       completed,
		BecameCompleted: completed && !write.WasCompleted,
		FirstCompletion: write.FirstCompletion,
	}, nil
}
