// Package analytics derives the current streak and the trailing completion
// rate of a habit from its completed logs.
package analytics

import (
	"errors"
	"sort"
	"time"

	"github.com/julianstephens/cadence/internal/clock"
	apperrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/period"
	"github.com/julianstephens/cadence/internal/storage"
)

// Engine answers streak and rate queries against a store. It holds no state
// between calls; every query rescans the habit's logs.
type Engine struct {
	store storage.LogStore
	cal   period.Calendar
	clock clock.Clock
}

func NewEngine(store storage.LogStore, cal period.Calendar, clk clock.Clock) *Engine {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Engine{store: store, cal: cal, clock: clk}
}

// Calendar returns the calendar the engine computes periods with
func (e *Engine) Calendar() period.Calendar {
	return e.cal
}

// load fetches the habit and its completed logs. A missing habit keeps its
// ErrNotFound; any other store failure becomes ErrStoreUnavailable.
func (e *Engine) load(ownerID, habitID string) (models.Habit, []models.CompletionLog, error) {
	habit, err := e.store.GetHabit(ownerID, habitID)
	if err != nil {
		return models.Habit{}, nil, apperrors.Store(err)
	}
	logs, err := e.store.ListCompletedLogs(ownerID, habitID)
	if err != nil {
		return models.Habit{}, nil, apperrors.Store(err)
	}
	return habit, logs, nil
}

// completedKeys maps every completed log onto the period key of its date, so
// the set only contains canonical keys. Logs that are not marked completed
// are skipped even if a store returns them.
func completedKeys(cal period.Calendar, habit models.Habit, logs []models.CompletionLog) map[string]time.Time {
	keys := make(map[string]time.Time, len(logs))
	for _, l := range logs {
		if !l.Completed {
			continue
		}
		k := cal.Key(habit.Frequency, cal.Date(l.PeriodKey), habit.SpecificWeekdays)
		keys[cal.Format(k)] = k
	}
	return keys
}

// descending returns the keys not after limit, most recent first
func descending(keys map[string]time.Time, limit time.Time) []time.Time {
	out := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		if !k.After(limit) {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out
}

// usesWeekdays reports whether the habit is tracked per target weekday. Only
// weekdays in range count; a weekly habit whose list is all invalid is
// treated as generic weekly.
func usesWeekdays(habit models.Habit) (period.WeekdaySet, bool) {
	if habit.Frequency != models.FrequencyWeekly {
		return 0, false
	}
	set := period.Weekdays(habit.SpecificWeekdays)
	return set, !set.Empty()
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
