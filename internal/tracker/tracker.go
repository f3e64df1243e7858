// Package tracker ties the store, the engines and gamification together for
// the command line and the HTTP API.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/analytics"
	"github.com/julianstephens/cadence/internal/clock"
	"github.com/julianstephens/cadence/internal/constants"
	apperrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/gamification"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/period"
	"github.com/julianstephens/cadence/internal/recorder"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/validation"
)

type Tracker struct {
	Store    storage.Provider
	Engine   *analytics.Engine
	Recorder *recorder.Service
	Awarder  *gamification.Awarder
	Calendar period.Calendar
	Clock    clock.Clock
}

func New(store storage.Provider, cal period.Calendar, clk clock.Clock, catalog *gamification.Catalog) *Tracker {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Tracker{
		Store:    store,
		Engine:   analytics.NewEngine(store, cal, clk),
		Recorder: recorder.NewService(store, cal, clk),
		Awarder:  gamification.NewAwarder(store, catalog, clk),
		Calendar: cal,
		Clock:    clk,
	}
}

// HabitInput is what a caller supplies to create a habit
type HabitInput struct {
	Name             string           `json:"name"`
	Frequency        models.Frequency `json:"frequency"`
	SpecificWeekdays []time.Weekday   `json:"specific_weekdays"`
}

// CreateHabit validates and stores a new habit for the owner
func (t *Tracker) CreateHabit(ownerID string, in HabitInput) (models.Habit, gamification.Outcome, error) {
	habit := validation.Normalize(models.Habit{
		ID:               uuid.New().String(),
		OwnerID:          ownerID,
		Name:             in.Name,
		Frequency:        in.Frequency,
		SpecificWeekdays: in.SpecificWeekdays,
		CreatedAt:        t.Clock.Now().UTC(),
	})
	if err := validation.ValidateHabit(habit); err != nil {
		return models.Habit{}, gamification.Outcome{}, err
	}

	_, err := t.Store.GetHabitByName(ownerID, habit.Name)
	switch {
	case err == nil:
		return models.Habit{}, gamification.Outcome{}, apperrors.Invalid("habit %q already exists", habit.Name)
	case !errors.Is(err, apperrors.ErrNotFound):
		return models.Habit{}, gamification.Outcome{}, apperrors.Store(err)
	}

	if err := t.Store.AddHabit(habit); err != nil {
		return models.Habit{}, gamification.Outcome{}, apperrors.Store(err)
	}
	logger.Info("Habit created", "owner", ownerID, "habit", habit.ID, "name", habit.Name, "frequency", habit.Frequency)

	outcome, err := t.Awarder.OnHabitCreated(ownerID)
	if err != nil {
		logger.Warn("Failed to evaluate badges", "owner", ownerID, "error", err)
	}
	return habit, outcome, nil
}

// ResolveHabit finds a habit by ID, falling back to its exact name
func (t *Tracker) ResolveHabit(ownerID, ref string) (models.Habit, error) {
	habit, err := t.Store.GetHabit(ownerID, ref)
	if err == nil {
		return habit, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return models.Habit{}, apperrors.Store(err)
	}
	habit, err = t.Store.GetHabitByName(ownerID, ref)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.Habit{}, fmt.Errorf("habit %q: %w", ref, apperrors.ErrNotFound)
		}
		return models.Habit{}, apperrors.Store(err)
	}
	return habit, nil
}

func (t *Tracker) DeleteHabit(ownerID, habitID string) error {
	if err := t.Store.DeleteHabit(ownerID, habitID); err != nil {
		return apperrors.Store(err)
	}
	logger.Info("Habit deleted", "owner", ownerID, "habit", habitID)
	return nil
}

// RecordOutcome is the result of recording plus whatever it earned
type RecordOutcome struct {
	recorder.Result
	Streak  int
	Rewards gamification.Outcome
}

// Record writes the completion and, when the period just became completed,
// hands the new streak to gamification. A gamification failure is logged and
// does not undo the record.
func (t *Tracker) Record(ownerID, habitID string, date time.Time, completed bool) (RecordOutcome, error) {
	res, err := t.Recorder.Record(ownerID, habitID, date, completed)
	if err != nil {
		return RecordOutcome{}, err
	}
	out := RecordOutcome{Result: res}

	if !res.BecameCompleted {
		return out, nil
	}

	streak, err := t.Engine.CurrentStreak(ownerID, habitID)
	if err != nil {
		logger.Warn("Failed to compute streak after record", "habit", habitID, "error", err)
		return out, nil
	}
	out.Streak = streak

	rewards, err := t.Awarder.OnCompletion(ownerID, gamification.Completion{
		Habit:  res.Habit,
		Streak: streak,
		Credit: res.FirstCompletion,
	})
	if err != nil {
		logger.Warn("Failed to evaluate badges", "owner", ownerID, "error", err)
		return out, nil
	}
	out.Rewards = rewards
	return out, nil
}

// Summaries returns streak and rate for every habit of the owner
func (t *Tracker) Summaries(ctx context.Context, ownerID string, windowDays int) ([]analytics.Stats, error) {
	habits, err := t.Store.GetAllHabits(ownerID)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	return t.Engine.Summaries(ctx, habits, windowDays)
}

// WindowDays returns the configured rate window, or the default when
// settings cannot be read.
func (t *Tracker) WindowDays() int {
	settings, err := t.Store.GetSettings()
	if err != nil || settings.RateWindowDays <= 0 {
		return constants.DefaultRateWindowDays
	}
	return settings.RateWindowDays
}
