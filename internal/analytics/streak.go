package analytics

import (
	"time"

	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/period"
)

// NotFoundStreak is returned alongside errors.ErrNotFound for unknown habits
const NotFoundStreak = -1

// CurrentStreak returns the number of consecutive completed periods ending
// at the current one. The current period may still be open: if it has no log
// yet the streak is counted from the period before it.
func (e *Engine) CurrentStreak(ownerID, habitID string) (int, error) {
	habit, logs, err := e.load(ownerID, habitID)
	if err != nil {
		if isNotFound(err) {
			return NotFoundStreak, err
		}
		return 0, err
	}

	streak := Streak(e.cal, habit, logs, e.clock.Now())
	logger.Debug("Computed streak", "habit", habitID, "streak", streak)
	return streak, nil
}

// Streak is the pure computation behind CurrentStreak.
func Streak(cal period.Calendar, habit models.Habit, logs []models.CompletionLog, now time.Time) int {
	keys := completedKeys(cal, habit, logs)
	if len(keys) == 0 {
		return 0
	}

	today := cal.Midnight(now)
	if set, ok := usesWeekdays(habit); ok {
		return weekdayStreak(cal, set, keys, today, cal.Midnight(habit.CreatedAt))
	}
	first := cal.Key(habit.Frequency, cal.Midnight(habit.CreatedAt), nil)
	return periodStreak(cal, habit.Frequency, keys, cal.Key(habit.Frequency, today, nil), first)
}

// weekdayStreak walks back one day at a time over target weekdays. A target
// day without a log ends the streak, except today which may still be logged.
func weekdayStreak(cal period.Calendar, set period.WeekdaySet, keys map[string]time.Time, today, created time.Time) int {
	streak := 0
	for day := today; !day.Before(created); day = day.AddDate(0, 0, -1) {
		if !set.Contains(day.Weekday()) {
			continue
		}
		if _, ok := keys[cal.Format(day)]; ok {
			streak++
			continue
		}
		if !day.Equal(today) {
			break
		}
	}
	return streak
}

// periodStreak anchors on the current period, or the one before it when the
// current period has no log yet, then counts back until the first gap or the
// period the habit was created in.
func periodStreak(cal period.Calendar, freq models.Frequency, keys map[string]time.Time, current, first time.Time) int {
	sorted := descending(keys, current)
	if len(sorted) == 0 {
		return 0
	}

	expected := current
	if !sorted[0].Equal(expected) {
		expected = cal.Previous(freq, expected)
		if !sorted[0].Equal(expected) {
			return 0
		}
	}

	streak := 0
	for _, k := range sorted {
		if expected.Before(first) || k.Before(expected) {
			break
		}
		if k.Equal(expected) {
			streak++
			expected = cal.Previous(freq, expected)
		}
	}
	return streak
}
