// Package period maps dates to the canonical period key shared by every log
// of a habit for one day, week or month.
package period

import (
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
)

// Calendar performs all period arithmetic in a single location. Dates given in
// another location are converted before they are truncated to midnight.
type Calendar struct {
	loc *time.Location
}

// New returns a Calendar for loc. A nil location means UTC.
func New(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

// Location returns the calendar's location
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Midnight returns the start of t's day in the calendar's location
func (c Calendar) Midnight(t time.Time) time.Time {
	t = t.In(c.Location())
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location())
}

// Date returns midnight, in the calendar's location, of the calendar date t
// shows in its own location. Stores hand back period keys as zone-less dates,
// so they are re-anchored with Date rather than converted with Midnight.
func (c Calendar) Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location())
}

// Key returns the period key for date:
//   - daily: the date at midnight
//   - weekly: the Sunday starting the date's week, or the date itself when the
//     habit is restricted to specific weekdays
//   - monthly: the first of the month
//
// Out-of-range weekdays are ignored. A weekday list that is empty after that
// behaves like a generic weekly habit. Unknown frequencies are keyed per day.
func (c Calendar) Key(freq models.Frequency, date time.Time, weekdays []time.Weekday) time.Time {
	day := c.Midnight(date)
	switch freq {
	case models.FrequencyWeekly:
		if !Weekdays(weekdays).Empty() {
			return day
		}
		return day.AddDate(0, 0, -int(day.Weekday()))
	case models.FrequencyMonthly:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, c.Location())
	default:
		return day
	}
}

// Previous returns the key of the period immediately before key. Monthly keys
// are normalized to the first of the previous month regardless of key's day.
func (c Calendar) Previous(freq models.Frequency, key time.Time) time.Time {
	return c.step(freq, key, -1)
}

// Next returns the key of the period immediately after key
func (c Calendar) Next(freq models.Frequency, key time.Time) time.Time {
	return c.step(freq, key, 1)
}

func (c Calendar) step(freq models.Frequency, key time.Time, n int) time.Time {
	day := c.Midnight(key)
	switch freq {
	case models.FrequencyWeekly:
		return day.AddDate(0, 0, 7*n)
	case models.FrequencyMonthly:
		return time.Date(day.Year(), day.Month()+time.Month(n), 1, 0, 0, 0, 0, c.Location())
	default:
		return day.AddDate(0, 0, n)
	}
}

// Format renders a key in its persisted YYYY-MM-DD form
func (c Calendar) Format(key time.Time) string {
	return key.In(c.Location()).Format(constants.DateFormat)
}

// Parse reads a YYYY-MM-DD date as midnight in the calendar's location
func (c Calendar) Parse(s string) (time.Time, error) {
	return time.ParseInLocation(constants.DateFormat, s, c.Location())
}
