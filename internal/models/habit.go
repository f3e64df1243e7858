package models

import (
	"encoding/json"
	"time"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Valid reports whether f is one of the supported frequencies
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Habit represents a recurring practice to track
type Habit struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id" validate:"required"`
	Name      string    `json:"name" validate:"required,min=2,max=50"`
	Frequency Frequency `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	// SpecificWeekdays restricts a weekly habit to the listed days, each of
	// which then forms its own period. Empty for generic weekly habits.
	SpecificWeekdays []time.Weekday `json:"specific_weekdays,omitempty" validate:"omitempty,dive,min=0,max=6"`
	CreatedAt        time.Time      `json:"created_at"`
}

// HasSpecificWeekdays reports whether the habit is tracked per weekday
// instead of once per calendar week.
func (h Habit) HasSpecificWeekdays() bool {
	return h.Frequency == FrequencyWeekly && len(h.SpecificWeekdays) > 0
}

// CompletionLog records whether a habit was done for one period. There is at
// most one log per (HabitID, PeriodKey); later records update it in place.
type CompletionLog struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	HabitID    string    `json:"habit_id"`
	PeriodKey  time.Time `json:"period_key"`
	Completed  bool      `json:"completed"`
	RecordedAt time.Time `json:"recorded_at"`
}

// LogWrite describes what a log write changed
type LogWrite struct {
	// WasCompleted is the completed flag before the write. False when the
	// period had no log.
	WasCompleted bool
	// FirstCompletion is true when this write completed the period and no
	// earlier write for it ever had. Unmarking and marking again does not
	// repeat it.
	FirstCompletion bool
}

// EncodeWeekdays serializes weekdays for storage as a JSON array of ints.
// An empty list is stored as an empty string.
func EncodeWeekdays(weekdays []time.Weekday) (string, error) {
	if len(weekdays) == 0 {
		return "", nil
	}
	ints := make([]int, len(weekdays))
	for i, w := range weekdays {
		ints[i] = int(w)
	}
	data, err := json.Marshal(ints)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeWeekdays is the inverse of EncodeWeekdays
func DecodeWeekdays(s string) ([]time.Weekday, error) {
	if s == "" {
		return nil, nil
	}
	var ints []int
	if err := json.Unmarshal([]byte(s), &ints); err != nil {
		return nil, err
	}
	weekdays := make([]time.Weekday, len(ints))
	for i, n := range ints {
		weekdays[i] = time.Weekday(n)
	}
	return weekdays, nil
}
