package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/models"
)

func validHabit() models.Habit {
	return models.Habit{
		ID:        "h1",
		OwnerID:   "alice",
		Name:      "Read",
		Frequency: models.FrequencyDaily,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestValidateHabit(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(h *models.Habit)
		wantErr string
	}{
		{"valid daily", func(h *models.Habit) {}, ""},
		{"valid weekly with weekdays", func(h *models.Habit) {
			h.Frequency = models.FrequencyWeekly
			h.SpecificWeekdays = []time.Weekday{time.Monday, time.Wednesday, time.Friday}
		}, ""},
		{"valid monthly", func(h *models.Habit) { h.Frequency = models.FrequencyMonthly }, ""},
		{"name too short", func(h *models.Habit) { h.Name = "R" }, "between 2 and 50"},
		{"name only short after trim", func(h *models.Habit) { h.Name = "  R  " }, "between 2 and 50"},
		{"name too long", func(h *models.Habit) { h.Name = strings.Repeat("a", 51) }, "between 2 and 50"},
		{"name at max in runes", func(h *models.Habit) { h.Name = strings.Repeat("é", 50) }, ""},
		{"unknown frequency", func(h *models.Habit) { h.Frequency = "hourly" }, "frequency"},
		{"missing owner", func(h *models.Habit) { h.OwnerID = "" }, "owner"},
		{"weekdays on daily", func(h *models.Habit) {
			h.SpecificWeekdays = []time.Weekday{time.Monday}
		}, "only allowed for weekly"},
		{"weekday out of range", func(h *models.Habit) {
			h.Frequency = models.FrequencyWeekly
			h.SpecificWeekdays = []time.Weekday{time.Monday, 7}
		}, "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := validHabit()
			tt.mutate(&h)
			err := ValidateHabit(h)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidConfiguration)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNormalize(t *testing.T) {
	h := validHabit()
	h.Name = "  Stretch "
	h.Frequency = models.FrequencyWeekly
	h.SpecificWeekdays = []time.Weekday{time.Friday, time.Monday, time.Friday}

	n := Normalize(h)
	assert.Equal(t, "Stretch", n.Name)
	assert.Equal(t, []time.Weekday{time.Monday, time.Friday}, n.SpecificWeekdays)
	// the input slice is left alone
	assert.Equal(t, []time.Weekday{time.Friday, time.Monday, time.Friday}, h.SpecificWeekdays)

	h.SpecificWeekdays = []time.Weekday{}
	assert.Nil(t, Normalize(h).SpecificWeekdays)
}

func TestValidateHabits_DuplicateNames(t *testing.T) {
	a := validHabit()
	b := validHabit()
	b.ID, b.Name = "h2", "read "
	c := validHabit()
	c.ID, c.Name = "h3", "Walk"

	result := ValidateHabits([]models.Habit{a, b, c})
	require.True(t, result.HasConflicts())
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, ConflictDuplicateHabitName, result.Conflicts[0].Type)
	assert.Equal(t, []string{"h1", "h2"}, result.Conflicts[0].HabitIDs)
	assert.Contains(t, result.FormatReport(), "Duplicate habit name")
}

func TestValidateHabits_InvalidStoredHabit(t *testing.T) {
	bad := validHabit()
	bad.SpecificWeekdays = []time.Weekday{time.Tuesday}
	bad.ID = ""

	result := ValidateHabits([]models.Habit{bad})
	var types []ConflictType
	for _, c := range result.Conflicts {
		types = append(types, c.Type)
	}
	assert.ElementsMatch(t, []ConflictType{ConflictMissingHabitID, ConflictInvalidHabit}, types)
}

func TestValidateHabits_Clean(t *testing.T) {
	result := ValidateHabits([]models.Habit{validHabit()})
	assert.False(t, result.HasConflicts())
	assert.Equal(t, "No conflicts detected.", result.FormatReport())
}
