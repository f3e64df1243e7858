package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/cadence/internal/analytics"
	"github.com/julianstephens/cadence/internal/clock"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/period"
	"github.com/julianstephens/cadence/internal/storage/memory"
	"github.com/julianstephens/cadence/internal/tracker"
)

func TestFormatFrequency(t *testing.T) {
	tests := []struct {
		habit models.Habit
		want  string
	}{
		{models.Habit{Frequency: models.FrequencyDaily}, "daily"},
		{models.Habit{Frequency: models.FrequencyWeekly}, "weekly"},
		{models.Habit{Frequency: models.FrequencyWeekly, SpecificWeekdays: []time.Weekday{time.Monday, time.Friday}}, "weekly on Mon,Fri"},
		{models.Habit{Frequency: models.FrequencyMonthly}, "monthly"},
	}
	for _, tt := range tests {
		if got := FormatFrequency(tt.habit); got != tt.want {
			t.Errorf("FormatFrequency(%+v) = %q, want %q", tt.habit, got, tt.want)
		}
	}
}

func TestFormatRate(t *testing.T) {
	if got := FormatRate(analytics.InsufficientData); got != "n/a" {
		t.Errorf("FormatRate(insufficient) = %q", got)
	}
	if got := FormatRate(analytics.Rate(0.5)); got != "50%" {
		t.Errorf("FormatRate(0.5) = %q, want 50%%", got)
	}
	if got := FormatRate(analytics.Rate(0)); got != "0%" {
		t.Errorf("FormatRate(0) = %q, want 0%%", got)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"Habit", "Streak"}, [][]string{{"Read", "3"}, {"Gym", "2"}})
	for _, want := range []string{"Habit", "Streak", "Read", "Gym"} {
		if !strings.Contains(out, want) {
			t.Errorf("table is missing %q:\n%s", want, out)
		}
	}
}

func TestParseDate(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	ctx := &Context{Tracker: tracker.New(memory.NewStore(), period.New(loc), clock.NewFakeClock(now), nil)}

	got, err := ctx.ParseDate("")
	if err != nil || !got.Equal(now) {
		t.Errorf("ParseDate(\"\") = %v, %v; want %v", got, err, now)
	}

	got, err = ctx.ParseDate("2024-03-10")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("ParseDate = %v, want %v", got, want)
	}

	if _, err := ctx.ParseDate("10.03.2024"); err == nil {
		t.Error("expected an error for a malformed date")
	}
}
