package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/cadence/internal/clock"
	apperrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/period"
	"github.com/julianstephens/cadence/internal/storage/memory"
)

const owner = "alice"

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	store  *memory.Store
	clock  *clock.FakeClock
	engine *Engine
}

// newFixture freezes "now" at noon on today
func newFixture(t *testing.T, today time.Time) *fixture {
	t.Helper()
	store := memory.NewStore()
	clk := clock.NewFakeClock(today.Add(12 * time.Hour))
	return &fixture{
		store:  store,
		clock:  clk,
		engine: NewEngine(store, period.New(time.UTC), clk),
	}
}

func (f *fixture) habit(t *testing.T, id string, freq models.Frequency, created time.Time, weekdays ...time.Weekday) models.Habit {
	t.Helper()
	h := models.Habit{
		ID:               id,
		OwnerID:          owner,
		Name:             id,
		Frequency:        freq,
		SpecificWeekdays: weekdays,
		CreatedAt:        created,
	}
	require.NoError(t, f.store.AddHabit(h))
	return h
}

func (f *fixture) log(t *testing.T, h models.Habit, completed bool, keys ...time.Time) {
	t.Helper()
	for _, k := range keys {
		_, err := f.store.UpsertLog(owner, h.ID, k, completed)
		require.NoError(t, err)
	}
}

func (f *fixture) streak(t *testing.T, h models.Habit) int {
	t.Helper()
	n, err := f.engine.CurrentStreak(owner, h.ID)
	require.NoError(t, err)
	return n
}

func (f *fixture) rate(t *testing.T, h models.Habit, window int) Rate {
	t.Helper()
	r, err := f.engine.CompletionRate(owner, h.ID, window)
	require.NoError(t, err)
	return r
}

func TestDailyStreak(t *testing.T) {
	today := day(2024, 1, 15)
	created := day(2024, 1, 1)

	tests := []struct {
		name    string
		logs    []time.Time
		want    int
		created time.Time
	}{
		{"no logs", nil, 0, created},
		{"three consecutive days", []time.Time{today.AddDate(0, 0, -2), today.AddDate(0, 0, -1), today}, 3, created},
		{"gap before yesterday", []time.Time{today.AddDate(0, 0, -3), today.AddDate(0, 0, -1), today}, 2, created},
		{"today still open", []time.Time{today.AddDate(0, 0, -2), today.AddDate(0, 0, -1)}, 2, created},
		{"only today", []time.Time{today}, 1, created},
		{"stale", []time.Time{today.AddDate(0, 0, -5)}, 0, created},
		{"last log two days ago", []time.Time{today.AddDate(0, 0, -3), today.AddDate(0, 0, -2)}, 0, created},
		{"future logs ignored", []time.Time{today.AddDate(0, 0, 1), today.AddDate(0, 0, -1)}, 1, created},
		{"logs before creation ignored", []time.Time{day(2024, 1, 11), day(2024, 1, 12), day(2024, 1, 13), day(2024, 1, 14), today}, 2, day(2024, 1, 14)},
		{"created yesterday with today open", []time.Time{day(2024, 1, 13), day(2024, 1, 14)}, 1, day(2024, 1, 14).Add(20 * time.Hour)},
		{"only logs before creation", []time.Time{day(2024, 1, 13), day(2024, 1, 14)}, 0, today},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, today)
			h := f.habit(t, "h", models.FrequencyDaily, tt.created)
			f.log(t, h, true, tt.logs...)
			assert.Equal(t, tt.want, f.streak(t, h))
		})
	}
}

func TestStreakIgnoresNotDoneLogs(t *testing.T) {
	today := day(2024, 1, 15)
	f := newFixture(t, today)
	h := f.habit(t, "h", models.FrequencyDaily, day(2024, 1, 1))

	f.log(t, h, true, day(2024, 1, 13), day(2024, 1, 15))
	f.log(t, h, false, day(2024, 1, 14))

	assert.Equal(t, 1, f.streak(t, h))
}

func TestStreakHabitCreatedToday(t *testing.T) {
	today := day(2024, 1, 15)
	f := newFixture(t, today)
	h := f.habit(t, "h", models.FrequencyDaily, today.Add(9*time.Hour))

	assert.Equal(t, 0, f.streak(t, h))
}

func TestStreakNotFound(t *testing.T) {
	f := newFixture(t, day(2024, 1, 15))
	f.habit(t, "mine", models.FrequencyDaily, day(2024, 1, 1))

	n, err := f.engine.CurrentStreak(owner, "missing")
	assert.Equal(t, NotFoundStreak, n)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	n, err = f.engine.CurrentStreak("mallory", "mine")
	assert.Equal(t, -1, n)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWeeklyStreak(t *testing.T) {
	// Wednesday; the week started Sunday 2024-01-14
	today := day(2024, 1, 17)
	created := day(2023, 12, 1)

	tests := []struct {
		name    string
		logs    []time.Time
		want    int
		created time.Time
	}{
		{"three weeks", []time.Time{day(2024, 1, 14), day(2024, 1, 7), day(2023, 12, 31)}, 3, created},
		{"current week open", []time.Time{day(2024, 1, 7), day(2023, 12, 31)}, 2, created},
		{"gap week", []time.Time{day(2024, 1, 14), day(2023, 12, 31)}, 1, created},
		{"two weeks ago only", []time.Time{day(2023, 12, 31)}, 0, created},
		{"mid-week dates normalize to the week", []time.Time{day(2024, 1, 16), day(2024, 1, 10)}, 2, created},
		// created mid-week, so that week counts but earlier ones do not
		{"weeks before creation ignored", []time.Time{day(2024, 1, 14), day(2024, 1, 7), day(2023, 12, 31)}, 2, day(2024, 1, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, today)
			h := f.habit(t, "h", models.FrequencyWeekly, tt.created)
			f.log(t, h, true, tt.logs...)
			assert.Equal(t, tt.want, f.streak(t, h))
		})
	}
}

func TestMonthlyStreak(t *testing.T) {
	today := day(2024, 3, 31)
	created := day(2023, 6, 1)

	tests := []struct {
		name    string
		logs    []time.Time
		want    int
		created time.Time
	}{
		{"three months", []time.Time{day(2024, 3, 1), day(2024, 2, 1), day(2024, 1, 1)}, 3, created},
		{"current month open", []time.Time{day(2024, 2, 1), day(2024, 1, 1), day(2023, 11, 1)}, 2, created},
		{"across year boundary", []time.Time{day(2024, 3, 1), day(2024, 2, 1), day(2024, 1, 1), day(2023, 12, 1)}, 4, created},
		{"stale", []time.Time{day(2024, 1, 1)}, 0, created},
		{"months before creation ignored", []time.Time{day(2024, 3, 1), day(2024, 2, 1), day(2024, 1, 1)}, 2, day(2024, 2, 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, today)
			h := f.habit(t, "h", models.FrequencyMonthly, tt.created)
			f.log(t, h, true, tt.logs...)
			assert.Equal(t, tt.want, f.streak(t, h))
		})
	}
}

func TestSpecificWeekdayStreak(t *testing.T) {
	mon, wed, fri := day(2024, 1, 15), day(2024, 1, 17), day(2024, 1, 19)
	prevFri := day(2024, 1, 12)
	mwf := []time.Weekday{time.Monday, time.Wednesday, time.Friday}

	tests := []struct {
		name    string
		today   time.Time
		created time.Time
		logs    []time.Time
		want    int
	}{
		{"friday and wednesday logged, monday missed", fri, day(2024, 1, 1), []time.Time{fri, wed}, 2},
		{"whole week", fri, day(2024, 1, 1), []time.Time{fri, wed, mon, prevFri}, 4},
		{"today open", fri, day(2024, 1, 1), []time.Time{wed, mon}, 2},
		{"yesterday was a target day and missed", fri, day(2024, 1, 1), []time.Time{mon}, 0},
		{"non-target today", day(2024, 1, 20), day(2024, 1, 1), []time.Time{fri, wed}, 2},
		{"bounded by creation", fri, wed.Add(10 * time.Hour), []time.Time{fri, wed}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.today)
			h := f.habit(t, "h", models.FrequencyWeekly, tt.created, mwf...)
			f.log(t, h, true, tt.logs...)
			assert.Equal(t, tt.want, f.streak(t, h))
		})
	}
}

func TestInvalidWeekdaysBehaveAsGenericWeekly(t *testing.T) {
	f := newFixture(t, day(2024, 1, 17))
	h := f.habit(t, "h", models.FrequencyWeekly, day(2023, 12, 1), 9, -1)
	f.log(t, h, true, day(2024, 1, 14), day(2024, 1, 7))

	assert.Equal(t, 2, f.streak(t, h))
	assert.InDelta(t, 1.0, float64(f.rate(t, h, 7)), 1e-9)
}

func TestCompletionRateEndToEndScenario(t *testing.T) {
	f := newFixture(t, day(2024, 1, 15))
	h := f.habit(t, "h", models.FrequencyDaily, day(2024, 1, 1))

	f.log(t, h, true, day(2024, 1, 10), day(2024, 1, 11))
	f.log(t, h, false, day(2024, 1, 12))
	f.log(t, h, true, day(2024, 1, 13), day(2024, 1, 14), day(2024, 1, 15))

	assert.Equal(t, 3, f.streak(t, h))
	// five completed days out of the six enumerated (Jan 10-15)
	assert.InDelta(t, 5.0/6.0, float64(f.rate(t, h, 6)), 1e-9)
}

func TestCompletionRate(t *testing.T) {
	mwf := []time.Weekday{time.Monday, time.Wednesday, time.Friday}

	tests := []struct {
		name     string
		today    time.Time
		freq     models.Frequency
		weekdays []time.Weekday
		created  time.Time
		logs     []time.Time
		window   int
		want     Rate
	}{
		{
			name: "daily created yesterday is insufficient", today: day(2024, 1, 15),
			freq: models.FrequencyDaily, created: day(2024, 1, 14), logs: []time.Time{day(2024, 1, 14), day(2024, 1, 15)},
			window: 30, want: InsufficientData,
		},
		{
			name: "daily created today is insufficient", today: day(2024, 1, 15),
			freq: models.FrequencyDaily, created: day(2024, 1, 15), window: 30, want: InsufficientData,
		},
		{
			name: "daily meets floor after three days", today: day(2024, 1, 15),
			freq: models.FrequencyDaily, created: day(2024, 1, 13), logs: []time.Time{day(2024, 1, 13)},
			window: 30, want: Rate(1.0 / 3.0),
		},
		{
			name: "genuine zero", today: day(2024, 1, 15),
			freq: models.FrequencyDaily, created: day(2024, 1, 1), window: 30, want: 0,
		},
		{
			name: "window shorter than history", today: day(2024, 1, 15),
			freq: models.FrequencyDaily, created: day(2023, 1, 1),
			logs:   []time.Time{day(2024, 1, 5), day(2024, 1, 6), day(2024, 1, 15)},
			window: 10, want: Rate(2.0 / 10.0),
		},
		{
			name: "default window", today: day(2024, 1, 30),
			freq: models.FrequencyDaily, created: day(2023, 1, 1), logs: []time.Time{day(2024, 1, 1), day(2023, 12, 31)},
			window: 0, want: Rate(1.0 / 30.0),
		},
		{
			name: "specific weekdays", today: day(2024, 1, 19),
			freq: models.FrequencyWeekly, weekdays: mwf, created: day(2024, 1, 1),
			logs:   []time.Time{day(2024, 1, 15), day(2024, 1, 19), day(2024, 1, 16)},
			window: 7, want: Rate(2.0 / 3.0),
		},
		{
			name: "specific weekdays below floor", today: day(2024, 1, 19),
			freq: models.FrequencyWeekly, weekdays: mwf, created: day(2024, 1, 1),
			logs: []time.Time{day(2024, 1, 19)}, window: 3, want: InsufficientData,
		},
		{
			name: "generic weekly counts the week containing the window start", today: day(2024, 1, 17),
			freq: models.FrequencyWeekly, created: day(2024, 1, 1),
			logs: []time.Time{day(2024, 1, 7), day(2024, 1, 14)}, window: 14, want: Rate(2.0 / 3.0),
		},
		{
			name: "generic weekly first week", today: day(2024, 1, 3),
			freq: models.FrequencyWeekly, created: day(2024, 1, 1), window: 30, want: 0,
		},
		{
			name: "monthly since creation", today: day(2024, 3, 15),
			freq: models.FrequencyMonthly, created: day(2024, 1, 10),
			logs: []time.Time{day(2024, 1, 1), day(2024, 3, 1)}, window: 90, want: Rate(2.0 / 3.0),
		},
		{
			name: "created after now", today: day(2024, 1, 15),
			freq: models.FrequencyDaily, created: day(2024, 2, 1), window: 30, want: InsufficientData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.today)
			h := f.habit(t, "h", tt.freq, tt.created, tt.weekdays...)
			f.log(t, h, true, tt.logs...)

			got := f.rate(t, h, tt.window)
			if tt.want.Insufficient() {
				assert.True(t, got.Insufficient(), "expected insufficient data, got %v", got)
				assert.Equal(t, InsufficientData, got)
				return
			}
			assert.False(t, got.Insufficient())
			assert.InDelta(t, float64(tt.want), float64(got), 1e-9)
		})
	}
}

func TestCompletionRateNotFound(t *testing.T) {
	f := newFixture(t, day(2024, 1, 15))
	r, err := f.engine.CompletionRate(owner, "missing", 30)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, InsufficientData, r)
}

func TestComputationsAreStableAcrossTimezones(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	store := memory.NewStore()
	h := models.Habit{ID: "h", OwnerID: owner, Name: "h", Frequency: models.FrequencyDaily, CreatedAt: day(2024, 1, 1)}
	require.NoError(t, store.AddHabit(h))
	for _, d := range []time.Time{day(2024, 1, 13), day(2024, 1, 14), day(2024, 1, 15)} {
		_, err := store.UpsertLog(owner, h.ID, d, true)
		require.NoError(t, err)
	}

	// 01:00 UTC on Jan 16 is still the evening of Jan 15 in New York
	clk := clock.NewFakeClock(time.Date(2024, 1, 16, 1, 0, 0, 0, time.UTC))

	nyEngine := NewEngine(store, period.New(ny), clk)
	n, err := nyEngine.CurrentStreak(owner, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	utcEngine := NewEngine(store, period.New(time.UTC), clk)
	n, err = utcEngine.CurrentStreak(owner, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "Jan 16 is open in UTC, so the streak counts back from Jan 15")

	clk.AdvanceDays(1)
	n, err = utcEngine.CurrentStreak(owner, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

type failingStore struct {
	memory.Store
	err error
}

func (s *failingStore) GetHabit(string, string) (models.Habit, error) {
	return models.Habit{}, s.err
}

func (s *failingStore) ListCompletedLogs(string, string) ([]models.CompletionLog, error) {
	return nil, s.err
}

func TestStoreFailuresSurfaceAsUnavailable(t *testing.T) {
	store := &failingStore{err: errors.New("disk I/O error")}
	engine := NewEngine(store, period.New(nil), clock.NewFakeClock(day(2024, 1, 15)))

	n, err := engine.CurrentStreak(owner, "h")
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 0, n)

	_, err = engine.CompletionRate(owner, "h", 30)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)

	_, err = engine.Summaries(context.Background(), []models.Habit{{ID: "h", OwnerID: owner}}, 30)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

func TestSummaries(t *testing.T) {
	f := newFixture(t, day(2024, 1, 15))
	a := f.habit(t, "a", models.FrequencyDaily, day(2024, 1, 1))
	b := f.habit(t, "b", models.FrequencyWeekly, day(2024, 1, 1))
	c := f.habit(t, "c", models.FrequencyMonthly, day(2024, 1, 1))

	f.log(t, a, true, day(2024, 1, 14), day(2024, 1, 15))
	f.log(t, b, true, day(2024, 1, 14), day(2024, 1, 7))

	stats, err := f.engine.Summaries(context.Background(), []models.Habit{c, a, b}, 7)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, "c", stats[0].Habit.ID)
	assert.Equal(t, 0, stats[0].Streak)
	assert.Equal(t, Rate(0), stats[0].Rate)

	assert.Equal(t, "a", stats[1].Habit.ID)
	assert.Equal(t, 2, stats[1].Streak)
	assert.InDelta(t, 2.0/7.0, float64(stats[1].Rate), 1e-9)
	assert.Equal(t, 2, stats[1].Completed)
	assert.Equal(t, 7, stats[1].WindowDays)

	assert.Equal(t, "b", stats[2].Habit.ID)
	assert.Equal(t, 2, stats[2].Streak)

	single, err := f.engine.Stats(owner, a.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, stats[1], single)
}

func TestSummariesHonorsCancellation(t *testing.T) {
	f := newFixture(t, day(2024, 1, 15))
	h := f.habit(t, "a", models.FrequencyDaily, day(2024, 1, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.engine.Summaries(ctx, []models.Habit{h}, 30)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRatePercent(t *testing.T) {
	assert.InDelta(t, 50.0, Rate(0.5).Percent(), 1e-9)
	assert.True(t, InsufficientData.Insufficient())
	assert.False(t, Rate(0).Insufficient())
}
