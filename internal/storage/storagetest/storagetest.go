// Package storagetest holds the behaviour every storage.Provider must share.
// Each implementation runs Run from its own tests.
package storagetest

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage"
)

// Factory returns an initialized, empty provider. It should register its own
// cleanup with t.
type Factory func(t *testing.T) storage.Provider

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewHabit builds a habit for owner with a fresh ID.
func NewHabit(owner, name string, freq models.Frequency, weekdays ...time.Weekday) models.Habit {
	return models.Habit{
		ID:               uuid.New().String(),
		OwnerID:          owner,
		Name:             name,
		Frequency:        freq,
		SpecificWeekdays: weekdays,
		CreatedAt:        time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

func mustAddHabit(t *testing.T, s storage.Provider, h models.Habit) models.Habit {
	t.Helper()
	if err := s.AddHabit(h); err != nil {
		t.Fatalf("AddHabit(%s) failed: %v", h.Name, err)
	}
	return h
}

// Run exercises the full provider contract against stores built by factory.
func Run(t *testing.T, factory Factory) {
	t.Run("Settings", func(t *testing.T) { testSettings(t, factory(t)) })
	t.Run("Habits", func(t *testing.T) { testHabits(t, factory(t)) })
	t.Run("OwnerScoping", func(t *testing.T) { testOwnerScoping(t, factory(t)) })
	t.Run("UpsertIdempotent", func(t *testing.T) { testUpsertIdempotent(t, factory(t)) })
	t.Run("ListCompletedLogs", func(t *testing.T) { testListCompletedLogs(t, factory(t)) })
	t.Run("DeleteCascades", func(t *testing.T) { testDeleteCascades(t, factory(t)) })
	t.Run("Points", func(t *testing.T) { testPoints(t, factory(t)) })
	t.Run("Badges", func(t *testing.T) { testBadges(t, factory(t)) })
	t.Run("ConcurrentUpserts", func(t *testing.T) { testConcurrentUpserts(t, factory(t)) })
	t.Run("CompletionCreditedOnce", func(t *testing.T) { testCompletionCreditedOnce(t, factory(t)) })
}

func testSettings(t *testing.T, s storage.Provider) {
	settings, err := s.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.Timezone != "UTC" || settings.RateWindowDays != 30 {
		t.Errorf("unexpected default settings: %+v", settings)
	}

	settings.Timezone = "Europe/Berlin"
	settings.RateWindowDays = 14
	if err := s.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	updated, err := s.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if updated != settings {
		t.Errorf("expected %+v, got %+v", settings, updated)
	}
}

func testHabits(t *testing.T, s storage.Provider) {
	h := mustAddHabit(t, s, NewHabit("alice", "Stretch", models.FrequencyWeekly, time.Monday, time.Wednesday, time.Friday))
	mustAddHabit(t, s, NewHabit("alice", "Read", models.FrequencyDaily))

	got, err := s.GetHabit("alice", h.ID)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if got.Name != "Stretch" || got.Frequency != models.FrequencyWeekly || got.OwnerID != "alice" {
		t.Errorf("unexpected habit: %+v", got)
	}
	if len(got.SpecificWeekdays) != 3 || got.SpecificWeekdays[1] != time.Wednesday {
		t.Errorf("weekdays not round-tripped: %v", got.SpecificWeekdays)
	}
	if !got.CreatedAt.Equal(h.CreatedAt) {
		t.Errorf("created_at not round-tripped: %v vs %v", got.CreatedAt, h.CreatedAt)
	}

	byName, err := s.GetHabitByName("alice", "Read")
	if err != nil {
		t.Fatalf("GetHabitByName failed: %v", err)
	}
	if len(byName.SpecificWeekdays) != 0 {
		t.Errorf("daily habit should have no weekdays, got %v", byName.SpecificWeekdays)
	}

	all, err := s.GetAllHabits("alice")
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 habits, got %d", len(all))
	}

	if err := s.AddHabit(NewHabit("alice", "Read", models.FrequencyDaily)); err == nil {
		t.Error("expected duplicate habit name to be rejected")
	}

	_, err = s.GetHabit("alice", "missing")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing habit, got %v", err)
	}
	_, err = s.GetHabitByName("alice", "missing")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing name, got %v", err)
	}
}

func testOwnerScoping(t *testing.T, s storage.Provider) {
	h := mustAddHabit(t, s, NewHabit("alice", "Meditate", models.FrequencyDaily))
	mustAddHabit(t, s, NewHabit("bob", "Meditate", models.FrequencyDaily))

	if _, err := s.GetHabit("bob", h.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("bob must not see alice's habit, got %v", err)
	}
	if _, err := s.UpsertLog("bob", h.ID, day(2024, 1, 2), true); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("bob must not log against alice's habit, got %v", err)
	}
	if err := s.DeleteHabit("bob", h.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("bob must not delete alice's habit, got %v", err)
	}

	if _, err := s.UpsertLog("alice", h.ID, day(2024, 1, 2), true); err != nil {
		t.Fatalf("UpsertLog failed: %v", err)
	}
	if _, err := s.FindLog("bob", h.ID, day(2024, 1, 2)); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("bob must not find alice's log, got %v", err)
	}
	logs, err := s.ListCompletedLogs("bob", h.ID)
	if err != nil {
		t.Fatalf("ListCompletedLogs failed: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("bob must not list alice's logs, got %d", len(logs))
	}

	bobs, err := s.GetAllHabits("bob")
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	if len(bobs) != 1 {
		t.Errorf("expected bob to own 1 habit, got %d", len(bobs))
	}
}

func testUpsertIdempotent(t *testing.T, s storage.Provider) {
	h := mustAddHabit(t, s, NewHabit("alice", "Run", models.FrequencyDaily))
	key := day(2024, 1, 10)

	if _, err := s.FindLog("alice", h.ID, key); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before the first record, got %v", err)
	}

	write, err := s.UpsertLog("alice", h.ID, key, true)
	if err != nil {
		t.Fatalf("UpsertLog failed: %v", err)
	}
	if write.WasCompleted || !write.FirstCompletion {
		t.Errorf("first record = %+v, want a first completion of an empty period", write)
	}
	first, err := s.FindLog("alice", h.ID, key)
	if err != nil {
		t.Fatalf("FindLog failed: %v", err)
	}

	write, err = s.UpsertLog("alice", h.ID, key, true)
	if err != nil {
		t.Fatalf("second UpsertLog failed: %v", err)
	}
	if !write.WasCompleted || write.FirstCompletion {
		t.Errorf("second record = %+v, want an already completed period", write)
	}
	second, err := s.FindLog("alice", h.ID, key)
	if err != nil {
		t.Fatalf("FindLog failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("upsert created a new log: %s vs %s", first.ID, second.ID)
	}
	if !second.Completed {
		t.Error("expected log to stay completed")
	}
	if second.RecordedAt.Before(first.RecordedAt) {
		t.Errorf("recorded_at went backwards: %v -> %v", first.RecordedAt, second.RecordedAt)
	}
	if !second.PeriodKey.Equal(key) {
		t.Errorf("period key = %v, want %v", second.PeriodKey, key)
	}

	if _, err := s.UpsertLog("alice", h.ID, key, false); err != nil {
		t.Fatalf("UpsertLog(false) failed: %v", err)
	}
	all, err := s.ListLogs("alice", h.ID)
	if err != nil {
		t.Fatalf("ListLogs failed: %v", err)
	}
	if len(all) != 1 || all[0].Completed {
		t.Errorf("expected exactly one not-done log, got %+v", all)
	}

	if _, err := s.UpsertLog("alice", "missing", key, true); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a missing habit, got %v", err)
	}
}

func testListCompletedLogs(t *testing.T, s storage.Provider) {
	h := mustAddHabit(t, s, NewHabit("alice", "Journal", models.FrequencyDaily))
	other := mustAddHabit(t, s, NewHabit("alice", "Floss", models.FrequencyDaily))

	records := []struct {
		key       time.Time
		completed bool
	}{
		{day(2024, 1, 12), true},
		{day(2024, 1, 10), true},
		{day(2024, 1, 11), false},
	}
	for _, r := range records {
		if _, err := s.UpsertLog("alice", h.ID, r.key, r.completed); err != nil {
			t.Fatalf("UpsertLog failed: %v", err)
		}
	}
	if _, err := s.UpsertLog("alice", other.ID, day(2024, 1, 10), true); err != nil {
		t.Fatalf("UpsertLog failed: %v", err)
	}

	completed, err := s.ListCompletedLogs("alice", h.ID)
	if err != nil {
		t.Fatalf("ListCompletedLogs failed: %v", err)
	}
	if len(completed) != 2 {
		t.Fatalf("expected 2 completed logs, got %d", len(completed))
	}
	for _, l := range completed {
		if !l.Completed || l.HabitID != h.ID {
			t.Errorf("unexpected log in completed list: %+v", l)
		}
	}

	all, err := s.ListLogs("alice", h.ID)
	if err != nil {
		t.Fatalf("ListLogs failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 logs, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if !all[i-1].PeriodKey.Before(all[i].PeriodKey) {
			t.Errorf("ListLogs not ordered by period: %v then %v", all[i-1].PeriodKey, all[i].PeriodKey)
		}
	}

	count, err := s.CountCompletedLogs("alice")
	if err != nil {
		t.Fatalf("CountCompletedLogs failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 completed logs across habits, got %d", count)
	}
}

func testDeleteCascades(t *testing.T, s storage.Provider) {
	h := mustAddHabit(t, s, NewHabit("alice", "Swim", models.FrequencyDaily))
	keep := mustAddHabit(t, s, NewHabit("alice", "Walk", models.FrequencyDaily))

	for _, id := range []string{h.ID, keep.ID} {
		if _, err := s.UpsertLog("alice", id, day(2024, 1, 5), true); err != nil {
			t.Fatalf("UpsertLog failed: %v", err)
		}
	}
	perHabit := models.UserBadge{
		Definition:     models.BadgeDefinition{ID: "habit_master_30"},
		InstanceSuffix: "_on_" + h.ID,
		HabitID:        h.ID,
	}
	if _, err := s.AwardBadge("alice", perHabit); err != nil {
		t.Fatalf("AwardBadge failed: %v", err)
	}
	if _, err := s.AwardBadge("alice", models.UserBadge{Definition: models.BadgeDefinition{ID: "first_habit_completed"}}); err != nil {
		t.Fatalf("AwardBadge failed: %v", err)
	}

	if err := s.DeleteHabit("alice", h.ID); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}

	if _, err := s.GetHabit("alice", h.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected deleted habit to be gone, got %v", err)
	}
	logs, err := s.ListLogs("alice", h.ID)
	if err != nil {
		t.Fatalf("ListLogs failed: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("expected logs to cascade, %d remain", len(logs))
	}
	kept, err := s.ListLogs("alice", keep.ID)
	if err != nil {
		t.Fatalf("ListLogs failed: %v", err)
	}
	if len(kept) != 1 {
		t.Errorf("other habit's logs must survive, got %d", len(kept))
	}

	badges, err := s.ListBadges("alice")
	if err != nil {
		t.Fatalf("ListBadges failed: %v", err)
	}
	if len(badges) != 1 || badges[0].Definition.ID != "first_habit_completed" {
		t.Errorf("expected only the owner-wide badge to remain, got %+v", badges)
	}

	if err := s.DeleteHabit("alice", h.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func testPoints(t *testing.T, s storage.Provider) {
	points, err := s.GetPoints("alice")
	if err != nil {
		t.Fatalf("GetPoints failed: %v", err)
	}
	if points != 0 {
		t.Errorf("expected 0 points initially, got %d", points)
	}

	if total, err := s.AddPoints("alice", 10); err != nil || total != 10 {
		t.Fatalf("AddPoints = %d, %v", total, err)
	}
	if total, err := s.AddPoints("alice", 25); err != nil || total != 35 {
		t.Fatalf("AddPoints = %d, %v", total, err)
	}

	if points, _ := s.GetPoints("bob"); points != 0 {
		t.Errorf("points leaked across owners: %d", points)
	}
}

func testBadges(t *testing.T, s storage.Provider) {
	h := mustAddHabit(t, s, NewHabit("alice", "Yoga", models.FrequencyDaily))

	first := models.UserBadge{
		Definition: models.BadgeDefinition{ID: "first_habit_completed", Name: "First Step"},
		AwardedAt:  time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
	}
	awarded, err := s.AwardBadge("alice", first)
	if err != nil || !awarded {
		t.Fatalf("AwardBadge = %v, %v", awarded, err)
	}
	awarded, err = s.AwardBadge("alice", first)
	if err != nil || awarded {
		t.Fatalf("second AwardBadge should be a no-op, got %v, %v", awarded, err)
	}

	perHabit := models.UserBadge{
		Definition:     models.BadgeDefinition{ID: "habit_master_30"},
		InstanceSuffix: "_on_" + h.ID,
		HabitID:        h.ID,
		AwardedAt:      time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
	}
	if awarded, err := s.AwardBadge("alice", perHabit); err != nil || !awarded {
		t.Fatalf("AwardBadge(per habit) = %v, %v", awarded, err)
	}
	if awarded, err := s.AwardBadge("bob", first); err != nil || !awarded {
		t.Fatalf("badges must be per owner, got %v, %v", awarded, err)
	}

	badges, err := s.ListBadges("alice")
	if err != nil {
		t.Fatalf("ListBadges failed: %v", err)
	}
	if len(badges) != 2 {
		t.Fatalf("expected 2 badges, got %d", len(badges))
	}
	if badges[0].InstanceID() != "first_habit_completed" {
		t.Errorf("badges not ordered by award time: %+v", badges)
	}
	if badges[1].InstanceID() != "habit_master_30_on_"+h.ID || badges[1].HabitID != h.ID {
		t.Errorf("per-habit badge not round-tripped: %+v", badges[1])
	}
	if !badges[0].AwardedAt.Equal(first.AwardedAt) {
		t.Errorf("awarded_at = %v, want %v", badges[0].AwardedAt, first.AwardedAt)
	}
}

func testConcurrentUpserts(t *testing.T, s storage.Provider) {
	h := mustAddHabit(t, s, NewHabit("alice", "Hydrate", models.FrequencyDaily))
	key := day(2024, 1, 20)

	type result struct {
		write models.LogWrite
		err   error
	}
	var wg sync.WaitGroup
	results := make(chan result, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, err := s.UpsertLog("alice", h.ID, key, true)
			results <- result{w, err}
		}()
	}
	wg.Wait()
	close(results)

	transitions, firsts := 0, 0
	for r := range results {
		if r.err != nil {
			t.Fatalf("concurrent UpsertLog failed: %v", r.err)
		}
		if !r.write.WasCompleted {
			transitions++
		}
		if r.write.FirstCompletion {
			firsts++
		}
	}
	if transitions != 1 {
		t.Errorf("%d writers saw the period go from open to completed, want 1", transitions)
	}
	if firsts != 1 {
		t.Errorf("%d writers saw a first completion, want 1", firsts)
	}

	logs, err := s.ListLogs("alice", h.ID)
	if err != nil {
		t.Fatalf("ListLogs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Errorf("expected a single log after concurrent upserts, got %d", len(logs))
	}
}

func testCompletionCreditedOnce(t *testing.T, s storage.Provider) {
	h := mustAddHabit(t, s, NewHabit("alice", "Stretch", models.FrequencyDaily))
	key := day(2024, 1, 8)

	steps := []struct {
		completed        bool
		wantWasCompleted bool
		wantFirst        bool
	}{
		{false, false, false},
		{true, false, true},
		{false, true, false},
		{true, false, false},
		{true, true, false},
	}
	for i, step := range steps {
		write, err := s.UpsertLog("alice", h.ID, key, step.completed)
		if err != nil {
			t.Fatalf("step %d: UpsertLog failed: %v", i, err)
		}
		if write.WasCompleted != step.wantWasCompleted || write.FirstCompletion != step.wantFirst {
			t.Errorf("step %d: UpsertLog(%v) = %+v, want was=%v first=%v",
				i, step.completed, write, step.wantWasCompleted, step.wantFirst)
		}
	}

	// A different period of the same habit is credited on its own.
	write, err := s.UpsertLog("alice", h.ID, day(2024, 1, 9), true)
	if err != nil {
		t.Fatalf("UpsertLog failed: %v", err)
	}
	if !write.FirstCompletion {
		t.Errorf("next period = %+v, want a first completion", write)
	}
}
