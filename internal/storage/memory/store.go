// Package memory is a process-local storage.Provider. Nothing survives Close.
package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/constants"
	apperrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/models"
)

type logKey struct {
	habitID   string
	periodKey string
}

type Store struct {
	mu       sync.RWMutex
	settings models.Settings
	habits   map[string]models.Habit
	logs     map[logKey]models.CompletionLog
	credited map[logKey]bool
	points   map[string]int
	badges   map[string]map[string]models.UserBadge
}

func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.settings = models.Settings{
		Timezone:       constants.DefaultTimezone,
		RateWindowDays: constants.DefaultRateWindowDays,
	}
	s.habits = make(map[string]models.Habit)
	s.logs = make(map[logKey]models.CompletionLog)
	s.credited = make(map[logKey]bool)
	s.points = make(map[string]int)
	s.badges = make(map[string]map[string]models.UserBadge)
}

func (s *Store) Init() error  { return nil }
func (s *Store) Load() error  { return nil }
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

func (s *Store) GetConfigPath() string { return constants.MemoryConfig }

func (s *Store) GetSettings() (models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *Store) SaveSettings(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

func cloneHabit(h models.Habit) models.Habit {
	if h.SpecificWeekdays != nil {
		h.SpecificWeekdays = append([]time.Weekday(nil), h.SpecificWeekdays...)
	}
	return h
}

func (s *Store) AddHabit(habit models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.habits[habit.ID]; ok {
		return fmt.Errorf("habit %s already exists", habit.ID)
	}
	for _, h := range s.habits {
		if h.OwnerID == habit.OwnerID && h.Name == habit.Name {
			return fmt.Errorf("habit with name %q already exists", habit.Name)
		}
	}
	s.habits[habit.ID] = cloneHabit(habit)
	return nil
}

func (s *Store) habitLocked(ownerID, habitID string) (models.Habit, error) {
	h, ok := s.habits[habitID]
	if !ok || h.OwnerID != ownerID {
		return models.Habit{}, fmt.Errorf("habit %s: %w", habitID, apperrors.ErrNotFound)
	}
	return h, nil
}

func (s *Store) GetHabit(ownerID, habitID string) (models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, err := s.habitLocked(ownerID, habitID)
	if err != nil {
		return models.Habit{}, err
	}
	return cloneHabit(h), nil
}

func (s *Store) GetHabitByName(ownerID, name string) (models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, h := range s.habits {
		if h.OwnerID == ownerID && h.Name == name {
			return cloneHabit(h), nil
		}
	}
	return models.Habit{}, fmt.Errorf("habit %q: %w", name, apperrors.ErrNotFound)
}

func (s *Store) GetAllHabits(ownerID string) ([]models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var habits []models.Habit
	for _, h := range s.habits {
		if h.OwnerID == ownerID {
			habits = append(habits, cloneHabit(h))
		}
	}
	sort.Slice(habits, func(i, j int) bool {
		if !habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].CreatedAt.Before(habits[j].CreatedAt)
		}
		return habits[i].Name < habits[j].Name
	})
	return habits, nil
}

func (s *Store) DeleteHabit(ownerID, habitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.habitLocked(ownerID, habitID); err != nil {
		return err
	}
	delete(s.habits, habitID)
	for k := range s.logs {
		if k.habitID == habitID {
			delete(s.logs, k)
			delete(s.credited, k)
		}
	}
	for id, b := range s.badges[ownerID] {
		if b.HabitID == habitID {
			delete(s.badges[ownerID], id)
		}
	}
	return nil
}

func (s *Store) FindLog(ownerID, habitID string, periodKey time.Time) (models.CompletionLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := periodKey.Format(constants.DateFormat)
	l, ok := s.logs[logKey{habitID: habitID, periodKey: day}]
	if !ok || l.OwnerID != ownerID {
		return models.CompletionLog{}, fmt.Errorf("log %s@%s: %w", habitID, day, apperrors.ErrNotFound)
	}
	return l, nil
}

func (s *Store) UpsertLog(ownerID, habitID string, periodKey time.Time, completed bool) (models.LogWrite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.habitLocked(ownerID, habitID); err != nil {
		return models.LogWrite{}, err
	}

	day := periodKey.Format(constants.DateFormat)
	k := logKey{habitID: habitID, periodKey: day}
	l, ok := s.logs[k]
	if !ok {
		// Keys are stored as zone-less dates, the same as the SQL stores.
		key, err := time.Parse(constants.DateFormat, day)
		if err != nil {
			return models.LogWrite{}, err
		}
		l = models.CompletionLog{
			ID:        uuid.New().String(),
			OwnerID:   ownerID,
			HabitID:   habitID,
			PeriodKey: key,
		}
	}

	write := models.LogWrite{
		WasCompleted:    l.Completed,
		FirstCompletion: completed && !s.credited[k],
	}
	l.Completed = completed
	l.RecordedAt = time.Now().UTC()
	s.logs[k] = l
	if completed {
		s.credited[k] = true
	}
	return write, nil
}

func (s *Store) collectLogs(ownerID, habitID string, completedOnly bool) []models.CompletionLog {
	var logs []models.CompletionLog
	for k, l := range s.logs {
		if k.habitID != habitID || l.OwnerID != ownerID {
			continue
		}
		if completedOnly && !l.Completed {
			continue
		}
		logs = append(logs, l)
	}
	return logs
}

func (s *Store) ListCompletedLogs(ownerID, habitID string) ([]models.CompletionLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLogs(ownerID, habitID, true), nil
}

func (s *Store) ListLogs(ownerID, habitID string) ([]models.CompletionLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := s.collectLogs(ownerID, habitID, false)
	sort.Slice(logs, func(i, j int) bool { return logs[i].PeriodKey.Before(logs[j].PeriodKey) })
	return logs, nil
}

func (s *Store) CountCompletedLogs(ownerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, l := range s.logs {
		if l.OwnerID == ownerID && l.Completed {
			count++
		}
	}
	return count, nil
}

func (s *Store) GetPoints(ownerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.points[ownerID], nil
}

func (s *Store) AddPoints(ownerID string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points[ownerID] += delta
	return s.points[ownerID], nil
}

func (s *Store) AwardBadge(ownerID string, badge models.UserBadge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := s.badges[ownerID]
	if owned == nil {
		owned = make(map[string]models.UserBadge)
		s.badges[ownerID] = owned
	}
	id := badge.InstanceID()
	if _, ok := owned[id]; ok {
		return false, nil
	}
	if badge.AwardedAt.IsZero() {
		badge.AwardedAt = time.Now()
	}
	// Only the definition ID is persisted, as in the SQL stores.
	badge.Definition = models.BadgeDefinition{ID: badge.Definition.ID}
	badge.AwardedAt = badge.AwardedAt.UTC().Truncate(time.Second)
	owned[id] = badge
	return true, nil
}

func (s *Store) ListBadges(ownerID string) ([]models.UserBadge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var badges []models.UserBadge
	for _, b := range s.badges[ownerID] {
		badges = append(badges, b)
	}
	sort.Slice(badges, func(i, j int) bool {
		if !badges[i].AwardedAt.Equal(badges[j].AwardedAt) {
			return badges[i].AwardedAt.Before(badges[j].AwardedAt)
		}
		return badges[i].InstanceID() < badges[j].InstanceID()
	})
	return badges, nil
}
