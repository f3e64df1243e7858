package storage

import (
	"time"

	"github.com/julianstephens/cadence/internal/models"
)

// LogStore is the read/write access the engines need. Every call is scoped by
// owner; a habit that belongs to someone else is reported as errors.ErrNotFound.
type LogStore interface {
	GetHabit(ownerID, habitID string) (models.Habit, error)
	// FindLog matches the period key exactly and returns errors.ErrNotFound
	// when no log exists for it.
	FindLog(ownerID, habitID string, periodKey time.Time) (models.CompletionLog, error)
	// UpsertLog creates the log for the period or updates it in place and
	// reports the state the write replaced. The read and the write are one
	// step: of several concurrent writers to a period, only one can see it
	// go from not completed to completed. RecordedAt advances on every call.
	UpsertLog(ownerID, habitID string, periodKey time.Time, completed bool) (models.LogWrite, error)
	// ListCompletedLogs returns the habit's completed logs in no particular order.
	ListCompletedLogs(ownerID, habitID string) ([]models.CompletionLog, error)
}

type Provider interface {
	LogStore

	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Habits
	AddHabit(models.Habit) error
	GetHabitByName(ownerID, name string) (models.Habit, error)
	GetAllHabits(ownerID string) ([]models.Habit, error)
	// DeleteHabit removes the habit together with its logs and per-habit badges.
	DeleteHabit(ownerID, habitID string) error

	// Logs
	ListLogs(ownerID, habitID string) ([]models.CompletionLog, error)
	CountCompletedLogs(ownerID string) (int, error)

	// Gamification
	GetPoints(ownerID string) (int, error)
	AddPoints(ownerID string, delta int) (int, error)
	// AwardBadge stores the badge unless the owner already holds that instance.
	// It reports whether the badge was newly awarded.
	AwardBadge(ownerID string, badge models.UserBadge) (bool, error)
	ListBadges(ownerID string) ([]models.UserBadge, error)

	// Utils
	GetConfigPath() string
}
