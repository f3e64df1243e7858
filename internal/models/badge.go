package models

import "time"

type BadgeRule string

const (
	RuleCompletedLogs BadgeRule = "completed_logs"
	RuleStreak        BadgeRule = "streak"
	RuleHabitsCreated BadgeRule = "habits_created"
	RulePoints        BadgeRule = "points"
)

// BadgeDefinition describes an achievement from the badge catalog
type BadgeDefinition struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Icon        string    `json:"icon" yaml:"icon"`
	Points      int       `json:"points" yaml:"points"`
	Rule        BadgeRule `json:"rule" yaml:"rule"`
	Threshold   int       `json:"threshold" yaml:"threshold"`
	// Frequency limits streak rules to habits of one frequency
	Frequency Frequency `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	// PerHabit badges can be earned once for every habit
	PerHabit bool `json:"per_habit,omitempty" yaml:"per_habit,omitempty"`
}

// UserBadge is a badge awarded to an owner. InstanceSuffix is set only for
// per-habit badges and distinguishes the habit the badge was earned on.
type UserBadge struct {
	Definition     BadgeDefinition `json:"definition"`
	InstanceSuffix string          `json:"instance_suffix,omitempty"`
	HabitID        string          `json:"habit_id,omitempty"`
	AwardedAt      time.Time       `json:"awarded_at"`
}

// InstanceID is the identifier persisted for this award, unique per owner
func (b UserBadge) InstanceID() string {
	return b.Definition.ID + b.InstanceSuffix
}
