package gamification

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/clock"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/models"
)

// Store is the persistence the awarder needs; storage.Provider satisfies it.
type Store interface {
	GetAllHabits(ownerID string) ([]models.Habit, error)
	CountCompletedLogs(ownerID string) (int, error)
	GetPoints(ownerID string) (int, error)
	AddPoints(ownerID string, delta int) (int, error)
	AwardBadge(ownerID string, badge models.UserBadge) (bool, error)
	ListBadges(ownerID string) ([]models.UserBadge, error)
}

type Awarder struct {
	store   Store
	catalog *Catalog
	clock   clock.Clock
}

// Outcome reports the owner's point total after an event and the badges the
// event earned.
type Outcome struct {
	Points  int                `json:"points"`
	Awarded []models.UserBadge `json:"awarded"`
}

func NewAwarder(store Store, catalog *Catalog, clk clock.Clock) *Awarder {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Awarder{store: store, catalog: catalog, clock: clk}
}

func (a *Awarder) Catalog() *Catalog {
	return a.catalog
}

// facts is what badge rules are evaluated against
type facts struct {
	habit     *models.Habit
	streak    int
	completed int
	habits    int
	points    int
}

// Completion is a period of a habit that just became completed
type Completion struct {
	Habit models.Habit
	// Streak is the habit's streak after the record
	Streak int
	// Credit is false when the period had been completed before and was
	// unmarked in between. Completion points are paid once per period.
	Credit bool
}

// OnCompletion credits a completed period and awards any badges now earned
func (a *Awarder) OnCompletion(ownerID string, c Completion) (Outcome, error) {
	var points int
	var err error
	if c.Credit {
		points, err = a.store.AddPoints(ownerID, a.catalog.PointsPerCompletion)
	} else {
		points, err = a.store.GetPoints(ownerID)
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to update points: %w", err)
	}

	f, err := a.facts(ownerID)
	if err != nil {
		return Outcome{}, err
	}
	f.habit, f.streak, f.points = &c.Habit, c.Streak, points

	return a.evaluate(ownerID, f)
}

// OnHabitCreated awards badges for the number of habits an owner has
func (a *Awarder) OnHabitCreated(ownerID string) (Outcome, error) {
	f, err := a.facts(ownerID)
	if err != nil {
		return Outcome{}, err
	}
	if f.points, err = a.store.GetPoints(ownerID); err != nil {
		return Outcome{}, fmt.Errorf("failed to load points: %w", err)
	}
	return a.evaluate(ownerID, f)
}

func (a *Awarder) facts(ownerID string) (facts, error) {
	habits, err := a.store.GetAllHabits(ownerID)
	if err != nil {
		return facts{}, fmt.Errorf("failed to load habits: %w", err)
	}
	completed, err := a.store.CountCompletedLogs(ownerID)
	if err != nil {
		return facts{}, fmt.Errorf("failed to count completions: %w", err)
	}
	return facts{habits: len(habits), completed: completed}, nil
}

// evaluate awards activity badges first, then point badges, so points earned
// from badges in this round count toward the point thresholds.
func (a *Awarder) evaluate(ownerID string, f facts) (Outcome, error) {
	out := Outcome{Points: f.points, Awarded: []models.UserBadge{}}

	for _, pointsPass := range []bool{false, true} {
		for _, def := range a.catalog.Badges {
			if (def.Rule == models.RulePoints) != pointsPass {
				continue
			}
			if !earned(def, f, out.Points) {
				continue
			}

			badge := models.UserBadge{Definition: def, AwardedAt: a.clock.Now()}
			if def.PerHabit {
				badge.InstanceSuffix = "_on_" + f.habit.ID
				badge.HabitID = f.habit.ID
			}

			isNew, err := a.store.AwardBadge(ownerID, badge)
			if err != nil {
				return out, fmt.Errorf("failed to award badge %s: %w", badge.InstanceID(), err)
			}
			if !isNew {
				continue
			}

			logger.Info("Badge awarded", "owner", ownerID, "badge", badge.InstanceID(), "points", def.Points)
			out.Awarded = append(out.Awarded, badge)
			if def.Points > 0 {
				if out.Points, err = a.store.AddPoints(ownerID, def.Points); err != nil {
					return out, fmt.Errorf("failed to add badge points: %w", err)
				}
			}
		}
	}
	return out, nil
}

func earned(def models.BadgeDefinition, f facts, points int) bool {
	switch def.Rule {
	case models.RuleCompletedLogs:
		return f.completed >= def.Threshold
	case models.RuleHabitsCreated:
		return f.habits >= def.Threshold
	case models.RulePoints:
		return points >= def.Threshold
	case models.RuleStreak:
		if f.habit == nil {
			return false
		}
		if def.Frequency != "" && def.Frequency != f.habit.Frequency {
			return false
		}
		return f.streak >= def.Threshold
	}
	return false
}

// Badges returns the owner's badges with their catalog definitions filled in.
// Badges no longer in the catalog keep their id as the name.
func (a *Awarder) Badges(ownerID string) ([]models.UserBadge, error) {
	badges, err := a.store.ListBadges(ownerID)
	if err != nil {
		return nil, err
	}
	for i, b := range badges {
		if def, ok := a.catalog.Lookup(b.Definition.ID); ok {
			badges[i].Definition = def
		} else if b.Definition.Name == "" {
			badges[i].Definition.Name = b.Definition.ID
		}
	}
	return badges, nil
}

// Points returns the owner's current point total
func (a *Awarder) Points(ownerID string) (int, error) {
	return a.store.GetPoints(ownerID)
}
