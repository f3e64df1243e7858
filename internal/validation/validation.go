package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/models"
)

var validate = validator.New()

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidHabit       ConflictType = "invalid_habit"
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
	ConflictMissingHabitID     ConflictType = "missing_habit_id"
)

// Conflict represents a problem found in stored habits
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // Habit names involved
	HabitIDs    []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Normalize trims the name and sorts and de-duplicates the weekdays. It does
// not drop out-of-range weekdays; ValidateHabit reports those.
func Normalize(h models.Habit) models.Habit {
	h.Name = strings.TrimSpace(h.Name)
	if len(h.SpecificWeekdays) == 0 {
		h.SpecificWeekdays = nil
		return h
	}

	seen := make(map[time.Weekday]bool, len(h.SpecificWeekdays))
	days := make([]time.Weekday, 0, len(h.SpecificWeekdays))
	for _, d := range h.SpecificWeekdays {
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	h.SpecificWeekdays = days
	return h
}

// ValidateHabit checks a habit configuration before it is stored. All
// failures wrap errors.ErrInvalidConfiguration.
func ValidateHabit(h models.Habit) error {
	h = Normalize(h)

	if err := validate.Struct(h); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return apperrors.Invalid("%s", describe(verrs[0]))
		}
		return apperrors.Invalid("%v", err)
	}

	if len(h.SpecificWeekdays) > 0 && h.Frequency != models.FrequencyWeekly {
		return apperrors.Invalid("specific weekdays are only allowed for weekly habits, not %s", h.Frequency)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Field() {
	case "Name":
		return fmt.Sprintf("habit name must be between 2 and 50 characters, got %q", fe.Value())
	case "Frequency":
		return fmt.Sprintf("frequency must be daily, weekly or monthly, got %q", fe.Value())
	case "OwnerID":
		return "owner is required"
	}
	if strings.HasPrefix(fe.Field(), "SpecificWeekdays") {
		return fmt.Sprintf("weekday %v is out of range (0=Sunday .. 6=Saturday)", fe.Value())
	}
	return fe.Error()
}

// ValidateHabits checks stored habits for problems the stores do not
// prevent on their own, such as case-only duplicate names.
func ValidateHabits(habits []models.Habit) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	names := make(map[string][]models.Habit)
	for _, h := range habits {
		if h.ID == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMissingHabitID,
				Description: fmt.Sprintf("Habit %q has no ID", h.Name),
				Items:       []string{h.Name},
			})
		}

		if err := ValidateHabit(h); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidHabit,
				Description: fmt.Sprintf("Habit %q: %v", h.Name, err),
				Items:       []string{h.Name},
				HabitIDs:    []string{h.ID},
			})
		}

		key := strings.ToLower(strings.TrimSpace(h.Name))
		if key != "" {
			names[key] = append(names[key], h)
		}
	}

	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		group := names[k]
		if len(group) < 2 {
			continue
		}
		var items, ids []string
		for _, h := range group {
			items = append(items, h.Name)
			ids = append(ids, h.ID)
		}
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictDuplicateHabitName,
			Description: fmt.Sprintf("Duplicate habit name: %q (IDs: %v)", group[0].Name, ids),
			Items:       items,
			HabitIDs:    ids,
		})
	}

	return result
}
