package cli

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/analytics"
	"github.com/julianstephens/cadence/internal/gamification"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/utils"
)

// FormatFrequency formats a habit's schedule into a human-readable string
func FormatFrequency(h models.Habit) string {
	if h.HasSpecificWeekdays() {
		return "weekly on " + utils.FormatWeekdays(h.SpecificWeekdays)
	}
	return string(h.Frequency)
}

func FormatRate(r analytics.Rate) string {
	if r.Insufficient() {
		return "n/a"
	}
	return fmt.Sprintf("%.0f%%", r.Percent())
}

// PrintRewards reports badges earned by a write, if any
func PrintRewards(out gamification.Outcome) {
	for _, b := range out.Awarded {
		fmt.Println(SuccessStyle.Render(fmt.Sprintf("%s Badge earned: %s (+%d points)", b.Definition.Icon, b.Definition.Name, b.Definition.Points)))
	}
}
