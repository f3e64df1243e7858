package analytics

import (
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/period"
)

// Rate is a completion fraction in [0, 1], or InsufficientData.
type Rate float64

// InsufficientData means too few periods have elapsed for a meaningful rate.
// It is distinct from a genuine 0.
const InsufficientData Rate = -1

func (r Rate) Insufficient() bool { return r < 0 }

// Percent returns the rate as a 0-100 value; callers check Insufficient first.
func (r Rate) Percent() float64 { return float64(r) * 100 }

// CompletionRate returns the share of completed periods in the trailing
// windowDays days, counting only periods since the habit was created.
// windowDays <= 0 uses the default window.
func (e *Engine) CompletionRate(ownerID, habitID string, windowDays int) (Rate, error) {
	habit, logs, err := e.load(ownerID, habitID)
	if err != nil {
		return InsufficientData, err
	}

	rate := CompletionRate(e.cal, habit, logs, e.clock.Now(), windowDays)
	logger.Debug("Computed completion rate", "habit", habitID, "window", windowDays, "rate", float64(rate))
	return rate, nil
}

// CompletionRate is the pure computation behind Engine.CompletionRate.
func CompletionRate(cal period.Calendar, habit models.Habit, logs []models.CompletionLog, now time.Time, windowDays int) Rate {
	if windowDays <= 0 {
		windowDays = constants.DefaultRateWindowDays
	}

	today := cal.Midnight(now)
	created := cal.Midnight(habit.CreatedAt)
	start := today.AddDate(0, 0, -(windowDays - 1))
	if created.After(start) {
		start = created
	}
	if start.After(today) {
		return InsufficientData
	}

	keys := completedKeys(cal, habit, logs)

	var total, completed, floor int
	if set, ok := usesWeekdays(habit); ok {
		for day := start; !day.After(today); day = day.AddDate(0, 0, 1) {
			if !set.Contains(day.Weekday()) {
				continue
			}
			total++
			if _, ok := keys[cal.Format(day)]; ok {
				completed++
			}
		}
		floor = set.Len()
	} else {
		freq := habit.Frequency
		createdKey := cal.Key(freq, created, nil)
		for k := cal.Key(freq, start, nil); !k.After(today); k = cal.Next(freq, k) {
			if k.Before(createdKey) {
				continue
			}
			total++
			if _, ok := keys[cal.Format(k)]; ok {
				completed++
			}
		}
		floor = minSamples(freq)
	}

	if total == 0 || total < floor {
		return InsufficientData
	}
	return Rate(float64(completed) / float64(total))
}

func minSamples(freq models.Frequency) int {
	switch freq {
	case models.FrequencyWeekly:
		return constants.MinWeeklySamples
	case models.FrequencyMonthly:
		return constants.MinMonthlySamples
	default:
		return constants.MinDailySamples
	}
}
