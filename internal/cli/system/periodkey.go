package system

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/utils"
)

// PeriodKeyCmd prints the period a date falls in without touching any habit
type PeriodKeyCmd struct {
	Frequency string `arg:"" help:"daily, weekly or monthly." enum:"daily,weekly,monthly"`
	Date      string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
	Days      string `help:"Weekly only: comma-separated weekdays the habit is restricted to."`
}

func (c *PeriodKeyCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ParseDate(c.Date)
	if err != nil {
		return err
	}
	weekdays, err := utils.ParseWeekdays(c.Days)
	if err != nil {
		return err
	}
	cal := ctx.Tracker.Calendar
	fmt.Println(cal.Format(cal.Key(models.Frequency(c.Frequency), date, weekdays)))
	return nil
}
