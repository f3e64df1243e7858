package habits

import (
	"context"
	"fmt"
	"strconv"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/tracker"
	"github.com/julianstephens/cadence/internal/utils"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits with their streak and completion rate."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and its history."`
	Record HabitRecordCmd `cmd:"" help:"Record a habit as done (or not done) for a period."`
	Streak HabitStreakCmd `cmd:"" help:"Show the current streak of a habit."`
	Rate   HabitRateCmd   `cmd:"" help:"Show the completion rate of a habit."`
	Stats  HabitStatsCmd  `cmd:"" help:"Show streak, rate and totals of a habit."`
	Log    HabitLogCmd    `cmd:"" help:"Show the recorded periods of a habit."`
}

type HabitAddCmd struct {
	Name      string `arg:"" help:"Habit name."`
	Frequency string `help:"How often the habit repeats." enum:"daily,weekly,monthly" default:"daily" short:"f"`
	Days      string `help:"Weekly habits only: comma-separated weekdays (e.g., mon,wed,fri)."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	weekdays, err := utils.ParseWeekdays(c.Days)
	if err != nil {
		return err
	}

	habit, rewards, err := ctx.Tracker.CreateHabit(ctx.Owner, tracker.HabitInput{
		Name:             c.Name,
		Frequency:        models.Frequency(c.Frequency),
		SpecificWeekdays: weekdays,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added habit: %s (%s)\n", habit.Name, cli.FormatFrequency(habit))
	cli.PrintRewards(rewards)
	return nil
}

type HabitListCmd struct {
	Window int `help:"Completion rate window in days (default: rate_window_days setting)."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	window := c.Window
	if window <= 0 {
		window = ctx.Tracker.WindowDays()
	}

	stats, err := ctx.Tracker.Summaries(context.Background(), ctx.Owner, window)
	if err != nil {
		return err
	}

	if len(stats) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			s.Habit.Name,
			cli.FormatFrequency(s.Habit),
			strconv.Itoa(s.Streak),
			cli.FormatRate(s.Rate),
			strconv.Itoa(s.Completed),
		})
	}
	fmt.Println(cli.RenderTable(
		[]string{"Habit", "Schedule", "Streak", fmt.Sprintf("Rate (%dd)", window), "Done"},
		rows,
	))
	return nil
}

type HabitDeleteCmd struct {
	Name string `arg:"" help:"Habit name or ID."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.ResolveHabit(ctx.Owner, c.Name)
	if err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()
	if err := ctx.Tracker.DeleteHabit(ctx.Owner, habit.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted habit: %s\n", habit.Name)
	return nil
}

type HabitRecordCmd struct {
	Name   string `arg:"" help:"Habit name or ID."`
	Date   string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
	Missed bool   `help:"Record the period as not done."`
}

func (c *HabitRecordCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.ResolveHabit(ctx.Owner, c.Name)
	if err != nil {
		return err
	}
	date, err := ctx.ParseDate(c.Date)
	if err != nil {
		return err
	}

	out, err := ctx.Tracker.Record(ctx.Owner, habit.ID, date, !c.Missed)
	if err != nil {
		return err
	}

	key := ctx.Tracker.Calendar.Format(out.PeriodKey)
	if !out.Completed {
		fmt.Printf("Recorded %q as not done for period %s\n", habit.Name, key)
		return nil
	}
	fmt.Printf("Recorded %q for period %s\n", habit.Name, key)
	switch {
	case out.FirstCompletion:
		fmt.Printf("Current streak: %d  (+%d points, %d total)\n", out.Streak, ctx.Tracker.Awarder.Catalog().PointsPerCompletion, out.Rewards.Points)
		cli.PrintRewards(out.Rewards)
	case out.BecameCompleted:
		fmt.Printf("Current streak: %d  (period already credited, %d points total)\n", out.Streak, out.Rewards.Points)
		cli.PrintRewards(out.Rewards)
	}
	return nil
}

type HabitStreakCmd struct {
	Name string `arg:"" help:"Habit name or ID."`
}

func (c *HabitStreakCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.ResolveHabit(ctx.Owner, c.Name)
	if err != nil {
		return err
	}
	streak, err := ctx.Tracker.Engine.CurrentStreak(ctx.Owner, habit.ID)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d\n", habit.Name, streak)
	return nil
}

type HabitRateCmd struct {
	Name   string `arg:"" help:"Habit name or ID."`
	Window int    `help:"Window in days (default: rate_window_days setting)."`
}

func (c *HabitRateCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.ResolveHabit(ctx.Owner, c.Name)
	if err != nil {
		return err
	}
	window := c.Window
	if window <= 0 {
		window = ctx.Tracker.WindowDays()
	}
	rate, err := ctx.Tracker.Engine.CompletionRate(ctx.Owner, habit.ID, window)
	if err != nil {
		return err
	}
	if rate.Insufficient() {
		fmt.Printf("%s: not enough data yet (last %d days)\n", habit.Name, window)
		return nil
	}
	fmt.Printf("%s: %s over the last %d days\n", habit.Name, cli.FormatRate(rate), window)
	return nil
}

type HabitLogCmd struct {
	Name string `arg:"" help:"Habit name or ID."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.ResolveHabit(ctx.Owner, c.Name)
	if err != nil {
		return err
	}
	logs, err := ctx.Store.ListLogs(ctx.Owner, habit.ID)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		fmt.Printf("No records for %s yet.\n", habit.Name)
		return nil
	}

	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		mark := cli.SuccessStyle.Render("done")
		if !l.Completed {
			mark = cli.MutedStyle.Render("missed")
		}
		rows = append(rows, []string{
			l.PeriodKey.Format(constants.DateFormat),
			mark,
			l.RecordedAt.In(ctx.Tracker.Calendar.Location()).Format("2006-01-02 15:04"),
		})
	}
	fmt.Println(cli.TitleStyle.Render(habit.Name))
	fmt.Println(cli.RenderTable([]string{"Period", "Status", "Recorded"}, rows))
	return nil
}

type HabitStatsCmd struct {
	Name   string `arg:"" help:"Habit name or ID."`
	Window int    `help:"Window in days (default: rate_window_days setting)."`
}

func (c *HabitStatsCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.ResolveHabit(ctx.Owner, c.Name)
	if err != nil {
		return err
	}
	window := c.Window
	if window <= 0 {
		window = ctx.Tracker.WindowDays()
	}
	stats, err := ctx.Tracker.Engine.Stats(ctx.Owner, habit.ID, window)
	if err != nil {
		return err
	}

	cal := ctx.Tracker.Calendar
	key := cal.Key(habit.Frequency, ctx.Tracker.Clock.Now(), habit.SpecificWeekdays)
	fmt.Println(cli.TitleStyle.Render(habit.Name))
	fmt.Printf("  Schedule:        %s\n", cli.FormatFrequency(habit))
	fmt.Printf("  Created:         %s\n", habit.CreatedAt.In(cal.Location()).Format(constants.DateFormat))
	fmt.Printf("  Current period:  %s\n", cal.Format(key))
	fmt.Printf("  Current streak:  %d\n", stats.Streak)
	fmt.Printf("  Rate (%dd):      %s\n", stats.WindowDays, cli.FormatRate(stats.Rate))
	fmt.Printf("  Completed:       %d\n", stats.Completed)
	return nil
}
