package habits

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/cli"
)

type BadgesCmd struct {
	All bool `help:"Also list badges not earned yet."`
}

func (c *BadgesCmd) Run(ctx *cli.Context) error {
	points, err := ctx.Tracker.Awarder.Points(ctx.Owner)
	if err != nil {
		return err
	}
	badges, err := ctx.Tracker.Awarder.Badges(ctx.Owner)
	if err != nil {
		return err
	}

	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%s: %d points", ctx.Owner, points)))

	earned := make(map[string]bool, len(badges))
	rows := make([][]string, 0, len(badges))
	for _, b := range badges {
		earned[b.Definition.ID] = true
		name := b.Definition.Name
		if b.HabitID != "" {
			if habit, err := ctx.Store.GetHabit(ctx.Owner, b.HabitID); err == nil {
				name += " (" + habit.Name + ")"
			}
		}
		rows = append(rows, []string{b.Definition.Icon, name, b.AwardedAt.Format("2006-01-02")})
	}

	if c.All {
		for _, def := range ctx.Tracker.Awarder.Catalog().Badges {
			if earned[def.ID] {
				continue
			}
			rows = append(rows, []string{def.Icon, cli.MutedStyle.Render(def.Name + ": " + def.Description), "-"})
		}
	}

	if len(rows) == 0 {
		fmt.Println("No badges earned yet.")
		return nil
	}
	fmt.Println(cli.RenderTable([]string{"", "Badge", "Awarded"}, rows))
	return nil
}
