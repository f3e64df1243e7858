package settings

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone       *string `help:"IANA timezone that decides where periods start (e.g., Europe/Berlin)."`
	RateWindowDays *int    `help:"Default completion rate window in days."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		fmt.Println(cli.TitleStyle.Render("Current Settings:"))
		fmt.Printf("  Timezone:          %s\n", settings.Timezone)
		fmt.Printf("  Rate Window Days:  %d\n", settings.RateWindowDays)
		return nil
	}

	updated := false
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone: %s", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.RateWindowDays != nil {
		if *c.RateWindowDays <= 0 {
			return fmt.Errorf("rate window must be a positive number of days, got %d", *c.RateWindowDays)
		}
		settings.RateWindowDays = *c.RateWindowDays
		updated = true
	}

	if updated {
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		fmt.Println("Settings updated successfully.")
	} else {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
	}
	return nil
}
