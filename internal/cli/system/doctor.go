package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/backup"
	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/gamification"
	"github.com/julianstephens/cadence/internal/keyring"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/utils"
	"github.com/julianstephens/cadence/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB checks are skipped when the database cannot be loaded
	needsDB bool
	// warnOnly failures do not fail the command
	warnOnly bool
	run      func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Habit data", needsDB: true, run: checkHabits},
	{name: "Settings", needsDB: true, run: checkSettings},
	{name: "Badge catalog", run: checkCatalog},
	{name: "Clock/timezone", run: checkClock},
	{name: "OS keyring", warnOnly: true, run: checkKeyring},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := true
	if err := ctx.Store.Load(); err != nil {
		fmt.Println(cli.DangerStyle.Render("❌ Database reachable: FAIL"))
		fmt.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Println(cli.SuccessStyle.Render("✓ Database reachable: OK"))
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Println(cli.MutedStyle.Render(fmt.Sprintf("⊘ %s: SKIPPED (database not reachable)", c.name)))
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ %s: OK", c.name)))
		case c.warnOnly:
			fmt.Println(cli.WarningStyle.Render(fmt.Sprintf("⚠ %s: WARNING", c.name)))
			fmt.Printf("   %v\n", err)
		default:
			fmt.Println(cli.DangerStyle.Render(fmt.Sprintf("❌ %s: FAIL", c.name)))
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		return errors.New("diagnostics found problems")
	}
	fmt.Println("All checks passed.")
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	reporter, ok := ctx.Store.(storage.SchemaReporter)
	if !ok {
		return nil
	}
	current, latest, err := reporter.SchemaVersions()
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database is at version %d, this build knows up to %d", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	reporter, ok := ctx.Store.(storage.SchemaReporter)
	if !ok {
		return nil
	}
	current, latest, err := reporter.SchemaVersions()
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("%d pending migration(s), run 'migrate'", latest-current)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if storage.KindOf(ctx.Store.GetConfigPath()) != storage.KindSQLite {
		return nil
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s", mgr.GetBackupDir())
	}
	return nil
}

func checkHabits(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(ctx.Owner)
	if err != nil {
		return err
	}
	result := validation.ValidateHabits(habits)
	if result.HasConflicts() {
		return errors.New(result.FormatReport())
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("invalid timezone setting %q", settings.Timezone)
	}
	if settings.RateWindowDays <= 0 {
		return fmt.Errorf("rate_window_days must be positive, got %d", settings.RateWindowDays)
	}
	return nil
}

func checkCatalog(ctx *cli.Context) error {
	if ctx.Tracker != nil && ctx.Tracker.Awarder != nil {
		if len(ctx.Tracker.Awarder.Catalog().Badges) == 0 {
			return errors.New("badge catalog is empty")
		}
		return nil
	}
	_, err := gamification.DefaultCatalog()
	return err
}

func checkClock(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if ctx.Tracker != nil {
		fmt.Printf("   Period timezone: %s\n", ctx.Tracker.Calendar.Location())
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}
