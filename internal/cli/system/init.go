package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/storage/postgres"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy the owner's data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && storage.KindOf(ctx.Store.GetConfigPath()) == storage.KindSQLite {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data for owner %q from: %s\n", ctx.Owner, c.Source)
		if err := copyOwnerData(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, errDB := filepath.Abs(dbPath)
		absSource, errSource := filepath.Abs(c.Source)
		if errDB == nil && errSource == nil && absDB == absSource {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		fmt.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func openSource(source string) (storage.Provider, error) {
	src, err := storage.Open(source)
	if errors.Is(err, postgres.ErrEmbeddedCredentials) {
		return nil, errors.New("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
	}
	return src, err
}

// copyOwnerData copies settings, habits, logs, points and badges of the
// current owner from another database.
func copyOwnerData(ctx *cli.Context, source string) error {
	src, err := openSource(source)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	fmt.Println("  Migrating settings...")
	settings, err := src.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	fmt.Println("  Migrating habits...")
	habits, err := src.GetAllHabits(ctx.Owner)
	if err != nil {
		return fmt.Errorf("failed to get habits from source: %w", err)
	}
	logCount := 0
	for _, habit := range habits {
		if err := ctx.Store.AddHabit(habit); err != nil {
			return fmt.Errorf("failed to add habit %s: %w", habit.ID, err)
		}
		logs, err := src.ListLogs(ctx.Owner, habit.ID)
		if err != nil {
			return fmt.Errorf("failed to get logs for habit %s: %w", habit.ID, err)
		}
		for _, l := range logs {
			if _, err := ctx.Store.UpsertLog(ctx.Owner, habit.ID, l.PeriodKey, l.Completed); err != nil {
				return fmt.Errorf("failed to add log for habit %s: %w", habit.ID, err)
			}
		}
		logCount += len(logs)
	}
	fmt.Printf("    Migrated %d habits and %d logs\n", len(habits), logCount)

	fmt.Println("  Migrating rewards...")
	points, err := src.GetPoints(ctx.Owner)
	if err != nil {
		return fmt.Errorf("failed to get points from source: %w", err)
	}
	if points != 0 {
		if _, err := ctx.Store.AddPoints(ctx.Owner, points); err != nil {
			return fmt.Errorf("failed to add points: %w", err)
		}
	}
	badges, err := src.ListBadges(ctx.Owner)
	if err != nil {
		return fmt.Errorf("failed to get badges from source: %w", err)
	}
	for _, b := range badges {
		if _, err := ctx.Store.AwardBadge(ctx.Owner, b); err != nil {
			return fmt.Errorf("failed to award badge %s: %w", b.InstanceID(), err)
		}
	}
	fmt.Printf("    Migrated %d points and %d badges\n", points, len(badges))
	return nil
}
