package backups

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/cadence/internal/backup"
	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage/memory"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return &cli.Context{Store: store, Owner: "tester"}, dbPath
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, dbPath := setupTestDB(t)

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Errorf("backup list failed: %v", err)
	}

	backups, err := backup.NewManager(dbPath).ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Errorf("found %d backups, want 1", len(backups))
	}
}

func TestBackupRestoreByName(t *testing.T) {
	ctx, dbPath := setupTestDB(t)

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	backups, err := backup.NewManager(dbPath).ListBackups()
	if err != nil || len(backups) == 0 {
		t.Fatalf("no backup to restore: %v", err)
	}

	if err := ctx.Store.AddHabit(models.Habit{ID: "h1", OwnerID: "tester", Name: "Read", Frequency: models.FrequencyDaily}); err != nil {
		t.Fatal(err)
	}

	cmd := &BackupRestoreCmd{BackupFile: filepath.Base(backups[0].Path), Yes: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	if err := ctx.Store.Load(); err != nil {
		t.Fatalf("failed to reopen restored database: %v", err)
	}
	habits, err := ctx.Store.GetAllHabits("tester")
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) != 0 {
		t.Errorf("restored database has %d habits, want 0", len(habits))
	}
}

func TestBackupRestoreMissingFile(t *testing.T) {
	ctx, _ := setupTestDB(t)
	cmd := &BackupRestoreCmd{BackupFile: "cadence-19990101-0000.db", Yes: true}
	if err := cmd.Run(ctx); err == nil {
		t.Error("expected an error for a missing backup")
	}
	if _, err := os.Stat(ctx.Store.GetConfigPath()); err != nil {
		t.Errorf("database should be untouched: %v", err)
	}
}

func TestBackupsRequireSQLite(t *testing.T) {
	ctx := &cli.Context{Store: memory.NewStore(), Owner: "tester"}
	if err := (&BackupCreateCmd{}).Run(ctx); err == nil {
		t.Error("expected backups to be refused for the memory store")
	}
	// automatic backups stay silent
	ctx.PerformAutomaticBackup()
}
