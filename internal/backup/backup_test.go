package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/cadence/internal/clock"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
)

var start = time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)

// setupDB creates an initialized cadence database holding one habit
func setupDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cadence.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	addHabit(t, store, "h1", "Read")
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return dbPath
}

func addHabit(t *testing.T, store *sqlite.Store, id, name string) {
	t.Helper()
	err := store.AddHabit(models.Habit{
		ID:        id,
		OwnerID:   "local",
		Name:      name,
		Frequency: models.FrequencyDaily,
		CreatedAt: start.UTC(),
	})
	if err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
}

func countHabits(t *testing.T, dbPath string) int {
	t.Helper()
	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer store.Close()

	habits, err := store.GetAllHabits("local")
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	return len(habits)
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupDB(t)
	mgr := NewManager(dbPath).WithClock(clock.NewFakeClock(start))

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	if filepath.Dir(backupPath) != filepath.Join(filepath.Dir(dbPath), "backups") {
		t.Errorf("backup written to %s, want the backups directory", backupPath)
	}
	if got := filepath.Base(backupPath); got != "cadence-20240301-0930.db" {
		t.Errorf("backup name = %s", got)
	}
	if n := countHabits(t, backupPath); n != 1 {
		t.Errorf("backup holds %d habits, want 1", n)
	}
}

func TestCreateBackupWithoutDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.CreateBackup(); err == nil {
		t.Fatal("expected an error for a missing database")
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	dbPath := setupDB(t)
	mgr := NewManager(dbPath).WithClock(clock.NewFakeClock(start))

	want := []string{
		"cadence-20240301-0930.db",
		"cadence-20240301-093000.db",
		"cadence-20240301-093000-1.db",
		"cadence-20240301-093000-2.db",
	}
	for _, name := range want {
		path, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup failed: %v", err)
		}
		if filepath.Base(path) != name {
			t.Errorf("got %s, want %s", filepath.Base(path), name)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != len(want) {
		t.Errorf("listed %d backups, want %d", len(backups), len(want))
	}
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupDB(t)
	clk := clock.NewFakeClock(start)
	mgr := NewManager(dbPath).WithClock(clk).WithRetention(3)

	var paths []string
	for i := 0; i < 5; i++ {
		path, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup failed: %v", err)
		}
		paths = append(paths, path)
		clk.Advance(time.Hour)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("kept %d backups, want 3", len(backups))
	}
	if backups[0].Path != paths[4] {
		t.Errorf("newest backup = %s, want %s", backups[0].Path, paths[4])
	}
	for _, old := range paths[:2] {
		if _, err := os.Stat(old); !os.IsNotExist(err) {
			t.Errorf("expected %s to be rotated out", old)
		}
	}
}

func TestListBackups(t *testing.T) {
	dbPath := setupDB(t)
	mgr := NewManager(dbPath)

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 0 {
		t.Fatalf("expected no backups before the directory exists, got %d", len(backups))
	}

	if err := os.MkdirAll(mgr.GetBackupDir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "cadence-garbage.db", "daylit-20240101-1200.db"} {
		if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	mgr.WithClock(clock.NewFakeClock(start))
	if _, err := mgr.CreateBackup(); err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	backups, err = mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected foreign files to be ignored, got %d backups", len(backups))
	}
	if !backups[0].Timestamp.Equal(start) {
		t.Errorf("timestamp = %v, want %v", backups[0].Timestamp, start)
	}
	if backups[0].Size == 0 {
		t.Error("expected a non-empty backup")
	}
}

func TestParseStamp(t *testing.T) {
	tests := []struct {
		name string
		want time.Time
		ok   bool
	}{
		{"cadence-20240301-0930.db", time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local), true},
		{"cadence-20240301-093015.db", time.Date(2024, 3, 1, 9, 30, 15, 0, time.Local), true},
		{"cadence-20240301-093015-7.db", time.Date(2024, 3, 1, 9, 30, 15, 0, time.Local), true},
		{"cadence-20240301.db", time.Time{}, false},
		{"cadence-20240301-0930.sql", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := parseStamp(tt.name)
		if ok != tt.ok || !got.Equal(tt.want) {
			t.Errorf("parseStamp(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupDB(t)
	clk := clock.NewFakeClock(start)
	mgr := NewManager(dbPath).WithClock(clk)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	addHabit(t, store, "h2", "Walk")
	store.Close()
	if n := countHabits(t, dbPath); n != 2 {
		t.Fatalf("expected 2 habits before restore, got %d", n)
	}

	clk.Advance(time.Hour)
	previous, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	if n := countHabits(t, dbPath); n != 1 {
		t.Errorf("expected 1 habit after restore, got %d", n)
	}
	if previous == "" {
		t.Fatal("expected the current database to be backed up before restoring")
	}
	if n := countHabits(t, previous); n != 2 {
		t.Errorf("pre-restore backup holds %d habits, want 2", n)
	}
	if _, err := os.Stat(dbPath + ".restore.tmp"); !os.IsNotExist(err) {
		t.Error("temporary restore file was left behind")
	}
}

func TestRestoreRejectsInvalidBackups(t *testing.T) {
	dbPath := setupDB(t)
	mgr := NewManager(dbPath)

	if _, err := mgr.RestoreBackup(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Error("expected an error for a missing backup")
	}

	corrupt := filepath.Join(t.TempDir(), "cadence-20240101-1200.db")
	if err := os.WriteFile(corrupt, []byte(strings.Repeat("not a database ", 512)), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := mgr.RestoreBackup(corrupt)
	if err == nil || !strings.Contains(err.Error(), "corrupted") {
		t.Errorf("expected a corruption error, got %v", err)
	}
	if n := countHabits(t, dbPath); n != 1 {
		t.Errorf("database changed after a rejected restore: %d habits", n)
	}
}
