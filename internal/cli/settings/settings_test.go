package settings

import (
	"path/filepath"
	"testing"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) *cli.Context {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return &cli.Context{Store: store, Owner: "tester"}
}

func TestSettingsCmd_List(t *testing.T) {
	ctx := setupTestDB(t)
	if err := (&SettingsCmd{List: true}).Run(ctx); err != nil {
		t.Errorf("settings list failed: %v", err)
	}
}

func TestSettingsCmd_Update(t *testing.T) {
	ctx := setupTestDB(t)

	tz := "America/New_York"
	window := 14
	if err := (&SettingsCmd{Timezone: &tz, RateWindowDays: &window}).Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	if settings.Timezone != tz {
		t.Errorf("Timezone = %q, want %q", settings.Timezone, tz)
	}
	if settings.RateWindowDays != window {
		t.Errorf("RateWindowDays = %d, want %d", settings.RateWindowDays, window)
	}
}

func TestSettingsCmd_Invalid(t *testing.T) {
	ctx := setupTestDB(t)

	bad := "Nowhere/City"
	if err := (&SettingsCmd{Timezone: &bad}).Run(ctx); err == nil {
		t.Error("expected an invalid timezone to be rejected")
	}
	zero := 0
	if err := (&SettingsCmd{RateWindowDays: &zero}).Run(ctx); err == nil {
		t.Error("expected a zero window to be rejected")
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	if settings.Timezone != "UTC" || settings.RateWindowDays != 30 {
		t.Errorf("settings changed after rejected updates: %+v", settings)
	}
}
