package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/backup"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/tracker"
	"github.com/julianstephens/cadence/internal/utils"
)

type Context struct {
	Store   storage.Provider
	Tracker *tracker.Tracker
	Owner   string
	// Debug is passed on to the HTTP server
	Debug bool
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors.
// Only file-backed stores are backed up.
func (c *Context) PerformAutomaticBackup() {
	if storage.KindOf(c.Store.GetConfigPath()) != storage.KindSQLite {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ParseDate reads a YYYY-MM-DD date in the tracker's timezone. An empty value
// means now.
func (c *Context) ParseDate(s string) (time.Time, error) {
	if s == "" {
		return c.Tracker.Clock.Now(), nil
	}
	date, err := utils.ParseDateInLocation(s, c.Tracker.Calendar.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", s)
	}
	return date, nil
}
