package postgres

import (
	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
)

// Truncate empties every table and restores default settings so each
// integration subtest starts from a fresh database.
func (s *Store) Truncate() error {
	if _, err := s.db.Exec("TRUNCATE user_badges, user_points, completion_logs, habits, settings"); err != nil {
		return err
	}
	return s.SaveSettings(models.Settings{
		Timezone:       constants.DefaultTimezone,
		RateWindowDays: constants.DefaultRateWindowDays,
	})
}
