package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/constants"
	apperrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/models"
)

const logColumns = "id, owner_id, habit_id, period_key, completed, recorded_at"

func scanLog(row rowScanner) (models.CompletionLog, error) {
	var l models.CompletionLog
	var periodKey time.Time

	if err := row.Scan(&l.ID, &l.OwnerID, &l.HabitID, &periodKey, &l.Completed, &l.RecordedAt); err != nil {
		return models.CompletionLog{}, err
	}
	// DATE columns come back as midnight in an arbitrary zone; keep only the date
	y, m, d := periodKey.Date()
	l.PeriodKey = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return l, nil
}

func (s *Store) FindLog(ownerID, habitID string, periodKey time.Time) (models.CompletionLog, error) {
	day := periodKey.Format(constants.DateFormat)
	row := s.db.QueryRow(`
		SELECT `+logColumns+` FROM completion_logs
		WHERE owner_id = $1 AND habit_id = $2 AND period_key = $3::date`,
		ownerID, habitID, day)

	l, err := scanLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CompletionLog{}, fmt.Errorf("log %s@%s: %w", habitID, day, apperrors.ErrNotFound)
	}
	return l, err
}

// UpsertLog makes sure the row exists, then locks it before reading the prior
// state. A concurrent insert of the same period waits on the unique index, so
// every writer reads a row the previous writer has committed.
func (s *Store) UpsertLog(ownerID, habitID string, periodKey time.Time, completed bool) (models.LogWrite, error) {
	day := periodKey.Format(constants.DateFormat)
	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return models.LogWrite{}, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO completion_logs (id, owner_id, habit_id, period_key, completed, credited, recorded_at)
		SELECT $1, owner_id, id, $2::date, FALSE, FALSE, $3 FROM habits WHERE id = $4 AND owner_id = $5
		ON CONFLICT (habit_id, period_key) DO NOTHING`,
		uuid.New().String(), day, now, habitID, ownerID); err != nil {
		return models.LogWrite{}, err
	}

	var wasCompleted, credited bool
	err = tx.QueryRow(`
		SELECT completed, credited FROM completion_logs
		WHERE owner_id = $1 AND habit_id = $2 AND period_key = $3::date
		FOR UPDATE`,
		ownerID, habitID, day).Scan(&wasCompleted, &credited)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LogWrite{}, fmt.Errorf("habit %s: %w", habitID, apperrors.ErrNotFound)
	}
	if err != nil {
		return models.LogWrite{}, err
	}

	if _, err := tx.Exec(`
		UPDATE completion_logs SET completed = $1, credited = credited OR $1, recorded_at = $2
		WHERE owner_id = $3 AND habit_id = $4 AND period_key = $5::date`,
		completed, now, ownerID, habitID, day); err != nil {
		return models.LogWrite{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.LogWrite{}, err
	}
	return models.LogWrite{
		WasCompleted:    wasCompleted,
		FirstCompletion: completed && !credited,
	}, nil
}

func (s *Store) ListCompletedLogs(ownerID, habitID string) ([]models.CompletionLog, error) {
	return s.queryLogs(`
		SELECT `+logColumns+` FROM completion_logs
		WHERE owner_id = $1 AND habit_id = $2 AND completed`, ownerID, habitID)
}

func (s *Store) ListLogs(ownerID, habitID string) ([]models.CompletionLog, error) {
	return s.queryLogs(`
		SELECT `+logColumns+` FROM completion_logs
		WHERE owner_id = $1 AND habit_id = $2
		ORDER BY period_key`, ownerID, habitID)
}

func (s *Store) queryLogs(query string, args ...any) ([]models.CompletionLog, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.CompletionLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (s *Store) CountCompletedLogs(ownerID string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM completion_logs WHERE owner_id = $1 AND completed`, ownerID).Scan(&count)
	return count, err
}
