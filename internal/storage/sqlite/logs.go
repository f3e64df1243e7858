package sqlite

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
	var periodKey, recordedAt string

	if err := row.Scan(&l.ID, &l.OwnerID, &l.HabitID, &periodKey, &l.Completed, &recordedAt); err != nil {
		return models.CompletionLog{}, err
	}

	var err error
	l.PeriodKey, err = time.Parse(constants.DateFormat, periodKey)
	if err != nil {
		return models.CompletionLog{}, fmt.Errorf("failed to parse period_key for log %s: %w", l.ID, err)
	}
	l.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return models.CompletionLog{}, fmt.Errorf("failed to parse recorded_at for log %s: %w", l.ID, err)
	}

	return l, nil
}

func (s *Store) FindLog(ownerID, habitID string, periodKey time.Time) (models.CompletionLog, error) {
	row := s.db.QueryRow(`
		SELECT `+logColumns+` FROM completion_logs
		WHERE owner_id = ? AND habit_id = ? AND period_key = ?`,
		ownerID, habitID, periodKey.Format(constants.DateFormat))

	l, err := scanLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CompletionLog{}, fmt.Errorf("log %s@%s: %w", habitID, periodKey.Format(constants.DateFormat), apperrors.ErrNotFound)
	}
	return l, err
}

// UpsertLog reads the prior state and writes the new one in a single
// IMMEDIATE transaction, so concurrent writers queue on busy_timeout. The
// insert goes through a SELECT on habits so a habit owned by someone else
// never receives a log.
func (s *Store) UpsertLog(ownerID, habitID string, periodKey time.Time, completed bool) (models.LogWrite, error) {
	day := periodKey.Format(constants.DateFormat)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return models.LogWrite{}, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO completion_logs (id, owner_id, habit_id, period_key, completed, credited, recorded_at)
		SELECT ?, owner_id, id, ?, 0, 0, ? FROM habits WHERE id = ? AND owner_id = ?
		ON CONFLICT(habit_id, period_key) DO NOTHING`,
		uuid.New().String(), day, now, habitID, ownerID); err != nil {
		return models.LogWrite{}, err
	}

	var wasCompleted, credited bool
	err = tx.QueryRow(`
		SELECT completed, credited FROM completion_logs
		WHERE owner_id = ? AND habit_id = ? AND period_key = ?`,
		ownerID, habitID, day).Scan(&wasCompleted, &credited)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LogWrite{}, fmt.Errorf("habit %s: %w", habitID, apperrors.ErrNotFound)
	}
	if err != nil {
		return models.LogWrite{}, err
	}

	if _, err := tx.Exec(`
		UPDATE completion_logs SET completed = ?, credited = credited OR ?, recorded_at = ?
		WHERE owner_id = ? AND habit_id = ? AND period_key = ?`,
		completed, completed, now, ownerID, habitID, day); err != nil {
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
		WHERE owner_id = ? AND habit_id = ? AND completed = 1`, ownerID, habitID)
}

// ListLogs returns every log of the habit, done or not, oldest period first
func (s *Store) ListLogs(ownerID, habitID string) ([]models.CompletionLog, error) {
	return s.queryLogs(`
		SELECT `+logColumns+` FROM completion_logs
		WHERE owner_id = ? AND habit_id = ?
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
	err := s.db.QueryRow(`SELECT COUNT(*) FROM completion_logs WHERE owner_id = ? AND completed = 1`, ownerID).Scan(&count)
	return count, err
}
