package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/models"
)

const habitColumns = "id, owner_id, name, frequency, specific_weekdays, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var frequency, weekdays, createdAt string

	if err := row.Scan(&h.ID, &h.OwnerID, &h.Name, &frequency, &weekdays, &createdAt); err != nil {
		return models.Habit{}, err
	}

	h.Frequency = models.Frequency(frequency)

	var err error
	h.SpecificWeekdays, err = models.DecodeWeekdays(weekdays)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse specific_weekdays for habit %s: %w", h.ID, err)
	}
	h.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}

	return h, nil
}

func (s *Store) AddHabit(habit models.Habit) error {
	weekdays, err := models.EncodeWeekdays(habit.SpecificWeekdays)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO habits (id, owner_id, name, frequency, specific_weekdays, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		habit.ID, habit.OwnerID, habit.Name, string(habit.Frequency), weekdays,
		habit.CreatedAt.Format(time.RFC3339))
	return err
}

func (s *Store) GetHabit(ownerID, habitID string) (models.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = ? AND owner_id = ?`, habitID, ownerID)

	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %s: %w", habitID, apperrors.ErrNotFound)
	}
	return h, err
}

func (s *Store) GetHabitByName(ownerID, name string) (models.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE name = ? AND owner_id = ?`, name, ownerID)

	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %q: %w", name, apperrors.ErrNotFound)
	}
	return h, err
}

func (s *Store) GetAllHabits(ownerID string) ([]models.Habit, error) {
	rows, err := s.db.Query(`SELECT `+habitColumns+` FROM habits WHERE owner_id = ? ORDER BY created_at, name`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (s *Store) DeleteHabit(ownerID, habitID string) error {
	result, err := s.db.Exec(`DELETE FROM habits WHERE id = ? AND owner_id = ?`, habitID, ownerID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit %s: %w", habitID, apperrors.ErrNotFound)
	}

	return nil
}
