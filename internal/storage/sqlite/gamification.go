package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/models"
)

func (s *Store) GetPoints(ownerID string) (int, error) {
	var points int
	err := s.db.QueryRow(`SELECT points FROM user_points WHERE owner_id = ?`, ownerID).Scan(&points)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return points, err
}

// AddPoints adds delta to the owner's balance and returns the new total
func (s *Store) AddPoints(ownerID string, delta int) (int, error) {
	var points int
	err := s.db.QueryRow(`
		INSERT INTO user_points (owner_id, points) VALUES (?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET points = user_points.points + excluded.points
		RETURNING points`, ownerID, delta).Scan(&points)
	if err != nil {
		return 0, fmt.Errorf("failed to add points: %w", err)
	}
	return points, nil
}

func (s *Store) AwardBadge(ownerID string, badge models.UserBadge) (bool, error) {
	var habitID sql.NullString
	if badge.HabitID != "" {
		habitID = sql.NullString{String: badge.HabitID, Valid: true}
	}
	awardedAt := badge.AwardedAt
	if awardedAt.IsZero() {
		awardedAt = time.Now()
	}

	result, err := s.db.Exec(`
		INSERT INTO user_badges (owner_id, badge_id, definition_id, instance_suffix, habit_id, awarded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, badge_id) DO NOTHING`,
		ownerID, badge.InstanceID(), badge.Definition.ID, badge.InstanceSuffix, habitID,
		awardedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// ListBadges returns the owner's badges with only the definition ID filled in;
// the gamification catalog resolves the rest.
func (s *Store) ListBadges(ownerID string) ([]models.UserBadge, error) {
	rows, err := s.db.Query(`
		SELECT definition_id, instance_suffix, habit_id, awarded_at
		FROM user_badges WHERE owner_id = ?
		ORDER BY awarded_at, badge_id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []models.UserBadge
	for rows.Next() {
		var b models.UserBadge
		var habitID sql.NullString
		var awardedAt string
		if err := rows.Scan(&b.Definition.ID, &b.InstanceSuffix, &habitID, &awardedAt); err != nil {
			return nil, err
		}
		b.HabitID = habitID.String
		b.AwardedAt, err = time.Parse(time.RFC3339, awardedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse awarded_at for badge %s: %w", b.InstanceID(), err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}
