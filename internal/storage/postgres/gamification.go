package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/models"
)

func (s *Store) GetPoints(ownerID string) (int, error) {
	var points int
	err := s.db.QueryRow(`SELECT points FROM user_points WHERE owner_id = $1`, ownerID).Scan(&points)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return points, err
}

func (s *Store) AddPoints(ownerID string, delta int) (int, error) {
	var points int
	err := s.db.QueryRow(`
		INSERT INTO user_points (owner_id, points) VALUES ($1, $2)
		ON CONFLICT (owner_id) DO UPDATE SET points = user_points.points + EXCLUDED.points
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
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner_id, badge_id) DO NOTHING`,
		ownerID, badge.InstanceID(), badge.Definition.ID, badge.InstanceSuffix, habitID, awardedAt.UTC())
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (s *Store) ListBadges(ownerID string) ([]models.UserBadge, error) {
	rows, err := s.db.Query(`
		SELECT definition_id, instance_suffix, habit_id, awarded_at
		FROM user_badges WHERE owner_id = $1
		ORDER BY awarded_at, badge_id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []models.UserBadge
	for rows.Next() {
		var b models.UserBadge
		var habitID sql.NullString
		if err := rows.Scan(&b.Definition.ID, &b.InstanceSuffix, &habitID, &b.AwardedAt); err != nil {
			return nil, err
		}
		b.HabitID = habitID.String
		badges = append(badges, b)
	}
	return badges, rows.Err()
}
