package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/snapcal/internal/domain"
)

type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Upsert writes the profile and marks its user as onboarded in a single
// transaction. The user row is created if it does not exist.
func (s *ProfileStore) Upsert(ctx context.Context, p *domain.Profile) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, is_onboarded) VALUES (?, 1)
		ON CONFLICT(id) DO UPDATE SET is_onboarded = 1
	`, p.UserID); err != nil {
		return fmt.Errorf("failed to mark user onboarded: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO user_profiles (id, height_cm, weight_kg, age, gender, activity_level, bmi, health_status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			height_cm = excluded.height_cm,
			weight_kg = excluded.weight_kg,
			age = excluded.age,
			gender = excluded.gender,
			activity_level = excluded.activity_level,
			bmi = excluded.bmi,
			health_status = excluded.health_status,
			updated_at = excluded.updated_at
	`, p.UserID, p.HeightCm, p.WeightKg, p.Age, string(p.Gender), string(p.ActivityLevel), p.BMI, string(p.HealthStatus), p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profile: %w", err)
	}
	return nil
}

func (s *ProfileStore) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	p := &domain.Profile{}
	var gender, activity, status string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, height_cm, weight_kg, age, gender, activity_level, bmi, health_status, updated_at
		FROM user_profiles WHERE id = ?
	`, userID).Scan(&p.UserID, &p.HeightCm, &p.WeightKg, &p.Age, &gender, &activity, &p.BMI, &status, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	p.Gender = domain.Gender(gender)
	p.ActivityLevel = domain.ActivityLevel(activity)
	p.HealthStatus = domain.HealthStatus(status)
	return p, nil
}

// IsOnboarded reports whether the user finished onboarding. Unknown users
// are not onboarded.
func (s *ProfileStore) IsOnboarded(ctx context.Context, userID string) (bool, error) {
	var onboarded bool
	err := s.db.QueryRowContext(ctx, `
		SELECT is_onboarded FROM users WHERE id = ?
	`, userID).Scan(&onboarded)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get onboarding status: %w", err)
	}
	return onboarded, nil
}
