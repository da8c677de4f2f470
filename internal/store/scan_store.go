package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/snapcal/internal/domain"
)

// ErrScanNotFound is returned when deleting a scan that does not exist.
var ErrScanNotFound = errors.New("scan not found")

type ScanStore struct {
	db *sql.DB
}

func NewScanStore(db *sql.DB) *ScanStore {
	return &ScanStore{db: db}
}

// Create stores the scan and its items atomically. rec.ID must be set.
func (s *ScanStore) Create(ctx context.Context, rec *domain.ScanRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	r := rec.Result
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO scans (id, user_id, photo_key, mime_type, total_calories, total_protein, total_carbs, total_fat, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.UserID, rec.PhotoKey, rec.MimeType, r.TotalCalories, r.TotalProtein, r.TotalCarbs, r.TotalFat, rec.CreatedAt); err != nil {
		return fmt.Errorf("failed to create scan: %w", err)
	}

	for i, it := range r.Items {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO scan_items (scan_id, position, name, estimated_grams, calories, protein, carbs, fat)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, i, it.Name, it.EstimatedGrams, it.Calories, it.Protein, it.Carbs, it.Fat); err != nil {
			return fmt.Errorf("failed to create scan item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scan: %w", err)
	}
	return nil
}

func (s *ScanStore) GetByID(ctx context.Context, id string) (*domain.ScanRecord, error) {
	rec := &domain.ScanRecord{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, photo_key, mime_type, total_calories, total_protein, total_carbs, total_fat, created_at
		FROM scans WHERE id = ?
	`, id).Scan(scanColumns(rec)...)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}

	if rec.Result.Items, err = s.listItems(ctx, rec.ID); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListByUserID returns the user's most recent scans, newest first.
func (s *ScanStore) ListByUserID(ctx context.Context, userID string, limit int) ([]*domain.ScanRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, photo_key, mime_type, total_calories, total_protein, total_carbs, total_fat, created_at
		FROM scans WHERE user_id = ?
		ORDER BY created_at DESC, id ASC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var records []*domain.ScanRecord
	for rows.Next() {
		rec := &domain.ScanRecord{}
		if err := rows.Scan(scanColumns(rec)...); err != nil {
			return nil, fmt.Errorf("failed to scan scan row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scans: %w", err)
	}

	for _, rec := range records {
		if rec.Result.Items, err = s.listItems(ctx, rec.ID); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *ScanStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM scans WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrScanNotFound
	}

	return nil
}

func (s *ScanStore) listItems(ctx context.Context, scanID string) ([]domain.FoodNutrition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, estimated_grams, calories, protein, carbs, fat FROM scan_items
		WHERE scan_id = ? ORDER BY position ASC
	`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan items: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	items := make([]domain.FoodNutrition, 0)
	for rows.Next() {
		var it domain.FoodNutrition
		if err := rows.Scan(&it.Name, &it.EstimatedGrams, &it.Calories, &it.Protein, &it.Carbs, &it.Fat); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scan items: %w", err)
	}

	return items, nil
}

func scanColumns(rec *domain.ScanRecord) []any {
	return []any{
		&rec.ID, &rec.UserID, &rec.PhotoKey, &rec.MimeType,
		&rec.Result.TotalCalories, &rec.Result.TotalProtein, &rec.Result.TotalCarbs, &rec.Result.TotalFat,
		&rec.CreatedAt,
	}
}
