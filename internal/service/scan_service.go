package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/snapcal/internal/domain"
	"github.com/vbonduro/snapcal/internal/photostore"
)

// ErrScanNotFound is returned for scans that do not exist or belong to
// another user.
var ErrScanNotFound = errors.New("scan not found")

// DefaultScanListLimit caps ListScans when the caller passes no limit.
const DefaultScanListLimit = 50

// scanRunner is satisfied by *scan.Scanner.
type scanRunner interface {
	Scan(ctx context.Context, imageBase64 string) (*domain.ScanResult, error)
}

// scanRepository is the subset of store.ScanStore that ScanService requires.
type scanRepository interface {
	Create(ctx context.Context, rec *domain.ScanRecord) error
	GetByID(ctx context.Context, id string) (*domain.ScanRecord, error)
	ListByUserID(ctx context.Context, userID string, limit int) ([]*domain.ScanRecord, error)
	Delete(ctx context.Context, id string) error
}

type ScanService struct {
	scanner  scanRunner
	scans    scanRepository
	photoStg photostore.PhotoStore
	logger   *slog.Logger
	now      func() time.Time
}

func NewScanService(scanner scanRunner, scans scanRepository, photoStg photostore.PhotoStore, logger *slog.Logger) *ScanService {
	return &ScanService{
		scanner:  scanner,
		scans:    scans,
		photoStg: photoStg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ScanPhoto runs a scan over the raw image bytes. Scan failures are returned
// unchanged (as *scan.Error). For a signed-in user a successful scan is also
// logged with its photo; the returned record has an empty ID when it was not
// logged, and a logging failure never fails the scan.
func (s *ScanService) ScanPhoto(ctx context.Context, userID string, imageData []byte, mimeType string) (*domain.ScanRecord, error) {
	s.logger.Info("scan photo started", "user_id", userID, "mime_type", mimeType, "bytes", len(imageData))

	result, err := s.scanner.Scan(ctx, base64.StdEncoding.EncodeToString(imageData))
	if err != nil {
		return nil, err
	}

	rec := &domain.ScanRecord{
		UserID:    userID,
		MimeType:  mimeType,
		Result:    *result,
		CreatedAt: s.now(),
	}
	if userID == "" {
		return rec, nil
	}

	if err := s.record(ctx, rec, imageData); err != nil {
		s.logger.Error("failed to log scan", "user_id", userID, "error", err)
		rec.ID, rec.PhotoKey = "", ""
		return rec, nil
	}
	s.logger.Info("scan logged", "user_id", userID, "scan_id", rec.ID, "items", len(rec.Result.Items))
	return rec, nil
}

func (s *ScanService) record(ctx context.Context, rec *domain.ScanRecord, imageData []byte) error {
	rec.ID = uuid.NewString()

	if s.photoStg != nil {
		key, err := s.photoStg.Save(ctx, rec.UserID, rec.MimeType, bytes.NewReader(imageData))
		if err != nil {
			return fmt.Errorf("failed to save photo: %w", err)
		}
		rec.PhotoKey = key
		s.logger.Debug("photo saved", "scan_id", rec.ID, "storage_key", key)
	}

	if err := s.scans.Create(ctx, rec); err != nil {
		if rec.PhotoKey != "" {
			if derr := s.photoStg.Delete(ctx, rec.PhotoKey); derr != nil {
				s.logger.Error("failed to roll back photo after record error", "storage_key", rec.PhotoKey, "error", derr)
			}
		}
		return fmt.Errorf("failed to create scan record: %w", err)
	}
	return nil
}

// ListScans returns the user's scans, newest first.
func (s *ScanService) ListScans(ctx context.Context, userID string, limit int) ([]*domain.ScanRecord, error) {
	if limit <= 0 || limit > DefaultScanListLimit {
		limit = DefaultScanListLimit
	}
	scans, err := s.scans.ListByUserID(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	if scans == nil {
		scans = []*domain.ScanRecord{}
	}
	return scans, nil
}

func (s *ScanService) GetScan(ctx context.Context, userID, id string) (*domain.ScanRecord, error) {
	rec, err := s.scans.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}
	if rec == nil || rec.UserID != userID {
		return nil, ErrScanNotFound
	}
	return rec, nil
}

// GetScanPhoto opens the archived photo of one of the user's scans.
func (s *ScanService) GetScanPhoto(ctx context.Context, userID, id string) (io.ReadCloser, string, error) {
	rec, err := s.GetScan(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	if rec.PhotoKey == "" || s.photoStg == nil {
		return nil, "", photostore.ErrNotFound
	}
	return s.photoStg.Get(ctx, rec.PhotoKey)
}

// DeleteScan removes the scan and its items, then its photo. A photo that
// cannot be removed is logged and left behind.
func (s *ScanService) DeleteScan(ctx context.Context, userID, id string) error {
	rec, err := s.GetScan(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.scans.Delete(ctx, rec.ID); err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}

	if rec.PhotoKey != "" && s.photoStg != nil {
		if err := s.photoStg.Delete(ctx, rec.PhotoKey); err != nil && !errors.Is(err, photostore.ErrNotFound) {
			s.logger.Error("failed to delete photo file", "storage_key", rec.PhotoKey, "error", err)
		}
	}
	return nil
}
