package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/snapcal/internal/domain"
	"github.com/vbonduro/snapcal/internal/profile"
)

// profileRepository is the subset of store.ProfileStore that ProfileService requires.
type profileRepository interface {
	Upsert(ctx context.Context, p *domain.Profile) error
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	IsOnboarded(ctx context.Context, userID string) (bool, error)
}

// ProfileInput is the onboarding form as submitted.
type ProfileInput struct {
	HeightCm      float64
	WeightKg      float64
	Age           int
	Gender        string
	ActivityLevel string
}

// ValidationError reports onboarding input that cannot be saved.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// MessageMissingFields is returned when any onboarding field is absent or zero.
const MessageMissingFields = "Missing required onboarding fields"

type ProfileService struct {
	profiles profileRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewProfileService(profiles profileRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SaveProfile validates the input, derives BMI and health status, and
// persists the profile. The user is marked onboarded in the same write.
func (s *ProfileService) SaveProfile(ctx context.Context, userID string, in ProfileInput) (*domain.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	p, err := validate(in)
	if err != nil {
		return nil, err
	}

	p.UserID = userID
	p.BMI = profile.CalculateBMI(p.HeightCm, p.WeightKg)
	p.HealthStatus = profile.HealthStatusFor(p.BMI)
	p.UpdatedAt = s.now()

	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	s.logger.Info("profile saved", "user_id", userID, "bmi", p.BMI, "health_status", string(p.HealthStatus))
	return p, nil
}

func (s *ProfileService) IsOnboarded(ctx context.Context, userID string) (bool, error) {
	onboarded, err := s.profiles.IsOnboarded(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get onboarding status: %w", err)
	}
	return onboarded, nil
}

// GetProfile returns nil when the user has not onboarded yet.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func validate(in ProfileInput) (*domain.Profile, error) {
	gender := domain.Gender(strings.ToLower(strings.TrimSpace(in.Gender)))
	activity := domain.ActivityLevel(strings.ToLower(strings.TrimSpace(in.ActivityLevel)))

	if in.HeightCm == 0 || in.WeightKg == 0 || in.Age == 0 || gender == "" || activity == "" {
		return nil, &ValidationError{Message: MessageMissingFields}
	}
	if in.HeightCm < 0 || in.WeightKg < 0 || in.Age < 0 {
		return nil, &ValidationError{Message: "height, weight and age must be positive"}
	}

	switch gender {
	case domain.GenderMale, domain.GenderFemale, domain.GenderOther:
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("invalid gender %q", in.Gender)}
	}
	switch activity {
	case domain.ActivityLow, domain.ActivityMedium, domain.ActivityHigh:
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("invalid activity level %q", in.ActivityLevel)}
	}

	return &domain.Profile{
		HeightCm:      in.HeightCm,
		WeightKg:      in.WeightKg,
		Age:           in.Age,
		Gender:        gender,
		ActivityLevel: activity,
	}, nil
}
