package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/vbonduro/snapcal/internal/auth"
	"github.com/vbonduro/snapcal/internal/domain"
	"github.com/vbonduro/snapcal/internal/service"
)

type onboardingRequest struct {
	Height        float64 `json:"height"`
	Weight        float64 `json:"weight"`
	Age           int     `json:"age"`
	Gender        string  `json:"gender"`
	ActivityLevel string  `json:"activityLevel"`
}

type profileBody struct {
	HeightCm      float64   `json:"height"`
	WeightKg      float64   `json:"weight"`
	Age           int       `json:"age"`
	Gender        string    `json:"gender"`
	ActivityLevel string    `json:"activityLevel"`
	BMI           float64   `json:"bmi"`
	HealthStatus  string    `json:"healthStatus"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type profileResponse struct {
	IsOnboarded bool         `json:"isOnboarded"`
	Profile     *profileBody `json:"profile"`
}

func newProfileBody(p *domain.Profile) *profileBody {
	if p == nil {
		return nil
	}
	return &profileBody{
		HeightCm:      p.HeightCm,
		WeightKg:      p.WeightKg,
		Age:           p.Age,
		Gender:        string(p.Gender),
		ActivityLevel: string(p.ActivityLevel),
		BMI:           p.BMI,
		HealthStatus:  string(p.HealthStatus),
		UpdatedAt:     p.UpdatedAt,
	}
}

func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)

	var req onboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p, err := s.profiles.SaveProfile(r.Context(), userID(r), service.ProfileInput{
		HeightCm:      req.Height,
		WeightKg:      req.Weight,
		Age:           req.Age,
		Gender:        req.Gender,
		ActivityLevel: req.ActivityLevel,
	})
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		writeError(w, http.StatusBadRequest, vErr.Message)
		return
	}
	if err != nil {
		s.logger.Error("save profile failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{IsOnboarded: true, Profile: newProfileBody(p)})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := userID(r)

	onboarded, err := s.profiles.IsOnboarded(ctx, id)
	if err != nil {
		s.logger.Error("get onboarding status failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	p, err := s.profiles.GetProfile(ctx, id)
	if err != nil {
		s.logger.Error("get profile failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{IsOnboarded: onboarded, Profile: newProfileBody(p)})
}

func userID(r *http.Request) string {
	return auth.UserID(r.Context())
}
