// Package profile derives health metrics from an onboarding profile.
package profile

import (
	"math"

	"github.com/vbonduro/snapcal/internal/domain"
)

// CalculateBMI expects height in centimeters and weight in kilograms and
// returns the BMI rounded to two decimal places.
func CalculateBMI(heightCm, weightKg float64) float64 {
	heightM := heightCm / 100
	return math.Round(weightKg/(heightM*heightM)*100) / 100
}

func HealthStatusFor(bmi float64) domain.HealthStatus {
	switch {
	case bmi < 18.5:
		return domain.HealthUnderweight
	case bmi < 25:
		return domain.HealthNormal
	case bmi < 30:
		return domain.HealthOverweight
	case bmi < 35:
		return domain.HealthObese
	default:
		return domain.HealthSeverelyObese
	}
}
