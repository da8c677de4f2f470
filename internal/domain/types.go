package domain

import "time"

// IdentifiedFoodItem is a food name and estimated mass extracted from a photo,
// before nutrition resolution.
type IdentifiedFoodItem struct {
	Name           string  `json:"name"`
	EstimatedGrams float64 `json:"estimatedGrams"`
}

// FoodNutrition holds the macros of one identified item, scaled to its
// estimated mass and rounded to one decimal place.
type FoodNutrition struct {
	Name           string  `json:"name"`
	EstimatedGrams float64 `json:"estimatedGrams"`
	Calories       float64 `json:"calories"`
	Protein        float64 `json:"protein"`
	Carbs          float64 `json:"carbs"`
	Fat            float64 `json:"fat"`
}

// ScanResult is the resolved items of one scan and their summed macros.
type ScanResult struct {
	Items         []FoodNutrition `json:"items"`
	TotalCalories float64         `json:"totalCalories"`
	TotalProtein  float64         `json:"totalProtein"`
	TotalCarbs    float64         `json:"totalCarbs"`
	TotalFat      float64         `json:"totalFat"`
}

// ScanRecord is a scan logged for a user.
type ScanRecord struct {
	ID        string
	UserID    string
	PhotoKey  string
	MimeType  string
	Result    ScanResult
	CreatedAt time.Time
}

// Gender is the gender recorded during onboarding.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ActivityLevel is the self-reported activity level.
type ActivityLevel string

const (
	ActivityLow    ActivityLevel = "low"
	ActivityMedium ActivityLevel = "medium"
	ActivityHigh   ActivityLevel = "high"
)

// HealthStatus is the BMI band a profile falls in.
type HealthStatus string

const (
	HealthUnderweight   HealthStatus = "underweight"
	HealthNormal        HealthStatus = "normal"
	HealthOverweight    HealthStatus = "overweight"
	HealthObese         HealthStatus = "obese"
	HealthSeverelyObese HealthStatus = "severely_obese"
)

// Profile is a user's onboarding answers with the derived BMI and status.
type Profile struct {
	UserID        string
	HeightCm      float64
	WeightKg      float64
	Age           int
	Gender        Gender
	ActivityLevel ActivityLevel
	BMI           float64
	HealthStatus  HealthStatus
	UpdatedAt     time.Time
}
