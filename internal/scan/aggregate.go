package scan

import (
	"github.com/vbonduro/snapcal/internal/domain"
	"github.com/vbonduro/snapcal/internal/nutrition"
)

// Aggregate sums per-item nutrition into a ScanResult. Each total is rounded
// to one decimal place after summing.
func Aggregate(items []domain.FoodNutrition) domain.ScanResult {
	var calories, protein, carbs, fat float64
	for _, it := range items {
		calories += it.Calories
		protein += it.Protein
		carbs += it.Carbs
		fat += it.Fat
	}
	if items == nil {
		items = []domain.FoodNutrition{}
	}
	return domain.ScanResult{
		Items:         items,
		TotalCalories: nutrition.Round1(calories),
		TotalProtein:  nutrition.Round1(protein),
		TotalCarbs:    nutrition.Round1(carbs),
		TotalFat:      nutrition.Round1(fat),
	}
}
