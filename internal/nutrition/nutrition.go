package nutrition

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/vbonduro/snapcal/internal/domain"
)

// Per100g holds nutrient values of a food normalised to 100 g.
type Per100g struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

// Searcher finds the best nutrition database match for a food name.
// A nil result with a nil error means the database has no match.
type Searcher interface {
	Search(ctx context.Context, name string) (*Per100g, error)
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Scale converts a per-100g value to grams of food, rounded to one decimal.
func Scale(per100g, grams float64) float64 {
	return Round1(per100g * grams / 100)
}

// Resolver implements per-item nutrition lookup on top of a Searcher,
// optionally caching found foods by name.
type Resolver struct {
	searcher Searcher
	cache    *expirable.LRU[string, Per100g]
}

// NewResolver returns a Resolver. A cacheSize of zero disables caching.
func NewResolver(searcher Searcher, cacheSize int, cacheTTL time.Duration) *Resolver {
	r := &Resolver{searcher: searcher}
	if cacheSize > 0 {
		r.cache = expirable.NewLRU[string, Per100g](cacheSize, nil, cacheTTL)
	}
	return r
}

// Lookup resolves name to nutrition scaled to estimatedGrams. When the
// database has no match the record is zero-valued and err is nil; only a
// failed search is an error.
func (r *Resolver) Lookup(ctx context.Context, name string, estimatedGrams float64) (domain.FoodNutrition, error) {
	record := domain.FoodNutrition{Name: name, EstimatedGrams: estimatedGrams}

	key := strings.ToLower(strings.TrimSpace(name))
	if r.cache != nil {
		if v, ok := r.cache.Get(key); ok {
			return fill(record, v), nil
		}
	}

	v, err := r.searcher.Search(ctx, name)
	if err != nil {
		return domain.FoodNutrition{}, err
	}
	if v == nil {
		return record, nil
	}

	if r.cache != nil {
		r.cache.Add(key, *v)
	}
	return fill(record, *v), nil
}

func fill(record domain.FoodNutrition, v Per100g) domain.FoodNutrition {
	record.Calories = Scale(v.Calories, record.EstimatedGrams)
	record.Protein = Scale(v.Protein, record.EstimatedGrams)
	record.Carbs = Scale(v.Carbs, record.EstimatedGrams)
	record.Fat = Scale(v.Fat, record.EstimatedGrams)
	return record
}
