package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vbonduro/snapcal/internal/domain"
	"github.com/vbonduro/snapcal/internal/vision"
)

// NutritionLookup resolves one identified item to scaled nutrition. A food
// the database does not know is a zero-valued record, not an error.
type NutritionLookup interface {
	Lookup(ctx context.Context, name string, estimatedGrams float64) (domain.FoodNutrition, error)
}

// Scanner turns a food photo into a nutrition breakdown. It holds no
// per-scan state; concurrent calls are independent.
type Scanner struct {
	identifier vision.FoodIdentifier
	lookup     NutritionLookup
	observer   Observer
	logger     *slog.Logger
}

// NewScanner returns a Scanner. observer may be nil.
func NewScanner(identifier vision.FoodIdentifier, lookup NutritionLookup, observer Observer, logger *slog.Logger) *Scanner {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Scanner{
		identifier: identifier,
		lookup:     lookup,
		observer:   observer,
		logger:     logger,
	}
}

// Scan identifies the foods in a base64 JPEG, looks up each one concurrently
// and aggregates the totals. Every failure is returned as *Error. A failed
// lookup for any single item fails the whole scan.
func (s *Scanner) Scan(ctx context.Context, imageBase64 string) (result *domain.ScanResult, err error) {
	start := time.Now()
	s.observer.ScanStarted()

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("panic during scan: %v", r)
		}
		if err != nil {
			scanErr := newError(err)
			if scanErr.Kind == KindEmpty {
				s.logger.Info("no food detected in image")
			} else {
				s.logger.Error("scan failed", "kind", scanErr.Kind.String(), "error", err)
			}
			result, err = nil, scanErr
		}
		s.observer.ScanFinished(result, err, time.Since(start))
	}()

	items, err := s.identifier.Identify(ctx, imageBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to identify food: %w", err)
	}
	s.observer.ItemsIdentified(len(items))
	s.logger.Info("food identified", "items", len(items))

	if len(items) == 0 {
		return nil, ErrNoFood
	}

	records, err := s.lookupAll(ctx, items)
	if err != nil {
		return nil, err
	}

	aggregated := Aggregate(records)
	s.logger.Info("scan complete",
		"items", len(records),
		"total_calories", aggregated.TotalCalories,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &aggregated, nil
}

// lookupAll issues one lookup per item concurrently. The first failure
// cancels the shared context and is returned; records keep item order.
func (s *Scanner) lookupAll(ctx context.Context, items []domain.IdentifiedFoodItem) ([]domain.FoodNutrition, error) {
	records := make([]domain.FoodNutrition, len(items))
	g, gctx := errgroup.WithContext(ctx)

	for i, item := range items {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic looking up %q: %v", item.Name, r)
				}
				s.observer.LookupFinished(item, err)
			}()

			rec, err := s.lookup.Lookup(gctx, item.Name, item.EstimatedGrams)
			if err != nil {
				return fmt.Errorf("failed to look up nutrition for %q: %w", item.Name, err)
			}
			records[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
