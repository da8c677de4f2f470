package vision

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vbonduro/snapcal/internal/domain"
)

// fenceReplacer removes Markdown code fences that models like to wrap JSON in.
var fenceReplacer = strings.NewReplacer("```json", "", "```", "")

// StripFences removes every ```json and ``` marker from raw and trims the result.
func StripFences(raw string) string {
	return strings.TrimSpace(fenceReplacer.Replace(strings.TrimSpace(raw)))
}

type rawFoodItem struct {
	Name           *string  `json:"name"`
	EstimatedGrams *float64 `json:"estimatedGrams"`
}

// ParseFoodItems parses a model reply into identified food items. The reply
// must be a JSON array (optionally fenced) of {"name", "estimatedGrams"}
// objects. Names are lowercased.
func ParseFoodItems(raw string) ([]domain.IdentifiedFoodItem, error) {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return nil, &domain.ParseError{Raw: raw, Err: errors.New("empty response")}
	}

	var parsed []rawFoodItem
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, &domain.ParseError{Raw: raw, Err: err}
	}
	// A literal null unmarshals into a nil slice.
	if parsed == nil {
		return nil, &domain.ParseError{Raw: raw, Err: errors.New("response is not a JSON array")}
	}

	items := make([]domain.IdentifiedFoodItem, 0, len(parsed))
	for i, p := range parsed {
		if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
			return nil, &domain.ParseError{Raw: raw, Err: fmt.Errorf("item %d has no name", i)}
		}
		if p.EstimatedGrams == nil {
			return nil, &domain.ParseError{Raw: raw, Err: fmt.Errorf("item %d has no estimatedGrams", i)}
		}
		if *p.EstimatedGrams < 0 {
			return nil, &domain.ParseError{Raw: raw, Err: fmt.Errorf("item %d has negative estimatedGrams", i)}
		}
		items = append(items, domain.IdentifiedFoodItem{
			Name:           strings.ToLower(strings.TrimSpace(*p.Name)),
			EstimatedGrams: *p.EstimatedGrams,
		})
	}
	return items, nil
}
