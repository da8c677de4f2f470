package usda

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vbonduro/snapcal/internal/domain"
	"github.com/vbonduro/snapcal/internal/nutrition"
)

const (
	serviceName    = "usda"
	DefaultBaseURL = "https://api.nal.usda.gov/fdc/v1"
)

// Nutrient name fragments, matched case-insensitively against nutrientName.
const (
	nutrientEnergy  = "Energy"
	nutrientProtein = "Protein"
	nutrientCarbs   = "Carbohydrate"
	nutrientFat     = "Total lipid"
)

type searchResponse struct {
	Foods []food `json:"foods"`
}

type food struct {
	Description   string     `json:"description"`
	FoodNutrients []nutrient `json:"foodNutrients"`
}

type nutrient struct {
	NutrientName string  `json:"nutrientName"`
	Value        float64 `json:"value"`
}

// Client searches USDA FoodData Central.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) searchURL(name string) string {
	q := url.Values{}
	q.Set("query", name)
	q.Set("pageSize", "1")
	q.Set("api_key", c.apiKey)
	return c.baseURL + "/foods/search?" + q.Encode()
}

// Search returns the per-100g values of the single best match for name, or
// nil when FoodData Central has no match.
func (c *Client) Search(ctx context.Context, name string) (*nutrition.Per100g, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(name), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Service: serviceName, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close usda response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &domain.TransportError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Err:        errors.New(string(bytes.TrimSpace(errBody))),
		}
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode usda response: %w", err)
	}

	if len(body.Foods) == 0 {
		slog.Debug("usda has no match", "query", name)
		return nil, nil
	}

	match := body.Foods[0]
	return &nutrition.Per100g{
		Calories: nutrientValue(match.FoodNutrients, nutrientEnergy),
		Protein:  nutrientValue(match.FoodNutrients, nutrientProtein),
		Carbs:    nutrientValue(match.FoodNutrients, nutrientCarbs),
		Fat:      nutrientValue(match.FoodNutrients, nutrientFat),
	}, nil
}

// nutrientValue returns the value of the first nutrient whose name contains
// fragment, ignoring case, or 0.
func nutrientValue(nutrients []nutrient, fragment string) float64 {
	fragment = strings.ToLower(fragment)
	for _, n := range nutrients {
		if strings.Contains(strings.ToLower(n.NutrientName), fragment) {
			return n.Value
		}
	}
	return 0
}
