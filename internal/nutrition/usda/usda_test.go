package usda

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/snapcal/internal/domain"
	"github.com/vbonduro/snapcal/internal/nutrition"
)

func riceResponse() map[string]any {
	return map[string]any{
		"totalHits": 1,
		"foods": []map[string]any{{
			"description": "Rice, white, cooked",
			"foodNutrients": []map[string]any{
				{"nutrientName": "Protein", "value": 2.7},
				{"nutrientName": "Total lipid (fat)", "value": 0.3},
				{"nutrientName": "Carbohydrate, by difference", "value": 28},
				{"nutrientName": "Energy", "value": 130},
				{"nutrientName": "Energy", "value": 544},
			},
		}},
	}
}

func TestSearch(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/foods/search", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(riceResponse())
	}))
	defer server.Close()

	client := NewClient("demo-key", server.URL)

	got, err := client.Search(context.Background(), "white rice & beans")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, nutrition.Per100g{Calories: 130, Protein: 2.7, Carbs: 28, Fat: 0.3}, *got)

	assert.Equal(t, []string{"white rice & beans"}, gotQuery["query"])
	assert.Equal(t, []string{"1"}, gotQuery["pageSize"])
	assert.Equal(t, []string{"demo-key"}, gotQuery["api_key"])
}

func TestSearchMissingNutrientsAreZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"foods": []map[string]any{{
				"description":   "Water",
				"foodNutrients": []map[string]any{{"nutrientName": "ENERGY", "value": 0.4}},
			}},
		})
	}))
	defer server.Close()

	got, err := NewClient("k", server.URL).Search(context.Background(), "water")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, nutrition.Per100g{Calories: 0.4}, *got)
}

func TestSearchNoMatch(t *testing.T) {
	for name, body := range map[string]string{
		"empty foods":   `{"totalHits": 0, "foods": []}`,
		"missing foods": `{"totalHits": 0}`,
	} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			got, err := NewClient("k", server.URL).Search(context.Background(), "unobtainium")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "over rate limit", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewClient("k", server.URL).Search(context.Background(), "white rice")

	var transportErr *domain.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusTooManyRequests, transportErr.StatusCode)
	assert.Contains(t, err.Error(), "over rate limit")
}

func TestSearchNetworkError(t *testing.T) {
	_, err := NewClient("k", "http://localhost:99999").Search(context.Background(), "white rice")

	var transportErr *domain.TransportError
	assert.True(t, errors.As(err, &transportErr))
}

func TestResolverOverUSDA(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(riceResponse())
	}))
	defer server.Close()

	resolver := nutrition.NewResolver(NewClient("k", server.URL), 0, 0)

	got, err := resolver.Lookup(context.Background(), "white rice", 150)
	require.NoError(t, err)
	assert.Equal(t, domain.FoodNutrition{
		Name: "white rice", EstimatedGrams: 150,
		Calories: 195.0, Protein: 4.1, Carbs: 42.0, Fat: 0.5,
	}, got)
}
