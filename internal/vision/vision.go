package vision

import (
	"context"
	"net/http"

	"github.com/vbonduro/snapcal/internal/domain"
)

// IdentifyPrompt is the shared prompt used by all vision adapters.
const IdentifyPrompt = `You are a food recognition and nutrition expert.
Analyze this food image and identify all food items visible.
For each food item, estimate the quantity in grams.

Return ONLY a valid JSON array with no markdown, no explanation.
Format:
[{"name": "food name", "estimatedGrams": 100}]

Rules:
- Use lowercase names (e.g. "white rice", "grilled chicken breast")
- estimatedGrams must be a number
- If no food is found, return an empty array []`

// ImageMIMEType is the media type sent with every image. Photos reach the
// identifier as base64 JPEG.
const ImageMIMEType = "image/jpeg"

// IsJPEG reports whether data sniffs as a JPEG image. Other formats would be
// sent under the wrong media type and are rejected before identification.
func IsJPEG(data []byte) bool {
	return http.DetectContentType(data) == ImageMIMEType
}

// FoodIdentifier extracts food items and their estimated mass from a
// base64-encoded JPEG. An empty slice means no food was found.
// Implementations return *domain.TransportError when the model call fails and
// *domain.ParseError when the reply is not a JSON food list.
type FoodIdentifier interface {
	Identify(ctx context.Context, imageBase64 string) ([]domain.IdentifiedFoodItem, error)
}
