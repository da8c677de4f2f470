package gemini

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

	"github.com/tidwall/gjson"

	"github.com/vbonduro/snapcal/internal/domain"
	"github.com/vbonduro/snapcal/internal/vision"
)

const (
	serviceName    = "gemini"
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// request types mirror the generateContent REST payload.
type request struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type GeminiIdentifier struct {
	apiKey  string
	model   string
	client  *http.Client
	baseURL string
}

func NewGeminiIdentifier(apiKey, model string) *GeminiIdentifier {
	return &GeminiIdentifier{
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{},
		baseURL: defaultBaseURL,
	}
}

func (g *GeminiIdentifier) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
}

func (g *GeminiIdentifier) Identify(ctx context.Context, imageBase64 string) ([]domain.IdentifiedFoodItem, error) {
	payload, err := json.Marshal(request{
		Contents: []content{{
			Parts: []part{
				{Text: vision.IdentifyPrompt},
				{InlineData: &inlineData{MimeType: vision.ImageMIMEType, Data: imageBase64}},
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Service: serviceName, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close gemini response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Service: serviceName, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "error.message").String()
		if msg == "" {
			msg = string(bytes.TrimSpace(body))
		}
		return nil, &domain.TransportError{Service: serviceName, StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}

	return vision.ParseFoodItems(responseText(body))
}

// responseText joins the text parts of the first candidate.
func responseText(body []byte) string {
	var sb strings.Builder
	for _, t := range gjson.GetBytes(body, "candidates.0.content.parts.#.text").Array() {
		sb.WriteString(t.String())
	}
	return sb.String()
}
