package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vbonduro/snapcal/internal/domain"
	"github.com/vbonduro/snapcal/internal/vision"
)

const serviceName = "ollama"

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type OllamaIdentifier struct {
	host   string
	model  string
	client *http.Client
}

func NewOllamaIdentifier(host, model string) *OllamaIdentifier {
	return &OllamaIdentifier{
		host:   host,
		model:  model,
		client: &http.Client{},
	}
}

func (a *OllamaIdentifier) Identify(ctx context.Context, imageBase64 string) ([]domain.IdentifiedFoodItem, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  a.model,
		Prompt: vision.IdentifyPrompt,
		Images: []string{imageBase64},
		Stream: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Service: serviceName, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close ollama response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, &domain.TransportError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Err:        errors.New(string(bytes.TrimSpace(errBody))),
		}
	}

	var respBody generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return vision.ParseFoodItems(respBody.Response)
}
