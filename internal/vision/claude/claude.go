package claude

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/snapcal/internal/domain"
	"github.com/vbonduro/snapcal/internal/vision"
)

const serviceName = "claude"

// maxTokens leaves room for a long food list; a typical plate is a handful of
// items at ~15 tokens each.
const maxTokens = 1024

type ClaudeIdentifier struct {
	client *anthropic.Client
	model  string
}

func NewClaudeIdentifier(apiKey, model string, opts ...anthropic.ClientOption) *ClaudeIdentifier {
	opts = append([]anthropic.ClientOption{anthropic.WithHTTPClient(&http.Client{})}, opts...)
	return &ClaudeIdentifier{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

// buildRequest constructs a Messages API request with the image first and
// the instruction prompt second.
func (c *ClaudeIdentifier) buildRequest(imageBase64 string) anthropic.MessagesRequest {
	return anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{{
			Role: anthropic.RoleUser,
			Content: []anthropic.MessageContent{
				anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
					anthropic.MessagesContentSourceTypeBase64,
					vision.ImageMIMEType,
					imageBase64,
				)),
				anthropic.NewTextMessageContent(vision.IdentifyPrompt),
			},
		}},
	}
}

func (c *ClaudeIdentifier) Identify(ctx context.Context, imageBase64 string) ([]domain.IdentifiedFoodItem, error) {
	resp, err := c.client.CreateMessages(ctx, c.buildRequest(imageBase64))
	if err != nil {
		return nil, &domain.TransportError{Service: serviceName, Err: err}
	}

	text := resp.GetFirstContentText()
	slog.Debug("claude identify response", "model", c.model, "chars", len(text))
	return vision.ParseFoodItems(text)
}
