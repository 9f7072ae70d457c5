package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"biasbuster-backend/internal/llm"
	"biasbuster-backend/internal/shared/telemetry"
)

const (
	providerName     = "anthropic"
	defaultMaxTokens = 1024
)

// Client implements llm.Client on the Anthropic Messages API.
type Client struct {
	client anthropic.Client
	model  string
}

// NewClient builds a Messages client. Retries are handled by the caller, so
// the SDK's own retry loop is turned off.
func NewClient(apiKey, model string, timeout time.Duration, opts ...option.RequestOption) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Anthropic")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	return &Client{
		client: anthropic.NewClient(append(base, opts...)...),
		model:  model,
	}, nil
}

// Complete sends one message and returns the first text block.
func (c *Client) Complete(ctx context.Context, in llm.ChatRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   defaultMaxTokens,
		Temperature: anthropic.Float(in.Temperature),
		System:      []anthropic.TextBlockParam{{Text: in.System}},
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: in.User},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", toUpstreamError(err)
	}

	telemetry.Debug("llm.response", map[string]any{
		"provider":      providerName,
		"model":         c.model,
		"response_id":   resp.ID,
		"input_tokens":  resp.Usage.InputTokens,
		"output_tokens": resp.Usage.OutputTokens,
	})

	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		if text := strings.TrimSpace(block.AsText().Text); text != "" {
			return text, nil
		}
	}
	return "", llm.ErrEmptyCompletion
}

func toUpstreamError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &llm.UpstreamError{
			Provider:   providerName,
			StatusCode: apiErr.StatusCode,
			Message:    http.StatusText(apiErr.StatusCode),
			Err:        err,
		}
	}
	return &llm.UpstreamError{Provider: providerName, Err: err}
}

var _ llm.Client = (*Client)(nil)
