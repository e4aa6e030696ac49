package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/timvw/rao-eval/internal/model"
)

// AnthropicProvider calls the Anthropic Messages API through the official SDK.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// AnthropicConfig holds configuration for the Anthropic provider.
type AnthropicConfig struct {
	// BaseURL is the API endpoint. The SDK appends v1/messages.
	BaseURL string
	// APIKey is the API key.
	APIKey string
	// Model is the model name (e.g., "claude-haiku-4-5-20251001").
	Model string
	// Timeout bounds a single request. Defaults to DefaultTimeout.
	Timeout time.Duration
	// ExtraHeaders are additional HTTP headers.
	ExtraHeaders map[string]string
}

// NewAnthropicProvider creates a new Anthropic provider. SDK retries are
// disabled: a failed request is reported once and never retried.
func NewAnthropicProvider(cfg AnthropicConfig) *AnthropicProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	opts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
		option.WithHeader("User-Agent", UserAgent),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	for k, v := range cfg.ExtraHeaders {
		opts = append(opts, option.WithHeader(k, v))
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Name returns "anthropic".
func (p *AnthropicProvider) Name() string {
	return Anthropic
}

// Model returns the model name.
func (p *AnthropicProvider) Model() string {
	return p.model
}

// Complete sends the prompt pair to the Messages API and returns the text of
// the first content block.
func (p *AnthropicProvider) Complete(ctx context.Context, system, user string, maxTokens int64) (*Completion, error) {
	ctx, span := startChatSpan(ctx, Anthropic, p.model, maxTokens, system, user)
	defer span.End()

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(user),
			),
		},
	})
	if err != nil {
		err = fmt.Errorf("anthropic API call failed: %w", fromAnthropicError(err))
		failSpan(span, "api_error", err)
		return nil, err
	}

	if len(resp.Content) == 0 {
		err := errors.New("anthropic API returned empty response")
		failSpan(span, "empty_response", err)
		return nil, err
	}

	c := &Completion{
		Text: resp.Content[0].Text,
		Usage: model.TokenUsage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}
	finishChatSpan(span, string(resp.Model), string(resp.StopReason), c)
	return c, nil
}

// fromAnthropicError converts SDK API errors to *StatusError so rate limits
// are classified the same way for every provider.
func fromAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &StatusError{
			Code: apiErr.StatusCode,
			Body: model.Truncate(apiErr.RawJSON(), maxErrorBody),
		}
	}
	return err
}
