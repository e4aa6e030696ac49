package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"

	"github.com/timvw/rao-eval/internal/model"
)

// OpenAIProvider calls an OpenAI-compatible Chat Completions endpoint.
// Works with OpenAI, Groq, and any endpoint serving <base>/v1/chat/completions.
//
// Requests go through the shared postJSON helper so errors have the same
// shape as the other HTTP backends; openai-go supplies the wire types.
type OpenAIProvider struct {
	name    string
	http    *http.Client
	url     string
	model   string
	headers map[string]string
}

// OpenAIConfig holds configuration for an OpenAI-compatible provider.
type OpenAIConfig struct {
	// Name is the provider name reported in logs and spans ("openai", "groq").
	Name string
	// BaseURL is the API root; /v1/chat/completions is appended.
	BaseURL string
	// APIKey is sent as a bearer token.
	APIKey string
	// Model is the model name (e.g., "gpt-4o-mini").
	Model string
	// Timeout bounds a single request. Defaults to DefaultTimeout.
	Timeout time.Duration
	// ExtraHeaders are additional HTTP headers.
	ExtraHeaders map[string]string
}

// NewOpenAIProvider creates a new OpenAI-compatible provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	name := cfg.Name
	if name == "" {
		name = OpenAI
	}
	headers := map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + cfg.APIKey,
	}
	for k, v := range cfg.ExtraHeaders {
		headers[k] = v
	}
	return &OpenAIProvider{
		name:    name,
		http:    newHTTPClient(cfg.Timeout),
		url:     endpoint(cfg.BaseURL, "/v1/chat/completions"),
		model:   cfg.Model,
		headers: headers,
	}
}

// Name returns the configured provider name.
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Model returns the model name.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Complete posts the prompt pair and returns choices[0].message.content.
func (p *OpenAIProvider) Complete(ctx context.Context, system, user string, maxTokens int64) (*Completion, error) {
	ctx, span := startChatSpan(ctx, p.name, p.model, maxTokens, system, user)
	defer span.End()

	params := openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxTokens: openai.Int(maxTokens),
	}

	var resp openai.ChatCompletion
	if err := postJSON(ctx, p.http, p.url, params, p.headers, &resp); err != nil {
		err = fmt.Errorf("%s API call failed: %w", p.name, err)
		failSpan(span, "api_error", err)
		return nil, err
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("%s API returned empty response", p.name)
		failSpan(span, "empty_response", err)
		return nil, err
	}

	c := &Completion{
		Text: resp.Choices[0].Message.Content,
		Usage: model.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}
	finishChatSpan(span, resp.Model, string(resp.Choices[0].FinishReason), c)
	return c, nil
}
