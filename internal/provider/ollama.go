package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/timvw/rao-eval/internal/model"
)

// OllamaProvider calls a local Ollama server's /api/chat endpoint.
// Ollama takes no credential.
type OllamaProvider struct {
	http  *http.Client
	url   string
	model string
}

// OllamaConfig holds configuration for the Ollama provider.
type OllamaConfig struct {
	// BaseURL is the server root (e.g., "http://localhost:11434").
	BaseURL string
	// Model is the model name (e.g., "llama3.2").
	Model string
	// Timeout bounds a single request. Defaults to DefaultTimeout.
	Timeout time.Duration
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	NumPredict int64 `json:"num_predict"`
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
	Messages []chatMessage `json:"messages"`
}

type ollamaChatResponse struct {
	Model           string      `json:"model"`
	Message         chatMessage `json:"message"`
	DoneReason      string      `json:"done_reason"`
	PromptEvalCount int64       `json:"prompt_eval_count"`
	EvalCount       int64       `json:"eval_count"`
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	return &OllamaProvider{
		http:  newHTTPClient(cfg.Timeout),
		url:   endpoint(cfg.BaseURL, "/api/chat"),
		model: cfg.Model,
	}
}

// Name returns "ollama".
func (p *OllamaProvider) Name() string {
	return Ollama
}

// Model returns the model name.
func (p *OllamaProvider) Model() string {
	return p.model
}

// Complete posts a non-streaming chat request and returns message.content.
func (p *OllamaProvider) Complete(ctx context.Context, system, user string, maxTokens int64) (*Completion, error) {
	ctx, span := startChatSpan(ctx, Ollama, p.model, maxTokens, system, user)
	defer span.End()

	req := ollamaChatRequest{
		Model:   p.model,
		Stream:  false,
		Options: ollamaOptions{NumPredict: maxTokens},
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	headers := map[string]string{"Content-Type": "application/json"}

	var resp ollamaChatResponse
	if err := postJSON(ctx, p.http, p.url, req, headers, &resp); err != nil {
		err = fmt.Errorf("ollama API call failed: %w", err)
		failSpan(span, "api_error", err)
		return nil, err
	}

	c := &Completion{
		Text: resp.Message.Content,
		Usage: model.TokenUsage{
			InputTokens:  resp.PromptEvalCount,
			OutputTokens: resp.EvalCount,
		},
	}
	finishChatSpan(span, resp.Model, resp.DoneReason, c)
	return c, nil
}
