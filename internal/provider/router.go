package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	ppotel "github.com/timvw/rao-eval/internal/otel"
)

// Settings is the resolved run configuration the router is built from.
// Credentials and endpoints are passed in explicitly; the router never
// reads the environment.
type Settings struct {
	// Provider is one of Names().
	Provider string
	// Model overrides the provider's default model.
	Model string
	// BaseURL overrides the provider's default endpoint.
	BaseURL string
	// APIKey is the credential for providers that need one.
	APIKey string
	// System is the system prompt sent with every request.
	System string
	// MaxTokens is the output token budget of every request.
	MaxTokens int64
	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Metrics records token usage and request durations; nil disables.
	Metrics *ppotel.Metrics
}

// Router binds one provider to the run's model, system prompt and token
// budget, and exposes a single call taking only the user message.
type Router struct {
	provider  Provider
	baseURL   string
	system    string
	maxTokens int64
	metrics   *ppotel.Metrics
}

// NewRouter resolves the configured provider and performs its one-time
// setup. It fails before any request is made when the provider is unknown
// or its required credential is missing.
func NewRouter(s Settings) (*Router, error) {
	name := strings.ToLower(strings.TrimSpace(s.Provider))
	d, ok := DefaultsFor(name)
	if !ok {
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnknownProvider, s.Provider, strings.Join(Names(), ", "))
	}
	if d.NeedsCredential() && s.APIKey == "" {
		return nil, fmt.Errorf("%w: %s environment variable not set (or pass --api-key)", ErrMissingCredential, d.CredentialEnv)
	}

	modelName := s.Model
	if modelName == "" {
		modelName = d.Model
	}
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = d.BaseURL
	}

	var p Provider
	switch name {
	case Anthropic:
		p = NewAnthropicProvider(AnthropicConfig{
			BaseURL: baseURL,
			APIKey:  s.APIKey,
			Model:   modelName,
			Timeout: s.Timeout,
		})
	case Ollama:
		p = NewOllamaProvider(OllamaConfig{
			BaseURL: baseURL,
			Model:   modelName,
			Timeout: s.Timeout,
		})
	case Groq, OpenAI:
		p = NewOpenAIProvider(OpenAIConfig{
			Name:    name,
			BaseURL: baseURL,
			APIKey:  s.APIKey,
			Model:   modelName,
			Timeout: s.Timeout,
		})
	}

	r := newRouter(p, s.System, s.MaxTokens, s.Metrics)
	r.baseURL = baseURL
	return r, nil
}

func newRouter(p Provider, system string, maxTokens int64, metrics *ppotel.Metrics) *Router {
	return &Router{
		provider:  p,
		system:    system,
		maxTokens: maxTokens,
		metrics:   metrics,
	}
}

// Provider returns the resolved provider name.
func (r *Router) Provider() string {
	return r.provider.Name()
}

// Model returns the resolved model name.
func (r *Router) Model() string {
	return r.provider.Model()
}

// BaseURL returns the resolved endpoint.
func (r *Router) BaseURL() string {
	return r.baseURL
}

// Call sends the user message with the bound system prompt and token budget
// and returns the raw reply text.
func (r *Router) Call(ctx context.Context, user string) (string, error) {
	start := time.Now()
	c, err := r.provider.Complete(ctx, r.system, user, r.maxTokens)
	r.metrics.RecordRequest(ctx, r.provider.Name(), r.provider.Model(), time.Since(start), err != nil)
	if err != nil {
		return "", err
	}
	r.metrics.RecordTokens(ctx, r.provider.Name(), r.provider.Model(), c.Usage.InputTokens, c.Usage.OutputTokens)
	return c.Text, nil
}
