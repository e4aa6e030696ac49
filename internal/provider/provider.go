// Package provider sends prompts to interchangeable text-generation backends
// and normalizes their replies to plain text.
//
// Each backend has its own auth scheme, payload shape and response envelope.
// Adapters hide that behind Provider; the Router binds one adapter to the
// run's model, system prompt and token budget. Transport failures from every
// adapter surface as *StatusError or a wrapped network error so callers can
// classify them without knowing which backend produced them.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/timvw/rao-eval/internal/model"
)

// Provider names.
const (
	Anthropic = "anthropic"
	Ollama    = "ollama"
	Groq      = "groq"
	OpenAI    = "openai"
)

// UserAgent identifies this client to every backend. Some providers block
// requests without one.
const UserAgent = "rao-eval/1.0"

// DefaultTimeout bounds a single provider request.
const DefaultTimeout = 60 * time.Second

var (
	// ErrUnknownProvider is returned for a provider name outside Names().
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrMissingCredential is returned when a provider needs an API key and none was given.
	ErrMissingCredential = errors.New("missing credential")
)

// Completion is the normalized reply of one request.
type Completion struct {
	Text  string
	Usage model.TokenUsage
}

// Provider sends one system + user prompt pair and returns the raw reply.
type Provider interface {
	// Complete performs a single request with the given output token budget.
	Complete(ctx context.Context, system, user string, maxTokens int64) (*Completion, error)

	// Name returns the provider name (e.g., "anthropic", "groq").
	Name() string

	// Model returns the model name used for requests.
	Model() string
}

// Defaults describes a provider's built-in endpoint and credential source.
type Defaults struct {
	Model   string
	BaseURL string
	// CredentialEnv is the environment variable holding the API key.
	// Empty for backends that take no credential.
	CredentialEnv string
}

// NeedsCredential reports whether the provider requires an API key.
func (d Defaults) NeedsCredential() bool {
	return d.CredentialEnv != ""
}

var names = []string{Anthropic, Ollama, Groq, OpenAI}

var defaults = map[string]Defaults{
	Anthropic: {
		Model:         "claude-haiku-4-5-20251001",
		BaseURL:       "https://api.anthropic.com",
		CredentialEnv: "ANTHROPIC_API_KEY",
	},
	Ollama: {
		Model:   "llama3.2",
		BaseURL: "http://localhost:11434",
	},
	Groq: {
		Model:         "llama-3.3-70b-versatile",
		BaseURL:       "https://api.groq.com/openai",
		CredentialEnv: "GROQ_API_KEY",
	},
	OpenAI: {
		Model:         "gpt-4o-mini",
		BaseURL:       "https://api.openai.com",
		CredentialEnv: "OPENAI_API_KEY",
	},
}

// Names returns the supported provider names.
func Names() []string {
	return append([]string(nil), names...)
}

// DefaultsFor returns the built-in defaults for a provider.
func DefaultsFor(name string) (Defaults, bool) {
	d, ok := defaults[name]
	return d, ok
}
