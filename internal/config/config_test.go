package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
)

// isolate runs the test in an empty directory with an empty XDG config home
// and no RAO_EVAL_* or credential variables set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("XDG_CONFIG_DIRS", filepath.Join(dir, "xdg-dirs"))
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "RAO_EVAL_") || strings.HasPrefix(name, "OTEL_EXPORTER_OTLP_") ||
			strings.HasSuffix(name, "_API_KEY") {
			t.Setenv(name, "")
		}
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Provider != "ollama" {
		t.Errorf("Provider: got %q, want %q", cfg.Provider, "ollama")
	}
	if cfg.Prompt != "minimal" {
		t.Errorf("Prompt: got %q, want %q", cfg.Prompt, "minimal")
	}
	if cfg.Split != "training" {
		t.Errorf("Split: got %q, want %q", cfg.Split, "training")
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir: got %q, want %q", cfg.DataDir, "data")
	}
	if cfg.Cooldown != "20s" {
		t.Errorf("Cooldown: got %q, want %q", cfg.Cooldown, "20s")
	}
	if cfg.Tasks != 0 {
		t.Errorf("Tasks: got %d, want 0", cfg.Tasks)
	}
}

func TestLoad_NoFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ConfigFile != "" {
		t.Errorf("ConfigFile: got %q, want empty", cfg.ConfigFile)
	}
	if cfg.CooldownDuration != 20*time.Second {
		t.Errorf("CooldownDuration: got %v, want 20s", cfg.CooldownDuration)
	}
	if cfg.TimeoutDuration != 60*time.Second {
		t.Errorf("TimeoutDuration: got %v, want 60s", cfg.TimeoutDuration)
	}
}

func TestLoad_LocalFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".rao-eval.yaml"), `
provider: groq
model: llama-3.1-8b-instant
prompt: cot
tasks: 5
cooldown: 5s
`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ConfigFile != ".rao-eval.yaml" {
		t.Errorf("ConfigFile: got %q", cfg.ConfigFile)
	}
	if cfg.Provider != "groq" || cfg.Model != "llama-3.1-8b-instant" || cfg.Prompt != "cot" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Tasks != 5 {
		t.Errorf("Tasks: got %d, want 5", cfg.Tasks)
	}
	if cfg.CooldownDuration != 5*time.Second {
		t.Errorf("CooldownDuration: got %v, want 5s", cfg.CooldownDuration)
	}
	if cfg.Split != "training" {
		t.Errorf("unset keys keep defaults, Split: got %q", cfg.Split)
	}
}

func TestLoad_XDGFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "xdg", "rao-eval", "config.yaml"), "provider: openai\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider: got %q, want openai", cfg.Provider)
	}
	if !strings.HasSuffix(cfg.ConfigFile, filepath.Join("rao-eval", "config.yaml")) {
		t.Errorf("ConfigFile: got %q", cfg.ConfigFile)
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".rao-eval.yaml"), "provider: groq\n")
	explicit := filepath.Join(dir, "custom.yaml")
	writeFile(t, explicit, "provider: anthropic\n")

	cfg, err := Load(explicit)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "anthropic" {
		t.Errorf("explicit file should win over search path, got %q", cfg.Provider)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr string
	}{
		{name: "bad yaml", file: "provider: [unclosed", wantErr: "parsing config file"},
		{name: "bad cooldown", file: "cooldown: soon", wantErr: "invalid cooldown"},
		{name: "bad timeout env", env: map[string]string{"RAO_EVAL_TIMEOUT": "fast"}, wantErr: "invalid timeout"},
		{name: "zero timeout", file: "timeout: 0", wantErr: "must be a positive duration"},
		{name: "timeout off env", env: map[string]string{"RAO_EVAL_TIMEOUT": "off"}, wantErr: "must be a positive duration"},
		{name: "negative timeout env", env: map[string]string{"RAO_EVAL_TIMEOUT": "-5s"}, wantErr: "must be a positive duration"},
		{name: "bad tasks env", env: map[string]string{"RAO_EVAL_TASKS": "many"}, wantErr: "RAO_EVAL_TASKS"},
		{name: "negative tasks env", env: map[string]string{"RAO_EVAL_TASKS": "-1"}, wantErr: "RAO_EVAL_TASKS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			if tt.file != "" {
				writeFile(t, filepath.Join(dir, ".rao-eval.yaml"), tt.file)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Load err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	dir := isolate(t)
	if _, err := Load(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".rao-eval.yaml"), `
provider: groq
split: training
cooldown: 5s
otel_endpoint: http://file:4318
`)
	t.Setenv("RAO_EVAL_PROVIDER", "anthropic")
	t.Setenv("RAO_EVAL_SPLIT", "evaluation")
	t.Setenv("RAO_EVAL_TASKS", "3")
	t.Setenv("RAO_EVAL_COOLDOWN", "off")
	t.Setenv("RAO_EVAL_VERBOSE", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://env:4318")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "anthropic" {
		t.Errorf("Provider: got %q", cfg.Provider)
	}
	if cfg.Split != "evaluation" {
		t.Errorf("Split: got %q", cfg.Split)
	}
	if cfg.Tasks != 3 {
		t.Errorf("Tasks: got %d", cfg.Tasks)
	}
	if cfg.CooldownDuration != 0 {
		t.Errorf("CooldownDuration: got %v, want 0 (disabled)", cfg.CooldownDuration)
	}
	if !cfg.Verbose {
		t.Error("Verbose not set from env")
	}
	if cfg.OTELEndpoint != "http://env:4318" {
		t.Errorf("OTELEndpoint: got %q", cfg.OTELEndpoint)
	}
}

func TestAPIKeyFor(t *testing.T) {
	isolate(t)
	t.Setenv("GROQ_API_KEY", "gsk-env")
	t.Setenv("ANTHROPIC_API_KEY", "ak-env")

	tests := []struct {
		name     string
		explicit string
		provider string
		want     string
	}{
		{name: "groq from env", provider: "groq", want: "gsk-env"},
		{name: "anthropic from env", provider: "anthropic", want: "ak-env"},
		{name: "openai unset", provider: "openai", want: ""},
		{name: "ollama has no credential", provider: "ollama", want: ""},
		{name: "unknown provider", provider: "gemini", want: ""},
		{name: "explicit wins", explicit: "sk-explicit", provider: "groq", want: "sk-explicit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.APIKey = tt.explicit
			if got := cfg.APIKeyFor(tt.provider); got != tt.want {
				t.Errorf("APIKeyFor(%q) = %q, want %q", tt.provider, got, tt.want)
			}
		})
	}
}

func TestParseDurationOrDisable(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "", want: 7 * time.Second},
		{in: "0", want: 0},
		{in: "off", want: 0},
		{in: "disable", want: 0},
		{in: "1m30s", want: 90 * time.Second},
		{in: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDurationOrDisable(tt.in, 7*time.Second)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
