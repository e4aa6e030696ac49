// Package config loads rao-eval configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Command-line flags (applied by cmd)
//  2. Environment variables (RAO_EVAL_*)
//  3. Config file
//  4. Built-in defaults
//
// Config file search order:
//  1. --config path, if given
//  2. .rao-eval.yaml in current directory
//  3. $XDG_CONFIG_HOME/rao-eval/config.yaml (and the XDG config dirs)
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/timvw/rao-eval/internal/provider"
)

const (
	localConfigFile = ".rao-eval.yaml"
	xdgConfigFile   = "rao-eval/config.yaml"
)

// Config holds all rao-eval configuration.
type Config struct {
	// Model backend
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`

	// Evaluation
	Prompt  string `yaml:"prompt"` // "minimal" or "cot"
	Split   string `yaml:"split"`  // "training" or "evaluation"
	DataDir string `yaml:"data_dir"`
	Tasks   int    `yaml:"tasks"` // 0 means all tasks
	Output  string `yaml:"output"`
	Details string `yaml:"details"` // JSON Lines file of per-task outcomes
	Verbose bool   `yaml:"verbose"`
	Theme   string `yaml:"theme"` // summary palette: "dark" (default) or "light"

	// Timing
	Cooldown string `yaml:"cooldown"` // Go duration string, e.g. "20s"; "0" disables
	Timeout  string `yaml:"timeout"`  // per-request timeout; must be positive

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs, e.g. "Authorization=Basic abc123"

	// Parsed durations (not from YAML, set by ParseDurations)
	CooldownDuration time.Duration `yaml:"-"`
	TimeoutDuration  time.Duration `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		Provider: provider.Ollama,
		Prompt:   "minimal",
		Split:    "training",
		DataDir:  "data",
		Theme:    "dark",
		Cooldown: "20s",
		Timeout:  "60s",
	}
}

// Load reads configuration from file and environment variables.
// An explicit path must exist; otherwise the search locations are tried and
// a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	path, data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	if data != nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	if err := mergeEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.ParseDurations(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseDurations fills the parsed duration fields from their string form.
// Call it again after overriding Cooldown or Timeout.
func (c *Config) ParseDurations() error {
	var err error
	c.CooldownDuration, err = parseDurationOrDisable(c.Cooldown, 20*time.Second)
	if err != nil {
		return fmt.Errorf("invalid cooldown %q: %w", c.Cooldown, err)
	}
	c.TimeoutDuration, err = parseDurationOrDisable(c.Timeout, provider.DefaultTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	// Requests always carry a deadline; there is no way to turn it off.
	if c.TimeoutDuration <= 0 {
		return fmt.Errorf("invalid timeout %q: must be a positive duration", c.Timeout)
	}
	return nil
}

// APIKeyFor returns the credential to use for the named provider: the
// explicit api_key if set, otherwise the provider's credential variable.
func (c *Config) APIKeyFor(name string) string {
	if c.APIKey != "" {
		return c.APIKey
	}
	d, ok := provider.DefaultsFor(strings.ToLower(strings.TrimSpace(name)))
	if !ok || d.CredentialEnv == "" {
		return ""
	}
	return os.Getenv(d.CredentialEnv)
}

// readConfigFile returns the path and contents of the config file to use.
// data is nil when no file was found in the search locations.
func readConfigFile(explicit string) (string, []byte, error) {
	if explicit != "" {
		data, err := os.ReadFile(explicit)
		if err != nil {
			return "", nil, fmt.Errorf("reading config file: %w", err)
		}
		return explicit, data, nil
	}

	// 1. Current directory
	if data, err := os.ReadFile(localConfigFile); err == nil {
		return localConfigFile, data, nil
	}

	// 2. XDG config dirs
	if path, err := xdg.SearchConfigFile(xdgConfigFile); err == nil {
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, nil
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.Provider != "" {
		cfg.Provider = file.Provider
	}
	if file.Model != "" {
		cfg.Model = file.Model
	}
	if file.BaseURL != "" {
		cfg.BaseURL = file.BaseURL
	}
	if file.APIKey != "" {
		cfg.APIKey = file.APIKey
	}
	if file.Prompt != "" {
		cfg.Prompt = file.Prompt
	}
	if file.Split != "" {
		cfg.Split = file.Split
	}
	if file.DataDir != "" {
		cfg.DataDir = file.DataDir
	}
	if file.Tasks > 0 {
		cfg.Tasks = file.Tasks
	}
	if file.Output != "" {
		cfg.Output = file.Output
	}
	if file.Details != "" {
		cfg.Details = file.Details
	}
	if file.Verbose {
		cfg.Verbose = true
	}
	if file.Theme != "" {
		cfg.Theme = file.Theme
	}
	if file.Cooldown != "" {
		cfg.Cooldown = file.Cooldown
	}
	if file.Timeout != "" {
		cfg.Timeout = file.Timeout
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
}

// mergeEnv applies environment variables onto cfg. Env wins over the file.
func mergeEnv(cfg *Config) error {
	if v := os.Getenv("RAO_EVAL_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("RAO_EVAL_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("RAO_EVAL_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("RAO_EVAL_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("RAO_EVAL_PROMPT"); v != "" {
		cfg.Prompt = v
	}
	if v := os.Getenv("RAO_EVAL_SPLIT"); v != "" {
		cfg.Split = v
	}
	if v := os.Getenv("RAO_EVAL_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("RAO_EVAL_TASKS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid RAO_EVAL_TASKS %q: must be a non-negative integer", v)
		}
		cfg.Tasks = n
	}
	if v := os.Getenv("RAO_EVAL_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("RAO_EVAL_DETAILS"); v != "" {
		cfg.Details = v
	}
	if v := os.Getenv("RAO_EVAL_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("RAO_EVAL_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("RAO_EVAL_COOLDOWN"); v != "" {
		cfg.Cooldown = v
	}
	if v := os.Getenv("RAO_EVAL_TIMEOUT"); v != "" {
		cfg.Timeout = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}
	return nil
}

// parseDurationOrDisable parses a duration string. "0", "off", "disable" return 0.
// Empty string returns the fallback value.
func parseDurationOrDisable(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	if s == "0" || s == "off" || s == "disable" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
