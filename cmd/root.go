package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/timvw/rao-eval/internal/config"
	"github.com/timvw/rao-eval/internal/dataset"
	"github.com/timvw/rao-eval/internal/prompt"
	"github.com/timvw/rao-eval/internal/provider"
)

// Version is injected at build time with -ldflags "-X github.com/timvw/rao-eval/cmd.Version=...".
var Version = "dev"

var (
	// Global flags.
	flagConfig   string
	flagProvider string
	flagModel    string
	flagBaseURL  string
	flagAPIKey   string
	flagSplit    string
	flagDataDir  string
	flagPrompt   string
	flagVerbose  bool
	flagTrace    bool

	// cfg is the resolved configuration, set before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "rao-eval",
	Short: "Evaluate language models on Connect Four move selection",
	Long: heredoc.Doc(`
		rao-eval asks a language model for a move on each Connect Four task of a
		dataset split and records which column it picked.

		Every task is sent to one configured backend (anthropic, ollama, groq or
		openai). Replies are parsed into a column, checked against the board and
		written as a task id to column mapping for scoring.

		Configuration is read from defaults, a config file, RAO_EVAL_* environment
		variables and flags, in increasing order of precedence. A .env file in the
		working directory is loaded first.
	`),
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagTrace {
			logrus.SetLevel(logrus.TraceLevel)
		}

		// Missing .env is fine.
		_ = godotenv.Load()

		c, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		if err := applyFlags(cmd, c); err != nil {
			return err
		}
		if c.ConfigFile != "" {
			logrus.Debugf("config: loaded %s", c.ConfigFile)
		}
		cfg = c
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: .rao-eval.yaml, then $XDG_CONFIG_HOME/rao-eval/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "model backend: anthropic, ollama, groq, openai (default: ollama)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "model name (default depends on the provider)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "override the provider's API base URL")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "override the provider's API key")
	rootCmd.PersistentFlags().StringVar(&flagSplit, "split", "", "dataset split: training, evaluation (default: training)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "dataset root containing one directory per split (default: data)")
	rootCmd.PersistentFlags().StringVar(&flagPrompt, "prompt", "", "prompt regime: minimal, cot (default: minimal)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "log an excerpt of every raw model response")
	rootCmd.PersistentFlags().BoolVarP(&flagTrace, "trace", "t", false, "show trace information")
}

// applyFlags overrides configuration with the flags given on the command line.
func applyFlags(cmd *cobra.Command, c *config.Config) error {
	if changed(cmd, "provider") {
		c.Provider = flagProvider
	}
	if changed(cmd, "model") {
		c.Model = flagModel
	}
	if changed(cmd, "base-url") {
		c.BaseURL = flagBaseURL
	}
	if changed(cmd, "api-key") {
		c.APIKey = flagAPIKey
	}
	if changed(cmd, "split") {
		c.Split = flagSplit
	}
	if changed(cmd, "data-dir") {
		c.DataDir = flagDataDir
	}
	if changed(cmd, "prompt") {
		c.Prompt = flagPrompt
	}
	if changed(cmd, "verbose") {
		c.Verbose = flagVerbose
	}
	if changed(cmd, "tasks") {
		c.Tasks = flagTasks
	}
	if changed(cmd, "output") {
		c.Output = flagOutput
	}
	if changed(cmd, "details") {
		c.Details = flagDetails
	}
	if changed(cmd, "cooldown") {
		c.Cooldown = flagCooldown
	}
	if changed(cmd, "timeout") {
		c.Timeout = flagTimeout
	}
	if changed(cmd, "theme") {
		c.Theme = flagTheme
	}
	return c.ParseDurations()
}

// changed reports whether the named flag exists on cmd and was set.
func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// getRegime returns the configured prompt regime.
func getRegime() (prompt.Regime, error) {
	return prompt.ParseRegime(cfg.Prompt)
}

// getSplit validates the configured split name.
func getSplit() (string, error) {
	for _, s := range dataset.Splits {
		if cfg.Split == s {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown split %q (supported: %s)", cfg.Split, strings.Join(dataset.Splits, ", "))
}

// routerSettings builds the provider settings for the configured backend.
func routerSettings(regime prompt.Regime) provider.Settings {
	return provider.Settings{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKeyFor(cfg.Provider),
		System:    prompt.System(regime),
		MaxTokens: prompt.MaxTokens(regime),
		Timeout:   cfg.TimeoutDuration,
	}
}
