package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/briandowns/spinner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/timvw/rao-eval/internal/dataset"
	"github.com/timvw/rao-eval/internal/harness"
	"github.com/timvw/rao-eval/internal/model"
	telem "github.com/timvw/rao-eval/internal/otel"
	"github.com/timvw/rao-eval/internal/provider"
	"github.com/timvw/rao-eval/internal/report"
)

var (
	flagTasks    int
	flagOutput   string
	flagDetails  string
	flagCooldown string
	flagTimeout  string
	flagTheme    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate the configured model on a dataset split",
	Long: heredoc.Doc(`
		Run sends every task of the selected split to the configured model, one
		at a time, and writes a JSON object mapping task id to the chosen column.

		A task whose request fails or whose reply holds no column is left out of
		the results and reported in the log. Illegal columns are kept in the
		results and flagged. After a rate-limited request the run pauses before
		the next task; the failed task is not retried.
	`),
	Example: heredoc.Doc(`
		$ rao-eval run --provider ollama --tasks 10
		$ rao-eval run --provider groq --prompt cot --split evaluation --output results.json
	`),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		regime, err := getRegime()
		if err != nil {
			return err
		}
		split, err := getSplit()
		if err != nil {
			return err
		}

		tasks, err := dataset.Load(cfg.DataDir, split, cfg.Tasks)
		if err != nil {
			return err
		}

		telem.Version = Version
		tel, err := telem.Init(ctx, telem.OTELConfig{
			Endpoint: cfg.OTELEndpoint,
			Headers:  cfg.OTELHeaders,
			Provider: cfg.Provider,
			Model:    cfg.Model,
			Prompt:   string(regime),
			Split:    split,
		})
		if err != nil {
			logrus.Warnf("otel init failed: %v", err)
		}
		defer func() {
			if err := tel.Shutdown(ctx); err != nil {
				logrus.Warnf("otel shutdown: %v", err)
			}
		}()
		var metrics *telem.Metrics
		if tel != nil {
			metrics = tel.Metrics
		}

		settings := routerSettings(regime)
		settings.Metrics = metrics
		router, err := provider.NewRouter(settings)
		if err != nil {
			return err
		}

		if router.Provider() == provider.Ollama {
			logrus.Infof("Executing local requests to Ollama at %s", router.BaseURL())
		}
		logrus.WithFields(logrus.Fields{
			"provider": router.Provider(),
			"model":    router.Model(),
			"prompt":   regime,
			"split":    split,
			"tasks":    len(tasks),
		}).Info("starting evaluation")

		out, err := openOutputs(cmd.OutOrStdout(), cfg.Output, cfg.Details)
		if err != nil {
			return err
		}

		h := harness.New(router, regime)
		h.Metrics = metrics
		h.Cooldown = cfg.CooldownDuration
		h.Sleep = cooldownSleep(cmd.ErrOrStderr())
		h.Verbose = cfg.Verbose

		result := h.Run(ctx, tasks)

		summaryErr := report.Summary(cmd.ErrOrStderr(), result.Summary, report.ThemeByName(cfg.Theme))
		return errors.Join(out.write(result.Results, result.Tasks), summaryErr)
	},
}

func init() {
	runCmd.Flags().IntVar(&flagTasks, "tasks", 0, "evaluate only the first N tasks (default: all)")
	runCmd.Flags().StringVar(&flagOutput, "output", "", "write results to FILE instead of stdout")
	runCmd.Flags().StringVar(&flagDetails, "details", "", "also write per-task outcomes to FILE as JSON Lines")
	runCmd.Flags().StringVar(&flagCooldown, "cooldown", "", "pause after a rate-limited request, e.g. 20s; 0 disables (default: 20s)")
	runCmd.Flags().StringVar(&flagTimeout, "timeout", "", "per-request timeout, e.g. 30s; must be positive (default: 60s)")
	runCmd.Flags().StringVar(&flagTheme, "theme", "", "summary colors: dark, light (default: dark)")
	rootCmd.AddCommand(runCmd)
}

// outputs are the destinations of a run. They are opened before the first
// request is sent, so an unwritable path fails the run up front.
type outputs struct {
	stdout  io.Writer
	results *os.File // nil writes results to stdout
	details *os.File // nil skips details
}

// openOutputs creates the results file (or selects stdout when resultsPath
// is empty) and the optional details file.
func openOutputs(stdout io.Writer, resultsPath, detailsPath string) (*outputs, error) {
	o := &outputs{stdout: stdout}
	if resultsPath != "" {
		f, err := os.Create(resultsPath)
		if err != nil {
			return nil, fmt.Errorf("creating output file: %w", err)
		}
		o.results = f
	}
	if detailsPath != "" {
		f, err := os.Create(detailsPath)
		if err != nil {
			o.discard()
			return nil, fmt.Errorf("creating details file: %w", err)
		}
		o.details = f
	}
	return o, nil
}

// write writes the results mapping, then the per-task details, and closes
// both files. A details failure never loses the results.
func (o *outputs) write(results map[string]string, tasks []model.TaskResult) error {
	var resultsErr error
	if o.results == nil {
		resultsErr = report.WriteResults(o.stdout, results)
	} else {
		resultsErr = finish(o.results, "output", func(w io.Writer) error {
			return report.WriteResults(w, results)
		})
		if resultsErr == nil {
			logrus.Infof("wrote %d results to %s", len(results), o.results.Name())
		}
	}
	if o.details == nil {
		return resultsErr
	}
	detailsErr := finish(o.details, "details", func(w io.Writer) error {
		return report.WriteDetails(w, tasks)
	})
	return errors.Join(resultsErr, detailsErr)
}

// discard closes and removes the files of a run that never started.
func (o *outputs) discard() {
	for _, f := range []*os.File{o.results, o.details} {
		if f != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}
}

func finish(f *os.File, kind string, write func(io.Writer) error) error {
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s file: %w", kind, err)
	}
	return nil
}

// cooldownSleep returns a sleep function that shows a spinner on w while it waits.
func cooldownSleep(w io.Writer) func(time.Duration) {
	return func(d time.Duration) {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
		s.Suffix = fmt.Sprintf(" cooling down for %s", d)
		s.Start()
		defer s.Stop()
		time.Sleep(d)
	}
}
