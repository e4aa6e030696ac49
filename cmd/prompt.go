package cmd

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/timvw/rao-eval/internal/dataset"
	"github.com/timvw/rao-eval/internal/prompt"
)

var promptCmd = &cobra.Command{
	Use:   "prompt <task-id>",
	Short: "Print the prompt a model receives for a task",
	Long: heredoc.Doc(`
		Print the system instruction and user message that run would send for
		one task under the selected prompt regime. No request is made.
	`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		regime, err := getRegime()
		if err != nil {
			return err
		}
		split, err := getSplit()
		if err != nil {
			return err
		}

		tasks, err := dataset.Load(cfg.DataDir, split, 0)
		if err != nil {
			return err
		}
		task, err := dataset.Find(tasks, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "--- system (%s, max %d tokens) ---\n", regime, prompt.MaxTokens(regime))
		fmt.Fprintln(out, prompt.System(regime))
		fmt.Fprintln(out, "--- user ---")
		fmt.Fprintln(out, prompt.FormatUser(task))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)
}
