package cmd

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/timvw/rao-eval/internal/dataset"
	"github.com/timvw/rao-eval/internal/rules"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tasks of a dataset split",
	Long: heredoc.Doc(`
		List the tasks of the selected split in evaluation order.

		Each line is a task id followed by its legal columns. Task ids can be
		passed to the prompt command.
	`),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		split, err := getSplit()
		if err != nil {
			return err
		}

		tasks, err := dataset.Load(cfg.DataDir, split, cfg.Tasks)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, t := range tasks {
			cols := rules.LegalColumns(t)
			legal := strings.Join(cols, ",")
			if len(cols) == 0 {
				legal = "none"
			}
			if t.Solution != "" {
				fmt.Fprintf(out, "%s\tlegal=%s\tsolution=%s\n", t.ID, legal, t.Solution)
				continue
			}
			fmt.Fprintf(out, "%s\tlegal=%s\n", t.ID, legal)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().IntVar(&flagTasks, "tasks", 0, "list only the first N tasks (default: all)")
	rootCmd.AddCommand(listCmd)
}
