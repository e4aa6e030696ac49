// Package report renders the outputs of an evaluation run: the results
// mapping written for the scorer, and a human-readable summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/timvw/rao-eval/internal/model"
)

// WriteResults writes the task id → column mapping as JSON with sorted keys
// and two-space indentation, followed by a newline. A nil map is written as {}.
func WriteResults(w io.Writer, results map[string]string) error {
	if results == nil {
		results = map[string]string{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// WriteDetails writes one JSON object per task result, in run order.
func WriteDetails(w io.Writer, tasks []model.TaskResult) error {
	enc := json.NewEncoder(w)
	for _, tr := range tasks {
		if err := enc.Encode(tr); err != nil {
			return fmt.Errorf("writing details for task %s: %w", tr.TaskID, err)
		}
	}
	return nil
}

// Summary writes a boxed run summary to w.
func Summary(w io.Writer, s model.Summary, t Theme) error {
	_, err := fmt.Fprintln(w, RenderSummary(s, t))
	return err
}

// RenderSummary returns the boxed run summary as a string.
func RenderSummary(s model.Summary, t Theme) string {
	st := newStyles(t)

	row := func(label string, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, st.label.Render(label), value)
	}
	count := func(n int, style lipgloss.Style) string {
		if n == 0 {
			return st.value.Render("0")
		}
		return style.Render(fmt.Sprintf("%d", n))
	}

	lines := []string{
		st.title.Render("Evaluation summary"),
		"",
		row("processed", st.good.Render(fmt.Sprintf("%d/%d", s.Answered, s.Total))),
		row("errors", count(s.Errored, st.bad)),
		row("  unparseable", count(s.Unparseable, st.bad)),
		row("illegal", count(s.Illegal, st.warning)),
	}
	if s.Scored > 0 {
		lines = append(lines, row("correct", st.good.Render(fmt.Sprintf("%d/%d", s.Correct, s.Scored))))
	}

	return st.box.Render(strings.Join(lines, "\n"))
}
