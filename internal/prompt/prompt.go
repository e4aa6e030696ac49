// Package prompt renders Connect Four tasks into the text a model consumes.
package prompt

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/timvw/rao-eval/internal/model"
	"github.com/timvw/rao-eval/internal/rules"
)

// Regime selects the system prompt and how the answer is parsed.
type Regime string

const (
	// Minimal asks for a single digit and nothing else.
	Minimal Regime = "minimal"
	// Reasoning asks for step-by-step reasoning ending in "ANSWER: <col>".
	Reasoning Regime = "cot"
)

// Regimes lists the supported regimes in CLI order.
var Regimes = []Regime{Minimal, Reasoning}

//go:embed prompts/minimal.md
var minimalSystem string

//go:embed prompts/cot.md
var reasoningSystem string

// ParseRegime resolves a regime name as accepted on the command line.
func ParseRegime(name string) (Regime, error) {
	switch Regime(strings.ToLower(strings.TrimSpace(name))) {
	case Minimal:
		return Minimal, nil
	case Reasoning:
		return Reasoning, nil
	default:
		return "", fmt.Errorf("unknown prompt regime %q (supported: minimal, cot)", name)
	}
}

// System returns the fixed system instruction for the regime.
func System(r Regime) string {
	if r == Reasoning {
		return strings.TrimSpace(reasoningSystem)
	}
	return strings.TrimSpace(minimalSystem)
}

// MaxTokens returns the output token budget for the regime. Reasoning needs
// room for the analysis; a lone digit does not.
func MaxTokens(r Regime) int64 {
	if r == Reasoning {
		return 512
	}
	return 32
}

// FormatUser renders the task's board, the player to move and the legal
// columns. The output depends only on the task.
func FormatUser(task model.Task) string {
	header := make([]string, model.Columns)
	rule := make([]string, model.Columns)
	for i := range header {
		header[i] = strconv.Itoa(i)
		rule[i] = "-"
	}

	lines := []string{
		"Board (top row first):",
		"",
		"Col:  " + strings.Join(header, "  "),
		"      " + strings.Join(rule, "  "),
	}
	for i, row := range task.Board {
		cells := make([]string, 0, len(row))
		for _, ch := range row {
			cells = append(cells, string(ch))
		}
		lines = append(lines, fmt.Sprintf("Row %d: %s", i, strings.Join(cells, "  ")))
	}
	lines = append(lines,
		"",
		"Current player: A",
		"Legal columns: "+strings.Join(rules.LegalColumns(task), ", "),
	)
	return strings.Join(lines, "\n")
}
