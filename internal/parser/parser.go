// Package parser extracts a single column choice from free-form model output.
//
// Models prompted with the minimal regime are told to answer with a lone
// digit, so a whole-line digit is the common case. Models prompted to reason
// step by step bury the answer in prose and end with an "ANSWER: <col>" line;
// that marker is checked first so digits mentioned during the reasoning never
// win over it.
package parser

import (
	"regexp"
	"strings"

	"github.com/timvw/rao-eval/internal/prompt"
)

var (
	answerMarker = regexp.MustCompile(`(?i)ANSWER\s*:\s*([0-6])`)
	bareDigit    = regexp.MustCompile(`(?:^|[^0-9])([0-6])(?:[^0-9]|$)`)
)

// ParseMove returns the column token found in text and true, or "" and false
// when no column can be recovered. Rules, first match wins:
//  1. reasoning regime only: an ANSWER marker followed by a digit 0-6;
//  2. the first line whose trimmed content is a single digit 0-6;
//  3. the first digit 0-6 not adjacent to another digit.
func ParseMove(text string, regime prompt.Regime) (string, bool) {
	text = strings.TrimSpace(text)

	if regime == prompt.Reasoning {
		if m := answerMarker.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}

	if col, ok := wholeLineDigit(text); ok {
		return col, true
	}

	if m := bareDigit.FindStringSubmatch(text); m != nil {
		return m[1], true
	}

	return "", false
}

func wholeLineDigit(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 1 && line[0] >= '0' && line[0] <= '6' {
			return line, true
		}
	}
	return "", false
}
