package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Board cell symbols.
const (
	CellPlayer   = 'A'
	CellOpponent = 'B'
	CellEmpty    = '.'
)

// Columns is the board width. Row 0 of a board is the top row.
const Columns = 7

// Task is a single Connect Four decision task loaded from the dataset.
type Task struct {
	// ID is the task identifier, unique per run.
	ID string `json:"id"`
	// Board holds the rows of the position, top row first.
	Board Board `json:"board"`
	// Columns are the candidate column labels ("0".."6").
	Columns []string `json:"columns"`
	// Solution is the known-correct column. Present for the training split,
	// empty or ignored for evaluation.
	Solution string `json:"solution,omitempty"`
}

// Board is a position as rows of cell symbols (A, B or .), top row first.
// In JSON a row is either a string ("..A....") or an array of one-character
// strings ([".", ".", "A", ...]); both decode to the string form.
type Board []string

// UnmarshalJSON accepts both row encodings, and a mix of them.
func (b *Board) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	if raw == nil {
		*b = nil
		return nil
	}
	rows := make(Board, 0, len(raw))
	for i, r := range raw {
		var row string
		if err := json.Unmarshal(r, &row); err == nil {
			rows = append(rows, row)
			continue
		}
		var cells []string
		if err := json.Unmarshal(r, &cells); err != nil {
			return fmt.Errorf("board row %d: want a string or an array of cells", i)
		}
		var sb strings.Builder
		for j, c := range cells {
			if len(c) != 1 {
				return fmt.Errorf("board row %d cell %d: %q is not a single character", i, j, c)
			}
			sb.WriteString(c)
		}
		rows = append(rows, sb.String())
	}
	*b = rows
	return nil
}

// TopCell returns the top-row cell of column col and whether it exists.
func (t Task) TopCell(col int) (byte, bool) {
	if len(t.Board) == 0 || col < 0 || col >= len(t.Board[0]) {
		return 0, false
	}
	return t.Board[0][col], true
}

// Outcome classifies how a single task ended.
type Outcome string

const (
	OutcomeLegal        Outcome = "answered-legal"
	OutcomeIllegal      Outcome = "answered-illegal"
	OutcomeUnparseable  Outcome = "unparseable"
	OutcomeRequestError Outcome = "request-error"
)

// Answered reports whether the outcome carries a move that belongs in the
// submission.
func (o Outcome) Answered() bool {
	return o == OutcomeLegal || o == OutcomeIllegal
}

// TaskResult is the final classification of one task.
type TaskResult struct {
	TaskID  string  `json:"task_id"`
	Outcome Outcome `json:"outcome"`
	// Move is the extracted column, empty for unparseable and request errors.
	Move string `json:"move,omitempty"`
	// Expected is the known solution when the task carried one.
	Expected string `json:"expected,omitempty"`
	// Error is the truncated error message or unparseable diagnostic.
	Error string `json:"error,omitempty"`
	// RateLimited is set when the request error triggered a cooldown.
	RateLimited bool `json:"rate_limited,omitempty"`
}

// Correct reports whether the move matches a known solution.
func (r TaskResult) Correct() bool {
	return r.Expected != "" && r.Outcome == OutcomeLegal && r.Move == r.Expected
}

// Summary holds the counts reported at the end of a run.
type Summary struct {
	Total       int `json:"total"`
	Answered    int `json:"answered"`
	Errored     int `json:"errored"`
	Illegal     int `json:"illegal"`
	Unparseable int `json:"unparseable"`
	// Scored is the number of legal answers for tasks with a known solution.
	Scored  int `json:"scored"`
	Correct int `json:"correct"`
}

// Add folds one task result into the summary.
func (s *Summary) Add(r TaskResult) {
	s.Total++
	switch r.Outcome {
	case OutcomeLegal:
		s.Answered++
		if r.Expected != "" {
			s.Scored++
			if r.Correct() {
				s.Correct++
			}
		}
	case OutcomeIllegal:
		s.Answered++
		s.Illegal++
	case OutcomeUnparseable:
		s.Errored++
		s.Unparseable++
	case OutcomeRequestError:
		s.Errored++
	}
}

// TokenUsage tracks LLM token consumption for a single request.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Excerpt returns a quoted, truncated copy of raw model output for logs.
func Excerpt(s string, n int) string {
	return fmt.Sprintf("%q", Truncate(s, n))
}
