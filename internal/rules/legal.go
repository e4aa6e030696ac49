// Package rules checks Connect Four move legality against a task's board.
//
// A move is legal when it names a column 0-6 whose top-row cell is empty.
// Gravity is not simulated: an empty top cell means the column has room.
package rules

import (
	"sort"
	"strconv"

	"github.com/timvw/rao-eval/internal/model"
)

// IsLegal reports whether token is a playable column on the task's board.
// The token must be a single digit; signed, zero-padded, out-of-range and
// multi-digit forms are rejected, as are short boards.
func IsLegal(task model.Task, token string) bool {
	if len(token) != 1 || token[0] < '0' || token[0] >= '0'+model.Columns {
		return false
	}
	cell, ok := task.TopCell(int(token[0] - '0'))
	return ok && cell == model.CellEmpty
}

// LegalColumns returns the task's candidate columns that are currently
// playable, in ascending column order. Tasks without candidate labels are
// checked against all seven columns.
func LegalColumns(task model.Task) []string {
	candidates := task.Columns
	if len(candidates) == 0 {
		candidates = make([]string, model.Columns)
		for i := range candidates {
			candidates[i] = strconv.Itoa(i)
		}
	}

	seen := make(map[int]bool, len(candidates))
	var cols []int
	for _, c := range candidates {
		if !IsLegal(task, c) {
			continue
		}
		n, _ := strconv.Atoi(c)
		if seen[n] {
			continue
		}
		seen[n] = true
		cols = append(cols, n)
	}
	sort.Ints(cols)

	legal := make([]string, len(cols))
	for i, n := range cols {
		legal[i] = strconv.Itoa(n)
	}
	return legal
}
