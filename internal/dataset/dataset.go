// Package dataset loads Connect Four tasks from a directory per split.
//
// Layout: <root>/<split>/*.json, one task per file. Files are read in
// lexicographic path order so runs are reproducible.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/timvw/rao-eval/internal/model"
)

// Known splits.
const (
	SplitTraining   = "training"
	SplitEvaluation = "evaluation"
)

// Splits lists the known splits.
var Splits = []string{SplitTraining, SplitEvaluation}

// ErrNoTasks is returned when a split directory holds no task files.
var ErrNoTasks = errors.New("no tasks found")

// ErrTaskNotFound is returned by Find for an unknown task id.
var ErrTaskNotFound = errors.New("task not found")

// Pattern returns the glob used to find task files for a split.
func Pattern(root, split string) string {
	return filepath.Join(root, split, "*.json")
}

// Load reads the tasks of a split. A positive limit keeps only the first
// limit files.
func Load(root, split string, limit int) ([]model.Task, error) {
	pattern := Pattern(root, split)
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid dataset pattern %s: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w at %s", ErrNoTasks, pattern)
	}
	sort.Strings(paths)
	if limit > 0 && limit < len(paths) {
		paths = paths[:limit]
	}

	tasks := make([]model.Task, 0, len(paths))
	for _, p := range paths {
		task, err := readTask(p)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Find returns the task with the given id.
func Find(tasks []model.Task, id string) (model.Task, error) {
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

func readTask(path string) (model.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Task{}, fmt.Errorf("reading task %s: %w", path, err)
	}
	var task model.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return model.Task{}, fmt.Errorf("parsing task %s: %w", path, err)
	}
	if task.ID == "" {
		task.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return task, nil
}
