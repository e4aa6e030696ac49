// Package harness runs the evaluation loop: one task at a time, each task
// formatted, dispatched, parsed, checked and recorded.
//
// A task's failure never stops the run. Request errors, unparseable replies
// and illegal moves are recorded for that task and the loop moves on. The
// only run-wide reaction is a fixed cooldown after a rate-limited request;
// the failed task is not retried.
package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/timvw/rao-eval/internal/model"
	ppotel "github.com/timvw/rao-eval/internal/otel"
	"github.com/timvw/rao-eval/internal/parser"
	"github.com/timvw/rao-eval/internal/prompt"
	"github.com/timvw/rao-eval/internal/provider"
	"github.com/timvw/rao-eval/internal/rules"
)

// DefaultCooldown is the pause after a rate-limited request.
const DefaultCooldown = 20 * time.Second

// Excerpt lengths for diagnostics.
const (
	errorMessageLen    = 120
	unparseableLen     = 80
	verboseResponseLen = 200
	logExcerptLen      = 80
)

var tracer = otel.Tracer("rao-eval/harness")

// Dispatcher sends a user message to the configured model and returns the
// raw reply. *provider.Router implements it.
type Dispatcher interface {
	Call(ctx context.Context, user string) (string, error)
}

// Harness evaluates tasks sequentially against one Dispatcher.
type Harness struct {
	Router  Dispatcher
	Regime  prompt.Regime
	Log     logrus.FieldLogger
	Metrics *ppotel.Metrics // OTEL metric counters; nil-safe
	// Cooldown is the pause after a rate-limited request. Zero disables it.
	Cooldown time.Duration
	// Sleep blocks for the cooldown. Defaults to time.Sleep.
	Sleep   func(time.Duration)
	Verbose bool // log an excerpt of every raw reply
}

// New returns a Harness with the default cooldown and a standard logger.
func New(router Dispatcher, regime prompt.Regime) *Harness {
	return &Harness{
		Router:   router,
		Regime:   regime,
		Log:      logrus.StandardLogger(),
		Cooldown: DefaultCooldown,
		Sleep:    time.Sleep,
	}
}

// Result holds the outcome mappings of a run. A task id appears in at most
// one of Results and Errors; every key of Illegal is also in Results.
type Result struct {
	// Results maps task id to the chosen column, legal or not.
	Results map[string]string
	// Errors maps task id to a diagnostic for unparseable replies and
	// request errors.
	Errors map[string]string
	// Illegal maps task id to a column that was not playable.
	Illegal map[string]string
	// Tasks lists every task's classification in run order.
	Tasks   []model.TaskResult
	Summary model.Summary
}

func newResult(n int) *Result {
	return &Result{
		Results: make(map[string]string, n),
		Errors:  make(map[string]string),
		Illegal: make(map[string]string),
		Tasks:   make([]model.TaskResult, 0, n),
	}
}

// record stores a final task classification. Called once per task.
func (r *Result) record(tr model.TaskResult) {
	switch tr.Outcome {
	case model.OutcomeLegal:
		r.Results[tr.TaskID] = tr.Move
	case model.OutcomeIllegal:
		r.Results[tr.TaskID] = tr.Move
		r.Illegal[tr.TaskID] = tr.Move
	case model.OutcomeUnparseable, model.OutcomeRequestError:
		r.Errors[tr.TaskID] = tr.Error
	}
	r.Tasks = append(r.Tasks, tr)
	r.Summary.Add(tr)
}

// Run evaluates every task in order and returns the collected outcomes.
// It always processes all tasks.
func (h *Harness) Run(ctx context.Context, tasks []model.Task) *Result {
	ctx, span := tracer.Start(ctx, "evaluate",
		trace.WithAttributes(
			attribute.String("eval.prompt", string(h.Regime)),
			attribute.Int("tasks.total", len(tasks)),

			// Langfuse trace-level attributes
			attribute.String("langfuse.trace.name", "rao-eval-run"),
			attribute.StringSlice("langfuse.trace.tags", []string{"rao-eval", string(h.Regime)}),
		))
	defer span.End()

	log := h.logger()
	result := newResult(len(tasks))
	total := len(tasks)

	for i, task := range tasks {
		taskLog := log.WithFields(logrus.Fields{
			"n":    fmt.Sprintf("%d/%d", i+1, total),
			"task": task.ID,
		})

		tr := h.evaluate(ctx, task, taskLog)
		result.record(tr)
		h.Metrics.RecordTask(ctx, string(tr.Outcome))

		if tr.RateLimited && h.Cooldown > 0 {
			taskLog.Warnf("rate limited, pausing %s before the next task", h.Cooldown)
			h.Metrics.RecordCooldown(ctx)
			h.sleep(h.Cooldown)
		}
	}

	s := result.Summary
	span.SetAttributes(
		attribute.Int("tasks.answered", s.Answered),
		attribute.Int("tasks.errored", s.Errored),
		attribute.Int("tasks.illegal", s.Illegal),
		attribute.Int("tasks.correct", s.Correct),
	)
	return result
}

// evaluate moves one task from pending to a final classification.
func (h *Harness) evaluate(ctx context.Context, task model.Task, log logrus.FieldLogger) model.TaskResult {
	ctx, span := tracer.Start(ctx, "task",
		trace.WithAttributes(attribute.String("task.id", task.ID)))
	defer span.End()

	tr := model.TaskResult{TaskID: task.ID, Expected: task.Solution}

	text, err := h.Router.Call(ctx, prompt.FormatUser(task))
	if err != nil {
		tr.Outcome = model.OutcomeRequestError
		tr.Error = model.Truncate(err.Error(), errorMessageLen)
		tr.RateLimited = provider.IsRateLimited(err)
		log.WithField("rate_limited", tr.RateLimited).Errorf("request error: %s", model.Truncate(err.Error(), logExcerptLen))
		span.SetAttributes(attribute.String("task.outcome", string(tr.Outcome)))
		return tr
	}

	if h.Verbose {
		log.Infof("raw model response: %s", model.Excerpt(text, verboseResponseLen))
	}

	move, ok := parser.ParseMove(text, h.Regime)
	switch {
	case !ok:
		tr.Outcome = model.OutcomeUnparseable
		tr.Error = "unparseable output: " + model.Excerpt(text, unparseableLen)
		log.Warn("UNPARSEABLE")
	case !rules.IsLegal(task, move):
		tr.Outcome = model.OutcomeIllegal
		tr.Move = move
		log.Warnf("ILLEGAL MOVE (column=%s)", move)
	default:
		tr.Outcome = model.OutcomeLegal
		tr.Move = move
		log.Infof("column=%s  %s", move, mark(tr))
	}

	span.SetAttributes(
		attribute.String("task.outcome", string(tr.Outcome)),
		attribute.String("task.move", tr.Move),
	)
	return tr
}

// mark renders the comparison against a known solution.
func mark(tr model.TaskResult) string {
	switch {
	case tr.Expected == "":
		return "?"
	case tr.Correct():
		return "✓"
	default:
		return fmt.Sprintf("✗ (expected %s)", tr.Expected)
	}
}

func (h *Harness) logger() logrus.FieldLogger {
	if h.Log == nil {
		return logrus.StandardLogger()
	}
	return h.Log
}

func (h *Harness) sleep(d time.Duration) {
	if h.Sleep == nil {
		time.Sleep(d)
		return
	}
	h.Sleep(d)
}
