package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "rao-eval"

// Metrics holds all OTEL metric instruments for an evaluation run.
// All Record methods are safe on a nil *Metrics.
type Metrics struct {
	// LLM token counters (partitioned by provider + model via attributes)
	InputTokens  metric.Int64Counter
	OutputTokens metric.Int64Counter

	// RequestDuration is the wall time of one provider call.
	RequestDuration metric.Float64Histogram

	// Tasks counts finished tasks partitioned by outcome.
	Tasks metric.Int64Counter

	// Cooldowns counts rate-limit pauses.
	Cooldowns metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.InputTokens, err = meter.Int64Counter("llm.tokens.input",
		metric.WithDescription("Total LLM input tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.OutputTokens, err = meter.Int64Counter("llm.tokens.output",
		metric.WithDescription("Total LLM output tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.RequestDuration, err = meter.Float64Histogram("llm.request.duration",
		metric.WithDescription("Duration of provider requests, successful or not"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	m.Tasks, err = meter.Int64Counter("tasks.total",
		metric.WithDescription("Evaluated tasks partitioned by outcome (answered-legal, answered-illegal, unparseable, request-error)"))
	if err != nil {
		return nil, err
	}

	m.Cooldowns, err = meter.Int64Counter("ratelimit.cooldowns",
		metric.WithDescription("Number of run-wide pauses after a rate-limited request"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordTokens records LLM token usage on the metric counters.
func (m *Metrics) RecordTokens(ctx context.Context, provider, model string, input, output int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", model),
	)
	m.InputTokens.Add(ctx, input, attrs)
	m.OutputTokens.Add(ctx, output, attrs)
}

// RecordRequest records the duration of a provider call.
func (m *Metrics) RecordRequest(ctx context.Context, provider, model string, d time.Duration, failed bool) {
	if m == nil {
		return
	}
	status := "ok"
	if failed {
		status = "error"
	}
	m.RequestDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", model),
		attribute.String("llm.status", status),
	))
}

// RecordTask records a finished task with the given outcome.
func (m *Metrics) RecordTask(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.Tasks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task.outcome", outcome),
	))
}

// RecordCooldown records a rate-limit pause.
func (m *Metrics) RecordCooldown(ctx context.Context) {
	if m == nil {
		return
	}
	m.Cooldowns.Add(ctx, 1)
}
