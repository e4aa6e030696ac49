// Package otel provides OpenTelemetry initialization for rao-eval.
//
// Exports traces and metrics to an OTLP endpoint (configurable via config
// file or OTEL_EXPORTER_OTLP_ENDPOINT). If no endpoint is set, telemetry is
// a no-op and evaluation runs are unaffected.
//
// Custom headers (e.g. for Langfuse authentication) come from the config
// file or the OTEL_EXPORTER_OTLP_HEADERS env var.
package otel

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const serviceName = "rao-eval"

const (
	// exportTimeout bounds a single OTLP export request.
	exportTimeout = 5 * time.Second
	// shutdownTimeout bounds the final flush, so an unreachable collector
	// delays exit by at most this long.
	shutdownTimeout = 5 * time.Second
	// metricInterval is how often metrics are pushed during a run.
	metricInterval = 15 * time.Second
)

// Version is set by the caller from the linker-injected cmd.Version.
var Version = "dev"

// OTELConfig holds the exporter settings and the run being evaluated.
type OTELConfig struct {
	Endpoint string // OTLP base URL, e.g. "http://localhost:3000/api/public/otel"
	Headers  string // Comma-separated key=value pairs, e.g. "Authorization=Basic abc123"

	// Run identity, attached to every exported span and metric. Empty
	// values are left off.
	Provider string
	Model    string
	Prompt   string
	Split    string
}

// Telemetry holds the OTEL providers and metric instruments of one run.
type Telemetry struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider

	Metrics *Metrics
}

// parseHeaders parses a comma-separated "key=value,key2=value2" string into a map.
// This matches the OTEL_EXPORTER_OTLP_HEADERS format.
func parseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	if raw == "" {
		return headers
	}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if idx := strings.IndexByte(pair, '='); idx > 0 {
			key := strings.TrimSpace(pair[:idx])
			val := strings.TrimSpace(pair[idx+1:])
			if key != "" {
				headers[key] = val
			}
		}
	}
	return headers
}

// runAttributes returns the resource attributes identifying the run.
func runAttributes(cfg OTELConfig) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(Version),
	}
	for _, kv := range []struct{ key, value string }{
		{"eval.provider", cfg.Provider},
		{"eval.model", cfg.Model},
		{"eval.prompt", cfg.Prompt},
		{"eval.split", cfg.Split},
	} {
		if kv.value != "" {
			attrs = append(attrs, attribute.String(kv.key, kv.value))
		}
	}
	return attrs
}

// collector is an OTLP endpoint split into the parts the HTTP exporters take.
type collector struct {
	host     string // host:port
	basePath string
	insecure bool
	headers  map[string]string
}

// parseCollector validates the endpoint URL. WithEndpoint takes host:port
// only; the signal suffix goes on the path.
func parseCollector(endpoint, headers string) (collector, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return collector{}, fmt.Errorf("otel: invalid endpoint URL %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return collector{}, fmt.Errorf("otel: endpoint %q has no host", endpoint)
	}
	return collector{
		host:     u.Host,
		basePath: strings.TrimRight(u.Path, "/"),
		insecure: u.Scheme == "http",
		headers:  parseHeaders(headers),
	}, nil
}

func (c collector) traceOptions() []otlptracehttp.Option {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(c.host),
		otlptracehttp.WithURLPath(c.basePath + "/v1/traces"),
		otlptracehttp.WithTimeout(exportTimeout),
	}
	if c.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(c.headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(c.headers))
	}
	return opts
}

func (c collector) metricOptions() []otlpmetrichttp.Option {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(c.host),
		otlpmetrichttp.WithURLPath(c.basePath + "/v1/metrics"),
		otlpmetrichttp.WithTimeout(exportTimeout),
	}
	if c.insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(c.headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(c.headers))
	}
	return opts
}

// Init sets up OTLP HTTP exporters for one evaluation run. Without an
// endpoint nothing is exported, but the metric instruments and the global
// tracer still work as no-ops.
func Init(ctx context.Context, cfg OTELConfig) (*Telemetry, error) {
	t := &Telemetry{}

	if cfg.Endpoint != "" {
		c, err := parseCollector(cfg.Endpoint, cfg.Headers)
		if err != nil {
			return nil, err
		}
		res, err := resource.New(ctx,
			resource.WithAttributes(runAttributes(cfg)...),
			resource.WithHost(),
		)
		if err != nil {
			return nil, fmt.Errorf("otel resource: %w", err)
		}

		traceExp, err := otlptracehttp.New(ctx, c.traceOptions()...)
		if err != nil {
			return nil, fmt.Errorf("otel trace exporter: %w", err)
		}
		metricExp, err := otlpmetrichttp.New(ctx, c.metricOptions()...)
		if err != nil {
			return nil, fmt.Errorf("otel metric exporter: %w", err)
		}

		t.tp = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExp),
			sdktrace.WithResource(res),
		)
		t.mp = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp,
				sdkmetric.WithInterval(metricInterval))),
			sdkmetric.WithResource(res),
		)
		otel.SetTracerProvider(t.tp)
		otel.SetMeterProvider(t.mp)
	}

	metrics, err := NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("otel metrics: %w", err)
	}
	t.Metrics = metrics
	return t, nil
}

// Shutdown flushes and shuts down the providers, giving up after
// shutdownTimeout. It still flushes when ctx is already cancelled, as it is
// after an interrupted run. Safe on a nil receiver.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || (t.tp == nil && t.mp == nil) {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	var errs []error
	if t.tp != nil {
		errs = append(errs, t.tp.Shutdown(ctx))
	}
	if t.mp != nil {
		errs = append(errs, t.mp.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
