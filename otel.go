package airlinesim

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joeshaw/envdecode"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const TracerName = "airline-simulation"

// OtelConfig is a configuration struct for the OpenTelemetry providers.
type OtelConfig struct {
	Enabled        bool   `env:"OTEL_ENABLED,default=false"`
	Endpoint       string `env:"OTEL_EXPORTER_OTLP_ENDPOINT,default=set-me"`
	Headers        string `env:"OTEL_EXPORTER_OTLP_HEADERS,default=set-me"`
	ServiceVersion string `env:"OTEL_SERVICE_VERSION,default=0.1.0"`
	ServiceName    string `env:"OTEL_SERVICE_NAME,default=airline-sim"`
	DeployEnv      string `env:"OTEL_DEPLOY_ENV,default=development"`
}

type otelShutdown func(ctx context.Context) error

// InitOtel initializes the OpenTelemetry SDK and returns a TracerProvider, MeterProvider, and shutdown function.
func InitOtel(ctx context.Context) (*sdktrace.TracerProvider, *sdkmetric.MeterProvider, otelShutdown, error) {
	var cfg OtelConfig
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, nil, nil, err
	}

	// Configure a new OTLP trace exporter using environment variables for sending data over gRPC
	traceExporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient())
	if err != nil {
		return nil, nil, nil, err
	}

	metricExporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExporter))
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)))

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)

	// Register the W3C trace context and baggage propagators so data is propagated across services/processes
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	shutdown := func(ctx context.Context) error {
		err := errors.Join(
			tracerProvider.Shutdown(ctx),
			meterProvider.Shutdown(ctx),
		)

		if err != nil && err.Error() == "gRPC exporter is shutdown" {
			return nil
		}

		return err
	}

	return tracerProvider, meterProvider, shutdown, nil
}

// Event is a telemetry record emitted by the workflow.
type Event struct {
	Name     string
	TeamID   string
	Status   string
	Duration time.Duration
	Err      error
	Attrs    map[string]any
}

// Reporter receives workflow telemetry. A nil Reporter is valid and drops everything.
type Reporter interface {
	Report(ctx context.Context, ev Event)
}

// Report sends ev to r when r is non-nil.
func Report(ctx context.Context, r Reporter, ev Event) {
	if r == nil {
		return
	}
	r.Report(ctx, ev)
}

// OtelReporter turns workflow events into spans, counters and duration histograms.
type OtelReporter struct {
	tracer   trace.Tracer
	events   metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

func NewOtelReporter(tracer trace.Tracer, meter metric.Meter) *OtelReporter {
	events, err := meter.Int64Counter("simulation_events_total",
		metric.WithDescription("Total number of workflow events by name and status"))
	if err != nil {
		slog.Warn("OTEL: Failed to create events counter", "error", err)
	}
	failures, err := meter.Int64Counter("simulation_failures_total",
		metric.WithDescription("Total number of workflow events that carried an error"))
	if err != nil {
		slog.Warn("OTEL: Failed to create failures counter", "error", err)
	}
	duration, err := meter.Float64Histogram("simulation_stage_duration_seconds",
		metric.WithDescription("Duration of workflow stages in seconds"))
	if err != nil {
		slog.Warn("OTEL: Failed to create duration histogram", "error", err)
	}
	return &OtelReporter{tracer: tracer, events: events, failures: failures, duration: duration}
}

func (r *OtelReporter) Report(ctx context.Context, ev Event) {
	attrs := []attribute.KeyValue{
		attribute.String("event", ev.Name),
		attribute.String("status", ev.Status),
	}
	if ev.TeamID != "" {
		attrs = append(attrs, attribute.String("team_id", ev.TeamID))
	}

	if r.events != nil {
		r.events.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if ev.Duration > 0 && r.duration != nil {
		r.duration.Record(ctx, ev.Duration.Seconds(), metric.WithAttributes(attrs...))
	}

	_, span := r.tracer.Start(ctx, ev.Name, trace.WithAttributes(attrs...))
	defer span.End()
	for k, v := range ev.Attrs {
		span.SetAttributes(toAttribute(k, v))
	}
	if ev.Err != nil {
		if r.failures != nil {
			r.failures.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
		span.SetStatus(codes.Error, ev.Err.Error())
		span.RecordError(ev.Err)
	}
}

func toAttribute(k string, v any) attribute.KeyValue {
	switch t := v.(type) {
	case string:
		return attribute.String(k, t)
	case int:
		return attribute.Int(k, t)
	case int64:
		return attribute.Int64(k, t)
	case float64:
		return attribute.Float64(k, t)
	case bool:
		return attribute.Bool(k, t)
	default:
		return attribute.String(k, slog.AnyValue(v).String())
	}
}
