package main

import (
	"context"
	"fmt"
	"log/slog"

	"airlinesim"
)

// newReporter starts OpenTelemetry when OTEL_ENABLED is set. Otherwise it returns a nil
// reporter and a no-op shutdown.
func newReporter(ctx context.Context) (airlinesim.Reporter, func(context.Context) error, error) {
	var otelConfig airlinesim.OtelConfig
	if err := decode(&otelConfig); err != nil {
		return nil, nil, err
	}
	if !otelConfig.Enabled {
		return nil, func(context.Context) error { return nil }, nil
	}

	tracerProvider, meterProvider, shutdown, err := airlinesim.InitOtel(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	slog.Info("SETUP: OpenTelemetry enabled", "service", otelConfig.ServiceName)
	reporter := airlinesim.NewOtelReporter(
		tracerProvider.Tracer(airlinesim.TracerName),
		meterProvider.Meter(airlinesim.TracerName),
	)
	return reporter, shutdown, nil
}
