// Package observability sets up OpenTelemetry tracing for the server.
package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// TracingConfig selects the exporter. An empty Endpoint keeps spans local.
type TracingConfig struct {
	Endpoint    string
	ServiceName string
}

// InitTracing installs a global tracer provider and W3C propagators.
//
// Without an endpoint the provider has no exporter: spans are created (so
// otelhttp and trace ids in logs still work) but never leave the process.
// Callers must Shutdown the returned provider to flush pending spans.
func InitTracing(ctx context.Context, cfg TracingConfig, logger *slog.Logger) (*sdktrace.TracerProvider, error) {
	res, err := sdkresource.New(ctx,
		sdkresource.WithAttributes(attribute.String("service.name", cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	if cfg.Endpoint != "" {
		exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
		if err != nil {
			return nil, fmt.Errorf("create otlp trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	if cfg.Endpoint == "" {
		logger.Info("otel tracing: no exporter configured")
	} else {
		logger.Info("otel tracing initialized", slog.String("endpoint", cfg.Endpoint))
	}
	return tp, nil
}
