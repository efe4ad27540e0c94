// Package tracing installs an OpenTelemetry tracer provider for the CLI.
package tracing

import (
	"context"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	stdouttrace "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ServiceName is reported as service.name on every span.
const ServiceName = "flvgap"

var (
	mu sync.Mutex
	tp *sdktrace.TracerProvider
)

// Init installs a global tracer provider exporting spans as JSON to w.
// The library records spans through the global provider, which is a no-op
// until Init is called.
func Init(w io.Writer, version string) error {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return err
	}

	res := sdkresource.NewSchemaless(
		attribute.String("service.name", ServiceName),
		attribute.String("service.version", version),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	mu.Lock()
	tp = provider
	mu.Unlock()

	otel.SetTracerProvider(provider)
	return nil
}

// Flush shuts down the tracer provider, writing any pending spans.
// It is safe to call multiple times.
func Flush() {
	mu.Lock()
	provider := tp
	tp = nil
	mu.Unlock()

	if provider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = provider.Shutdown(ctx)
}
