package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/guillermoBallester/asksql"

// Options describe the running assistant on every exported span and metric.
type Options struct {
	ServiceName string
	Version     string
	DBSystem    string // "mssql" or "postgresql"
	Model       string
	Surface     string // "repl" or "mcp"

	// MetricInterval overrides the SDK's periodic export interval when > 0.
	MetricInterval time.Duration
}

func (o Options) resourceAttributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(o.ServiceName),
		semconv.ServiceVersion(o.Version),
	}
	if o.DBSystem != "" {
		attrs = append(attrs, attribute.String("db.system", o.DBSystem))
	}
	if o.Model != "" {
		attrs = append(attrs, attribute.String("gen_ai.request.model", o.Model))
	}
	if o.Surface != "" {
		attrs = append(attrs, attribute.String("asksql.surface", o.Surface))
	}
	return attrs
}

// Provider owns the SDK trace and metric providers until Shutdown.
type Provider struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// Init registers global OTel providers exporting over OTLP gRPC. The endpoint
// comes from OTEL_EXPORTER_OTLP_ENDPOINT, read by the SDK itself.
func Init(ctx context.Context, opts Options) (*Provider, error) {
	res, err := resource.New(ctx, resource.WithAttributes(opts.resourceAttributes()...))
	if err != nil {
		return nil, fmt.Errorf("creating otel resource: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)

	metricExporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}
	var readerOpts []sdkmetric.PeriodicReaderOption
	if opts.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(opts.MetricInterval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	// W3C trace context only travels over the MCP HTTP transport.
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return &Provider{tp: tp, mp: mp}, nil
}

// Tracer returns the application tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Shutdown flushes pending spans and metrics.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.tp != nil {
		if err := p.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down tracer: %w", err))
		}
	}
	if p.mp != nil {
		if err := p.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down meter: %w", err))
		}
	}
	return errors.Join(errs...)
}

// NoopTracer is used when OTEL_ENABLED is off.
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(instrumentationName)
}
