package telemetry

import (
	"context"

	"github.com/guillermoBallester/asksql/internal/core/port"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Instruments holds pre-created OTel metric instruments.
type Instruments struct {
	QueryCount         metric.Int64Counter
	QueryDuration      metric.Float64Histogram
	QueryErrors        metric.Int64Counter
	GenerationDuration metric.Float64Histogram
	GenerationErrors   metric.Int64Counter
	Turns              metric.Int64Counter
	ToolDuration       metric.Float64Histogram
}

var _ port.Instrumentation = (*Instruments)(nil)

// NewInstruments creates instruments from the global MeterProvider.
func NewInstruments() *Instruments {
	return newInstrumentsFromMeter(otel.Meter(instrumentationName))
}

// NoopInstruments returns instruments that record nothing.
func NoopInstruments() *Instruments {
	return newInstrumentsFromMeter(noop.NewMeterProvider().Meter(instrumentationName))
}

func newInstrumentsFromMeter(meter metric.Meter) *Instruments {
	// The SDK hands back a usable noop instrument alongside any error.
	queryCount, _ := meter.Int64Counter("asksql.query.count",
		metric.WithDescription("Total number of SQL queries executed"),
	)
	queryDuration, _ := meter.Float64Histogram("asksql.query.duration",
		metric.WithDescription("SQL query execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	queryErrors, _ := meter.Int64Counter("asksql.query.errors",
		metric.WithDescription("Total number of failed SQL queries"),
	)
	genDuration, _ := meter.Float64Histogram("asksql.generation.duration",
		metric.WithDescription("Text generation call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	genErrors, _ := meter.Int64Counter("asksql.generation.errors",
		metric.WithDescription("Total number of failed text generation calls"),
	)
	turns, _ := meter.Int64Counter("asksql.turns",
		metric.WithDescription("Conversation turns by outcome"),
	)
	toolDuration, _ := meter.Float64Histogram("asksql.tool.duration",
		metric.WithDescription("MCP tool call duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return &Instruments{
		QueryCount:         queryCount,
		QueryDuration:      queryDuration,
		QueryErrors:        queryErrors,
		GenerationDuration: genDuration,
		GenerationErrors:   genErrors,
		Turns:              turns,
		ToolDuration:       toolDuration,
	}
}

func (i *Instruments) RecordQueryDuration(ctx context.Context, ms float64) {
	i.QueryDuration.Record(ctx, ms)
}

func (i *Instruments) IncrementQueryCount(ctx context.Context) {
	i.QueryCount.Add(ctx, 1)
}

func (i *Instruments) IncrementQueryErrors(ctx context.Context) {
	i.QueryErrors.Add(ctx, 1)
}

func (i *Instruments) RecordGenerationDuration(ctx context.Context, ms float64) {
	i.GenerationDuration.Record(ctx, ms)
}

func (i *Instruments) IncrementGenerationErrors(ctx context.Context) {
	i.GenerationErrors.Add(ctx, 1)
}

func (i *Instruments) IncrementTurns(ctx context.Context, outcome string) {
	i.Turns.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (i *Instruments) RecordToolDuration(ctx context.Context, ms float64) {
	i.ToolDuration.Record(ctx, ms)
}
