package port

import "context"

// Instrumentation records application-level metrics.
type Instrumentation interface {
	RecordQueryDuration(ctx context.Context, ms float64)
	IncrementQueryCount(ctx context.Context)
	IncrementQueryErrors(ctx context.Context)
	RecordGenerationDuration(ctx context.Context, ms float64)
	IncrementGenerationErrors(ctx context.Context)
	IncrementTurns(ctx context.Context, outcome string)
	RecordToolDuration(ctx context.Context, ms float64)
}

// NoopInstrumentation discards all metrics.
type NoopInstrumentation struct{}

func (NoopInstrumentation) RecordQueryDuration(context.Context, float64)      {}
func (NoopInstrumentation) IncrementQueryCount(context.Context)               {}
func (NoopInstrumentation) IncrementQueryErrors(context.Context)              {}
func (NoopInstrumentation) RecordGenerationDuration(context.Context, float64) {}
func (NoopInstrumentation) IncrementGenerationErrors(context.Context)         {}
func (NoopInstrumentation) IncrementTurns(context.Context, string)            {}
func (NoopInstrumentation) RecordToolDuration(context.Context, float64)       {}
