package port

import "context"

// QueryExecutor runs SQL and returns the client's tabular text output.
// Failures wrap domain.ErrSQL.
type QueryExecutor interface {
	Execute(ctx context.Context, sql string) (string, error)
}

// Generator produces text from a prompt. Transport or process failures wrap
// domain.ErrGeneration; a model that says nothing returns "" and no error.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}
