package dryrun

import (
	"context"
	"log/slog"

	"github.com/guillermoBallester/asksql/internal/core/domain"
	"github.com/guillermoBallester/asksql/internal/core/port"
)

// Executor stands in for a real QueryExecutor when --dry-run is set. It
// records the query it was handed and never touches the database.
type Executor struct {
	logger *slog.Logger
}

func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{logger: logger}
}

var _ port.QueryExecutor = (*Executor)(nil)

func (e *Executor) Execute(ctx context.Context, sql string) (string, error) {
	e.logger.InfoContext(ctx, "dry run, query not executed", slog.String("sql", sql))
	return "", domain.ErrDryRun
}
