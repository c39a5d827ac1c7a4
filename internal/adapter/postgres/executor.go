package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/guillermoBallester/asksql/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Executor runs generated SQL inside a read-only transaction and renders the
// result in the same text layout the sqlcmd backend produces.
type Executor struct {
	pool         *pgxpool.Pool
	delimiter    string
	queryTimeout time.Duration
	masks        map[string]domain.MaskType
}

func NewExecutor(pool *pgxpool.Pool, delimiter string, queryTimeout time.Duration, masks map[string]domain.MaskType) *Executor {
	if delimiter == "" {
		delimiter = ","
	}
	return &Executor{
		pool:         pool,
		delimiter:    delimiter,
		queryTimeout: queryTimeout,
		masks:        masks,
	}
}

func (e *Executor) Execute(ctx context.Context, sql string) (string, error) {
	if e.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.queryTimeout)
		defer cancel()
	}

	tx, err := e.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return "", fmt.Errorf("%w: beginning transaction: %w", domain.ErrSQL, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// SET LOCAL scopes the server-side timeout to this transaction.
	if e.queryTimeout > 0 {
		timeoutMS := e.queryTimeout.Milliseconds()
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%d'", timeoutMS)); err != nil {
			return "", fmt.Errorf("%w: setting statement timeout: %w", domain.ErrSQL, err)
		}
	}

	rows, err := tx.Query(ctx, sql)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSQL, err)
	}
	columns, table, err := rowsToTable(rows)
	rows.Close()
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSQL, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("%w: committing transaction: %w", domain.ErrSQL, err)
	}

	domain.MaskColumns(columns, table, e.masks)
	return renderTable(columns, table, e.delimiter), nil
}
