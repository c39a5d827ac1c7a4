package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/guillermoBallester/asksql/internal/adapter/catalog"
	"github.com/guillermoBallester/asksql/internal/adapter/dryrun"
	"github.com/guillermoBallester/asksql/internal/adapter/mcp"
	"github.com/guillermoBallester/asksql/internal/adapter/ollama"
	"github.com/guillermoBallester/asksql/internal/adapter/postgres"
	"github.com/guillermoBallester/asksql/internal/adapter/process"
	"github.com/guillermoBallester/asksql/internal/adapter/repl"
	"github.com/guillermoBallester/asksql/internal/adapter/sqlcmd"
	"github.com/guillermoBallester/asksql/internal/config"
	"github.com/guillermoBallester/asksql/internal/core/port"
)

func newRunner(cfg *config.Config) (*process.Runner, error) {
	charset, err := process.LookupCharset(cfg.OutputEncoding)
	if err != nil {
		return nil, fmt.Errorf("invalid OUTPUT_ENCODING: %w", err)
	}
	return process.NewRunner(charset), nil
}

// newExecutor builds the query executor for the configured backend. Dry-run
// never touches the database. The returned cleanup is always non-nil.
func newExecutor(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, runner *process.Runner, logger *slog.Logger) (port.QueryExecutor, func(), error) {
	if cfg.DryRun {
		logger.Info("dry-run mode: queries are validated but never executed")
		return dryrun.NewExecutor(logger), func() {}, nil
	}

	switch cfg.DBBackend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			URL:             cfg.DatabaseURL,
			MaxConns:        cfg.PoolMaxConns,
			MinConns:        cfg.PoolMinConns,
			MaxConnLifetime: cfg.PoolMaxConnLifetime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database %s: %w", redactDSN(cfg.DatabaseURL), err)
		}
		logger.Info("database pool connected",
			slog.String("db.system", dbSystem(cfg.DBBackend)),
			slog.String("url", redactDSN(cfg.DatabaseURL)),
			slog.Int("pool_max_conns", int(cfg.PoolMaxConns)),
		)
		return postgres.NewExecutor(pool, cfg.ColumnDelimiter, cfg.QueryTimeout, cat.Masks()), pool.Close, nil
	default:
		logger.Info("using sqlcmd client",
			slog.String("db.system", dbSystem(cfg.DBBackend)),
			slog.String("instance", cfg.SQLInstance),
			slog.String("database", cfg.SQLDatabase),
		)
		return sqlcmd.NewExecutor(runner, sqlcmd.Config{
			Path:      cfg.SQLCmdPath,
			Instance:  cfg.SQLInstance,
			Database:  cfg.SQLDatabase,
			Delimiter: cfg.ColumnDelimiter,
			Timeout:   cfg.QueryTimeout,
		}), func() {}, nil
	}
}

func newGenerator(cfg *config.Config, runner *process.Runner) (port.Generator, error) {
	if cfg.LLMBackend == config.LLMCLI {
		return ollama.NewCLIGenerator(runner, cfg.OllamaPath, cfg.GenerationTimeout), nil
	}
	gen, err := ollama.NewHTTPGenerator(ollama.HTTPConfig{
		URL:     cfg.OllamaURL,
		Timeout: cfg.GenerationTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}
	return gen, nil
}

// enforcesReadOnly reports whether the configured executor rejects writes on
// its own. sqlcmd runs whatever it is given.
func enforcesReadOnly(cfg *config.Config) bool {
	return cfg.DryRun || cfg.DBBackend == config.BackendPostgres
}

func dbSystem(backend string) string {
	if backend == config.BackendPostgres {
		return "postgresql"
	}
	return "mssql"
}

func surface(transport string) string {
	if transport == config.TransportREPL {
		return repl.SurfaceREPL
	}
	return mcp.SurfaceMCP
}

func dialect(backend string) string {
	if backend == config.BackendPostgres {
		return "PostgreSQL"
	}
	return "SQL Server (T-SQL)"
}

// databaseName is the database named in the generation prompt.
func databaseName(cfg *config.Config) string {
	if cfg.DBBackend != config.BackendPostgres {
		return cfg.SQLDatabase
	}
	u, err := url.Parse(cfg.DatabaseURL)
	if err != nil {
		return cfg.SQLDatabase
	}
	if name := strings.TrimPrefix(u.Path, "/"); name != "" {
		return name
	}
	return cfg.SQLDatabase
}
