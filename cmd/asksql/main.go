package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guillermoBallester/asksql/internal/adapter/catalog"
	"github.com/guillermoBallester/asksql/internal/adapter/mcp"
	"github.com/guillermoBallester/asksql/internal/adapter/repl"
	"github.com/guillermoBallester/asksql/internal/audit"
	"github.com/guillermoBallester/asksql/internal/config"
	"github.com/guillermoBallester/asksql/internal/core/domain"
	"github.com/guillermoBallester/asksql/internal/core/port"
	"github.com/guillermoBallester/asksql/internal/core/service"
	"github.com/guillermoBallester/asksql/internal/telemetry"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/trace"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	overrides, err := parseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Logs go to stderr: stdout belongs to the REPL or the MCP stdio transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	logger.Info("starting asksql",
		slog.String("version", version),
		slog.String("log_level", cfg.LogLevel.String()),
		slog.String("db_backend", cfg.DBBackend),
		slog.String("llm_backend", cfg.LLMBackend),
		slog.String("model", cfg.OllamaModel),
		slog.String("transport", cfg.Transport),
		slog.Bool("dry_run", cfg.DryRun),
		slog.String("query_timeout", cfg.QueryTimeout.String()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	tracer, inst := trace.Tracer(telemetry.NoopTracer()), port.Instrumentation(telemetry.NoopInstruments())
	if cfg.OTelEnabled {
		provider, err := telemetry.Init(ctx, telemetry.Options{
			ServiceName: "asksql",
			Version:     version,
			DBSystem:    dbSystem(cfg.DBBackend),
			Model:       cfg.OllamaModel,
			Surface:     surface(cfg.Transport),
		})
		if err != nil {
			return fmt.Errorf("initializing telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				logger.Error("telemetry shutdown failed", slog.String("error", err.Error()))
			}
		}()
		tracer, inst = telemetry.Tracer(), telemetry.NewInstruments()
		logger.Info("telemetry enabled")
	}

	var cat *catalog.Catalog
	if cfg.CatalogFile != "" {
		cat, err = catalog.LoadFromFile(cfg.CatalogFile)
		if err != nil {
			return fmt.Errorf("loading catalog: %w", err)
		}
		logger.Info("catalog loaded",
			slog.String("file", cfg.CatalogFile),
			slog.Int("tables", len(cat.AllowList())),
			slog.Int("keywords", len(cat.KeywordTerms())),
		)
	}

	runner, err := newRunner(cfg)
	if err != nil {
		return err
	}

	executor, closeExecutor, err := newExecutor(ctx, cfg, cat, runner, logger)
	if err != nil {
		return err
	}
	defer closeExecutor()

	generator, err := newGenerator(cfg, runner)
	if err != nil {
		return err
	}

	var auditor port.QueryAuditor = port.NoopAuditor{}
	if cfg.AuditLog != "" {
		fa, err := audit.NewFileAuditor(cfg.AuditLog)
		if err != nil {
			return fmt.Errorf("creating audit logger: %w", err)
		}
		auditor = fa
		logger.Info("audit logging enabled", slog.String("file", cfg.AuditLog))
	}
	defer func() {
		if err := auditor.Close(); err != nil {
			logger.Error("closing audit log failed", slog.String("error", err.Error()))
		}
	}()

	// Domain
	validator := domain.NewRelevanceValidator(domain.NewSubstringMatcher(cat.AllowList()))
	keywords := domain.NewSubstringMatcher(cat.KeywordTerms())
	prompts := domain.PromptBuilder{
		Database: databaseName(cfg),
		Dialect:  dialect(cfg.DBBackend),
		Examples: cat.FewShot(),
		Tables:   cat.TableNotes(),
	}

	// Services
	generationSvc := service.NewGenerationService(generator, cfg.OllamaModel, prompts, logger, tracer, inst)
	querySvc := service.NewQueryService(validator, executor, auditor, logger, tracer, inst)

	conv := service.NewConversation(generationSvc, querySvc, keywords, surface(cfg.Transport), logger, tracer, inst)

	if cfg.Transport == config.TransportREPL {
		return serveREPL(ctx, cfg, conv, logger)
	}

	mcpServer := mcp.NewServer(version, mcp.Services{
		Conversation: conv,
		Generation:   generationSvc,
		Query:        querySvc,
		ReadOnly:     enforcesReadOnly(cfg),
	}, logger, tracer, inst)
	if cfg.Transport == config.TransportHTTP {
		if err := serveHTTP(ctx, cfg, mcpServer, logger); err != nil {
			return err
		}
	} else {
		logger.Info("serving MCP over stdio")
		if err := mcpserver.NewStdioServer(mcpServer).Listen(ctx, os.Stdin, os.Stdout); err != nil {
			return fmt.Errorf("stdio server: %w", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

func serveREPL(ctx context.Context, cfg *config.Config, conv *service.Conversation, logger *slog.Logger) error {
	rl, err := repl.NewReadline(cfg.HistoryFile, os.Stdout, os.Stderr)
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	return repl.New(rl, rl.Stdout(), conv, logger).Run(ctx)
}

func serveHTTP(ctx context.Context, cfg *config.Config, mcpServer *mcpserver.MCPServer, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", bearerAuthMiddleware(mcpserver.NewStreamableHTTPServer(mcpServer), cfg.HTTPBearerToken))
	mux.HandleFunc("/health", healthHandler)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           recoveryMiddleware(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving MCP over HTTP", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// parseFlags maps command-line flags onto config overrides. Only flags that
// were actually passed are set, so env vars keep applying otherwise.
func parseFlags(args []string) (config.Overrides, error) {
	var o config.Overrides

	fs := flag.NewFlagSet("asksql", flag.ContinueOnError)
	dbBackend := fs.String("db-backend", "", "database backend: sqlcmd or postgres")
	sqlInstance := fs.String("sql-instance", "", `SQL Server instance, e.g. localhost\SQLEXPRESS`)
	sqlDatabase := fs.String("sql-database", "", "SQL Server database name")
	databaseURL := fs.String("database-url", "", "PostgreSQL connection URL")
	queryTimeout := fs.Duration("query-timeout", 0, "per-query timeout, 0 disables it")
	llmBackend := fs.String("llm-backend", "", "text generation backend: http or cli")
	ollamaURL := fs.String("ollama-url", "", "Ollama generate endpoint")
	model := fs.String("model", "", "model name")
	generationTimeout := fs.Duration("generation-timeout", 0, "text generation timeout")
	catalogFile := fs.String("catalog", "", "path to the catalog YAML file")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	transport := fs.String("transport", "", "surface: repl, stdio or http")
	httpAddr := fs.String("http-addr", "", "listen address for the http transport")
	httpToken := fs.String("http-bearer-token", "", "bearer token required by the http transport")
	historyFile := fs.String("history-file", "", "REPL history file")
	poolMax := fs.Int("pool-max-conns", 0, "maximum pool connections (postgres)")
	poolMin := fs.Int("pool-min-conns", 0, "minimum pool connections (postgres)")
	poolLifetime := fs.Duration("pool-max-conn-lifetime", 0, "maximum connection lifetime (postgres)")
	fs.BoolVar(&o.OTelEnabled, "otel", false, "export traces and metrics over OTLP")
	fs.BoolVar(&o.DryRun, "dry-run", false, "generate and validate SQL without executing it")
	fs.StringVar(&o.AuditLog, "audit-log", "", "path to NDJSON audit log file")

	if err := fs.Parse(args); err != nil {
		return config.Overrides{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db-backend":
			o.DBBackend = dbBackend
		case "sql-instance":
			o.SQLInstance = sqlInstance
		case "sql-database":
			o.SQLDatabase = sqlDatabase
		case "database-url":
			o.DatabaseURL = databaseURL
		case "query-timeout":
			o.QueryTimeout = queryTimeout
		case "llm-backend":
			o.LLMBackend = llmBackend
		case "ollama-url":
			o.OllamaURL = ollamaURL
		case "model":
			o.OllamaModel = model
		case "generation-timeout":
			o.GenerationTimeout = generationTimeout
		case "catalog":
			o.CatalogFile = catalogFile
		case "log-level":
			o.LogLevel = logLevel
		case "transport":
			o.Transport = transport
		case "http-addr":
			o.HTTPAddr = httpAddr
		case "http-bearer-token":
			o.HTTPBearerToken = httpToken
		case "history-file":
			o.HistoryFile = historyFile
		case "pool-max-conns":
			n := int32(*poolMax)
			o.PoolMaxConns = &n
		case "pool-min-conns":
			n := int32(*poolMin)
			o.PoolMinConns = &n
		case "pool-max-conn-lifetime":
			o.PoolMaxConnLifetime = poolLifetime
		}
	})

	return o, nil
}

// redactDSN masks the password of a connection URL for logging.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
