package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/guillermoBallester/asksql/internal/core/domain"
)

const (
	BackendSQLCmd   = "sqlcmd"
	BackendPostgres = "postgres"

	LLMHTTP = "http"
	LLMCLI  = "cli"

	TransportREPL  = "repl"
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

type Config struct {
	// Database backend.
	DBBackend       string // "sqlcmd" (default) or "postgres"
	SQLInstance     string
	SQLDatabase     string
	SQLCmdPath      string
	ColumnDelimiter string
	OutputEncoding  string        // charset of child process output
	DatabaseURL     string        // required when DBBackend is "postgres"
	QueryTimeout    time.Duration // 0 means no timeout

	// Connection pool (postgres backend).
	PoolMaxConns        int32
	PoolMinConns        int32
	PoolMaxConnLifetime time.Duration

	// Text generation.
	LLMBackend        string // "http" (default) or "cli"
	OllamaURL         string
	OllamaModel       string
	OllamaPath        string
	GenerationTimeout time.Duration

	CatalogFile string // optional catalog YAML

	// Logging.
	LogLevel slog.Level

	// Surface.
	Transport       string // "repl" (default), "stdio" or "http"
	HTTPAddr        string
	HTTPBearerToken string // required when transport=http
	HistoryFile     string // REPL line history, empty disables it

	// Observability.
	OTelEnabled bool

	// CLI-only fields (not settable via env vars).
	DryRun   bool
	AuditLog string // path to NDJSON audit log file
}

// Overrides holds CLI flag values that override environment variables.
// Pointer fields distinguish "not set" from zero values.
type Overrides struct {
	DBBackend         *string
	SQLInstance       *string
	SQLDatabase       *string
	DatabaseURL       *string
	QueryTimeout      *time.Duration
	LLMBackend        *string
	OllamaURL         *string
	OllamaModel       *string
	GenerationTimeout *time.Duration
	CatalogFile       *string
	LogLevel          *string
	Transport         *string
	HTTPAddr          *string
	HTTPBearerToken   *string
	HistoryFile       *string
	OTelEnabled       bool
	DryRun            bool
	AuditLog          string

	// Connection pool overrides.
	PoolMaxConns        *int32
	PoolMinConns        *int32
	PoolMaxConnLifetime *time.Duration
}

// Load builds a Config from compiled defaults and environment variables,
// then applies CLI overrides, then validates the result.
func Load(overrides Overrides) (*Config, error) {
	cfg := defaults()

	if err := loadEnvVars(cfg); err != nil {
		return nil, err
	}
	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		DBBackend:           BackendSQLCmd,
		SQLInstance:         domain.DefaultSQLInstance,
		SQLDatabase:         domain.DefaultDatabase,
		SQLCmdPath:          "sqlcmd",
		ColumnDelimiter:     ",",
		OutputEncoding:      "utf-8",
		PoolMaxConns:        5,
		PoolMinConns:        1,
		PoolMaxConnLifetime: 30 * time.Minute,
		LLMBackend:          LLMHTTP,
		OllamaURL:           domain.DefaultOllamaURL,
		OllamaModel:         domain.DefaultModel,
		OllamaPath:          "ollama",
		GenerationTimeout:   120 * time.Second,
		LogLevel:            slog.LevelInfo,
		Transport:           TransportREPL,
		HTTPAddr:            ":8080",
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	if d < 0 {
		return fmt.Errorf("invalid %s value %q: must not be negative", key, v)
	}
	*dst = d
	return nil
}

// loadEnvVars reads all supported environment variables into cfg.
func loadEnvVars(cfg *Config) error {
	setString(&cfg.DBBackend, "DB_BACKEND")
	setString(&cfg.SQLInstance, "SQL_INSTANCE")
	setString(&cfg.SQLDatabase, "SQL_DATABASE")
	setString(&cfg.SQLCmdPath, "SQLCMD_PATH")
	setString(&cfg.ColumnDelimiter, "SQL_COLUMN_DELIMITER")
	setString(&cfg.OutputEncoding, "OUTPUT_ENCODING")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	if err := setDuration(&cfg.QueryTimeout, "QUERY_TIMEOUT"); err != nil {
		return err
	}

	setString(&cfg.LLMBackend, "LLM_BACKEND")
	setString(&cfg.OllamaURL, "OLLAMA_URL")
	setString(&cfg.OllamaModel, "OLLAMA_MODEL")
	setString(&cfg.OllamaPath, "OLLAMA_PATH")
	if err := setDuration(&cfg.GenerationTimeout, "GENERATION_TIMEOUT"); err != nil {
		return err
	}

	setString(&cfg.CatalogFile, "CATALOG_FILE")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}

	setString(&cfg.Transport, "TRANSPORT")
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	cfg.HTTPBearerToken = os.Getenv("HTTP_BEARER_TOKEN")
	setString(&cfg.HistoryFile, "HISTORY_FILE")

	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid OTEL_ENABLED value %q: %w", v, err)
		}
		cfg.OTelEnabled = b
	}

	return loadPoolEnvVars(cfg)
}

// loadPoolEnvVars reads connection pool environment variables.
func loadPoolEnvVars(cfg *Config) error {
	if v := os.Getenv("POOL_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid POOL_MAX_CONNS value %q: must be a positive integer", v)
		}
		cfg.PoolMaxConns = int32(n)
	}
	if v := os.Getenv("POOL_MIN_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid POOL_MIN_CONNS value %q: must be a non-negative integer", v)
		}
		cfg.PoolMinConns = int32(n)
	}
	return setDuration(&cfg.PoolMaxConnLifetime, "POOL_MAX_CONN_LIFETIME")
}

func override[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// applyOverrides applies CLI flag values on top of the env-loaded config.
func applyOverrides(cfg *Config, o Overrides) error {
	override(&cfg.DBBackend, o.DBBackend)
	override(&cfg.SQLInstance, o.SQLInstance)
	override(&cfg.SQLDatabase, o.SQLDatabase)
	override(&cfg.DatabaseURL, o.DatabaseURL)
	override(&cfg.LLMBackend, o.LLMBackend)
	override(&cfg.OllamaURL, o.OllamaURL)
	override(&cfg.OllamaModel, o.OllamaModel)
	override(&cfg.CatalogFile, o.CatalogFile)
	override(&cfg.Transport, o.Transport)
	override(&cfg.HTTPAddr, o.HTTPAddr)
	override(&cfg.HTTPBearerToken, o.HTTPBearerToken)
	override(&cfg.HistoryFile, o.HistoryFile)

	if o.QueryTimeout != nil {
		if *o.QueryTimeout < 0 {
			return fmt.Errorf("invalid --query-timeout value: must not be negative")
		}
		cfg.QueryTimeout = *o.QueryTimeout
	}
	if o.GenerationTimeout != nil {
		if *o.GenerationTimeout < 0 {
			return fmt.Errorf("invalid --generation-timeout value: must not be negative")
		}
		cfg.GenerationTimeout = *o.GenerationTimeout
	}
	if o.LogLevel != nil {
		level, err := parseLogLevel(*o.LogLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}

	if err := applyPoolOverrides(cfg, o); err != nil {
		return err
	}

	cfg.DryRun = o.DryRun
	cfg.AuditLog = o.AuditLog
	cfg.OTelEnabled = cfg.OTelEnabled || o.OTelEnabled

	return nil
}

// applyPoolOverrides applies connection pool CLI flag overrides.
func applyPoolOverrides(cfg *Config, o Overrides) error {
	if o.PoolMaxConns != nil {
		if *o.PoolMaxConns <= 0 {
			return fmt.Errorf("invalid --pool-max-conns value: must be a positive integer")
		}
		cfg.PoolMaxConns = *o.PoolMaxConns
	}
	if o.PoolMinConns != nil {
		if *o.PoolMinConns < 0 {
			return fmt.Errorf("invalid --pool-min-conns value: must be a non-negative integer")
		}
		cfg.PoolMinConns = *o.PoolMinConns
	}
	override(&cfg.PoolMaxConnLifetime, o.PoolMaxConnLifetime)
	return nil
}

// validate checks cross-field constraints on the final config.
func validate(cfg *Config) error {
	switch cfg.DBBackend {
	case BackendSQLCmd:
		if strings.TrimSpace(cfg.SQLInstance) == "" || strings.TrimSpace(cfg.SQLDatabase) == "" {
			return fmt.Errorf("SQL_INSTANCE and SQL_DATABASE must not be empty for the sqlcmd backend")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_BACKEND is \"postgres\" (set via env var or --database-url flag)")
		}
	default:
		return fmt.Errorf("invalid DB_BACKEND value %q: must be \"sqlcmd\" or \"postgres\"", cfg.DBBackend)
	}

	if utf8.RuneCountInString(cfg.ColumnDelimiter) != 1 {
		return fmt.Errorf("invalid SQL_COLUMN_DELIMITER value %q: must be a single character", cfg.ColumnDelimiter)
	}

	switch cfg.LLMBackend {
	case LLMHTTP:
		if cfg.OllamaURL == "" {
			return fmt.Errorf("OLLAMA_URL must not be empty for the http generation backend")
		}
	case LLMCLI:
	default:
		return fmt.Errorf("invalid LLM_BACKEND value %q: must be \"http\" or \"cli\"", cfg.LLMBackend)
	}

	if strings.TrimSpace(cfg.OllamaModel) == "" {
		return fmt.Errorf("OLLAMA_MODEL must not be empty")
	}

	switch cfg.Transport {
	case TransportREPL, TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("invalid TRANSPORT value %q: must be \"repl\", \"stdio\" or \"http\"", cfg.Transport)
	}

	if cfg.Transport == TransportHTTP && cfg.HTTPBearerToken == "" {
		return fmt.Errorf("HTTP_BEARER_TOKEN is required when transport is \"http\" (set via env var or --http-bearer-token flag)")
	}

	if cfg.PoolMinConns > cfg.PoolMaxConns {
		return fmt.Errorf("POOL_MIN_CONNS (%d) must not exceed POOL_MAX_CONNS (%d)", cfg.PoolMinConns, cfg.PoolMaxConns)
	}

	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL value %q: must be debug, info, warn, or error", s)
	}
}
