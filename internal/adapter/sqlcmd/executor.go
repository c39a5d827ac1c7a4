package sqlcmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/guillermoBallester/asksql/internal/adapter/process"
	"github.com/guillermoBallester/asksql/internal/core/domain"
)

// Config is the connection target handed to the sqlcmd client.
type Config struct {
	Path      string // binary, default "sqlcmd"
	Instance  string
	Database  string
	Delimiter string
	Timeout   time.Duration // 0 means no timeout
}

// Executor runs queries through the sqlcmd command-line client.
type Executor struct {
	runner *process.Runner
	cfg    Config
}

func NewExecutor(runner *process.Runner, cfg Config) *Executor {
	if cfg.Path == "" {
		cfg.Path = "sqlcmd"
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = ","
	}
	return &Executor{runner: runner, cfg: cfg}
}

// Args returns the sqlcmd argument list for sql: trimmed columns (-W) and a
// fixed column delimiter (-s).
func (e *Executor) Args(sql string) []string {
	return []string{
		"-S", e.cfg.Instance,
		"-d", e.cfg.Database,
		"-W",
		"-s", e.cfg.Delimiter,
		"-Q", sql,
	}
}

func (e *Executor) Execute(ctx context.Context, sql string) (string, error) {
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	res, err := e.runner.Run(ctx, e.cfg.Path, e.Args(sql)...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSQL, err)
	}
	if res.ExitCode != 0 {
		detail := strings.TrimSpace(res.Stderr)
		if detail == "" {
			detail = strings.TrimSpace(res.Stdout)
		}
		return "", fmt.Errorf("%w: %s", domain.ErrSQL, detail)
	}
	return strings.TrimSpace(res.Stdout), nil
}
