package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/guillermoBallester/asksql/internal/adapter/process"
	"github.com/guillermoBallester/asksql/internal/core/domain"
)

// CLIGenerator runs `ollama run <model> <prompt>` and returns its stdout.
type CLIGenerator struct {
	runner  *process.Runner
	path    string
	timeout time.Duration
}

func NewCLIGenerator(runner *process.Runner, path string, timeout time.Duration) *CLIGenerator {
	if path == "" {
		path = "ollama"
	}
	return &CLIGenerator{runner: runner, path: path, timeout: timeout}
}

func (g *CLIGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	res, err := g.runner.Run(ctx, g.path, "run", model, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%w: %s exited with code %d: %s", domain.ErrGeneration, g.path, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return strings.TrimSpace(res.Stdout), nil
}
