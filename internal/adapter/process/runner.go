package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// CommandFunc builds the command to run. Tests swap it for a helper process.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Result is the captured, decoded output of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands and decodes their output with a fixed
// charset. A non-zero exit is reported through Result.ExitCode, not an error.
type Runner struct {
	command CommandFunc
	charset encoding.Encoding
}

func NewRunner(charset encoding.Encoding) *Runner {
	if charset == nil {
		charset = unicode.UTF8
	}
	return &Runner{command: exec.CommandContext, charset: charset}
}

// WithCommand returns a copy of r that builds commands with fn.
func (r *Runner) WithCommand(fn CommandFunc) *Runner {
	cp := *r
	cp.command = fn
	return &cp
}

// Run starts name with args and waits for it. The returned error is set only
// when the process could not be started or ctx ended first.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := r.command(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, fmt.Errorf("running %s: %w", name, ctxErr)
	}

	res := Result{
		Stdout: r.decode(stdout.Bytes()),
		Stderr: r.decode(stderr.Bytes()),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("running %s: %w", name, err)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	return res, nil
}

// decode never fails: bytes the charset cannot map become U+FFFD.
func (r *Runner) decode(b []byte) string {
	out, err := r.charset.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return strings.ToValidUTF8(string(out), "�")
}

// LookupCharset maps a configured output encoding name to its decoder.
func LookupCharset(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "cp850", "ibm850":
		return charmap.CodePage850, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("unsupported output encoding %q: must be utf-8, windows-1252, cp850, or latin1", name)
	}
}
