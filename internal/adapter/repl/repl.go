package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"github.com/guillermoBallester/asksql/internal/core/domain"
	"github.com/guillermoBallester/asksql/internal/core/service"
)

const (
	cmdQuit    = `\q`
	cmdSalir   = "salir"
	cmdHistory = `\h`
)

const (
	labelSQL            = "Consulta SQL generada"
	labelResult         = "Resultado SQL"
	labelInterpretation = "Interpretación"
)

// SurfaceREPL tags audit records and spans produced by the terminal loop.
const SurfaceREPL = "repl"

// Turner answers one question within a session.
type Turner interface {
	Turn(ctx context.Context, transcript *domain.Transcript, question string) (service.Reply, error)
}

// REPL is the interactive terminal surface: one question per line, answers
// rendered as labeled blocks.
type REPL struct {
	reader     LineReader
	out        io.Writer
	conv       Turner
	transcript *domain.Transcript
	styles     styles
	logger     *slog.Logger
}

func New(reader LineReader, out io.Writer, conv Turner, logger *slog.Logger) *REPL {
	return &REPL{
		reader:     reader,
		out:        out,
		conv:       conv,
		transcript: domain.NewTranscript(),
		styles:     newStyles(out),
		logger:     logger,
	}
}

// Transcript exposes the session history.
func (r *REPL) Transcript() *domain.Transcript {
	return r.transcript
}

// Run reads questions until EOF, a quit command or ctx ends. Failed turns are
// printed and the loop continues.
func (r *REPL) Run(ctx context.Context) error {
	defer func() { _ = r.reader.Close() }()

	fmt.Fprintln(r.out, r.styles.dim.Render(fmt.Sprintf("Escribe tu pregunta. %s o %q para salir, %s para ver el historial.", cmdQuit, cmdSalir, cmdHistory)))
	r.logger.Info("repl session started", slog.String("session.id", r.transcript.ID()))

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := r.reader.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			fmt.Fprintln(r.out, r.styles.dim.Render(fmt.Sprintf("(usa %s para salir)", cmdQuit)))
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return fmt.Errorf("reading input: %w", err)
		}

		question := strings.TrimSpace(line)
		switch strings.ToLower(question) {
		case "":
			continue
		case cmdQuit, cmdSalir:
			return nil
		case cmdHistory:
			r.printTranscript()
			continue
		}

		reply, err := r.conv.Turn(ctx, r.transcript, question)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(r.out, r.styles.err.Render("❌ "+err.Error()))
			continue
		}
		r.render(reply)
	}
}

func (r *REPL) block(label string, style lipgloss.Style, body string) {
	fmt.Fprintln(r.out, r.styles.label.Render(label))
	fmt.Fprintln(r.out, style.Render(body))
}

func (r *REPL) render(reply service.Reply) {
	if reply.SQL != "" {
		r.block(labelSQL, r.styles.sql, reply.SQL)
	}

	switch reply.Outcome {
	case service.OutcomeAnswered:
		r.block(labelResult, r.styles.result, reply.Result)
		r.block(labelInterpretation, r.styles.answer, reply.Interpretation)
	case service.OutcomeSQLError:
		r.block(labelResult, r.styles.err, reply.Message)
	case service.OutcomeCapabilities:
		fmt.Fprintln(r.out, r.styles.answer.Render(reply.Message))
	default:
		fmt.Fprintln(r.out, r.styles.notice.Render(reply.Message))
	}
}

func (r *REPL) printTranscript() {
	entries := r.transcript.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(r.out, r.styles.dim.Render("(historial vacío)"))
		return
	}
	for _, e := range entries {
		who := "Tú"
		if e.Role == domain.RoleAssistant {
			who = "Asistente"
		}
		fmt.Fprintln(r.out, r.styles.user.Render(who+":"))
		fmt.Fprintln(r.out, r.styles.history.Render(e.Text))
	}
}
