package repl

import (
	"io"

	"github.com/chzyer/readline"
)

// LineReader is the slice of *readline.Instance the loop needs.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

const prompt = "❓ Pregunta: "

// NewReadline opens an interactive line editor. An empty historyFile keeps
// history in memory only.
func NewReadline(historyFile string, stdout, stderr io.Writer) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       historyFile,
		AutoComplete:      readline.NewPrefixCompleter(readline.PcItem(cmdQuit), readline.PcItem(cmdHistory), readline.PcItem(cmdSalir)),
		InterruptPrompt:   "^C",
		EOFPrompt:         cmdQuit,
		HistorySearchFold: true,
		Stdout:            stdout,
		Stderr:            stderr,
		FuncFilterInputRune: func(r rune) (rune, bool) {
			if r == readline.CharCtrlZ {
				return r, false
			}
			return r, true
		},
	})
}
