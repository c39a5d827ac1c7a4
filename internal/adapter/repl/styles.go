package repl

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorOverlay  = lipgloss.Color("#6e6a86")
	colorText     = lipgloss.Color("#e0def4")
	colorSubtext  = lipgloss.Color("#908caa")
	colorLavender = lipgloss.Color("#c4a7e7")
	colorTeal     = lipgloss.Color("#9ccfd8")
	colorPeach    = lipgloss.Color("#f6c177")
	colorRed      = lipgloss.Color("#eb6f92")
)

// styles are bound to a renderer so colour detection follows the actual
// output writer rather than os.Stdout.
type styles struct {
	label   lipgloss.Style
	sql     lipgloss.Style
	result  lipgloss.Style
	answer  lipgloss.Style
	notice  lipgloss.Style
	err     lipgloss.Style
	dim     lipgloss.Style
	user    lipgloss.Style
	history lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		label: r.NewStyle().
			Bold(true).
			Foreground(colorLavender).
			MarginTop(1),
		sql: r.NewStyle().
			Foreground(colorTeal).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorOverlay).
			Padding(0, 1),
		result: r.NewStyle().
			Foreground(colorText).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorOverlay).
			Padding(0, 1),
		answer: r.NewStyle().
			Foreground(colorText).
			PaddingLeft(2),
		notice: r.NewStyle().
			Foreground(colorPeach).
			PaddingLeft(2),
		err: r.NewStyle().
			Foreground(colorRed).
			Bold(true).
			PaddingLeft(2),
		dim: r.NewStyle().
			Foreground(colorSubtext),
		user: r.NewStyle().
			Bold(true).
			Foreground(colorLavender),
		history: r.NewStyle().
			Foreground(colorText).
			PaddingLeft(2),
	}
}
