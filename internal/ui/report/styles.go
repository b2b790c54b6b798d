package report

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	error   lipgloss.Style
	warning lipgloss.Style
	success lipgloss.Style
	gutter  lipgloss.Style
	caret   lipgloss.Style
	path    lipgloss.Style
	title   lipgloss.Style
	hint    lipgloss.Style
}

// newStyles binds styles to out so colors are dropped when out is not a
// terminal.
func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		error:   r.NewStyle().Foreground(lipgloss.Color("#F87171")).Bold(true),
		warning: r.NewStyle().Foreground(lipgloss.Color("#FBBF24")).Bold(true),
		success: r.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true),
		gutter:  r.NewStyle().Foreground(lipgloss.Color("#64748B")),
		caret:   r.NewStyle().Foreground(lipgloss.Color("#F87171")),
		path:    r.NewStyle().Foreground(lipgloss.Color("#3B82F6")),
		title:   r.NewStyle().Bold(true),
		hint:    r.NewStyle().Foreground(lipgloss.Color("#64748B")).Italic(true),
	}
}
