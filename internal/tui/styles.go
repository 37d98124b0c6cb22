package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/joescharf/todo/internal/models"
	"github.com/joescharf/todo/internal/theme"
)

// Styles is the palette of one theme.
type Styles struct {
	Accent     lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	SelectedFg lipgloss.Color
	SelectedBg lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Info       lipgloss.Color
}

var darkStyles = Styles{
	Accent:     lipgloss.Color("#7D56F4"),
	Text:       lipgloss.Color("#E4E4E4"),
	Muted:      lipgloss.Color("#8A8A8A"),
	SelectedFg: lipgloss.Color("#FFFFFF"),
	SelectedBg: lipgloss.Color("#3C3C64"),
	Success:    lipgloss.Color("#5FD787"),
	Warning:    lipgloss.Color("#FFAF5F"),
	Error:      lipgloss.Color("#FF5F5F"),
	Info:       lipgloss.Color("#5FAFFF"),
}

var lightStyles = Styles{
	Accent:     lipgloss.Color("#5A3FC0"),
	Text:       lipgloss.Color("#1C1C1C"),
	Muted:      lipgloss.Color("#6C6C6C"),
	SelectedFg: lipgloss.Color("#000000"),
	SelectedBg: lipgloss.Color("#D7D7FF"),
	Success:    lipgloss.Color("#008700"),
	Warning:    lipgloss.Color("#AF5F00"),
	Error:      lipgloss.Color("#D70000"),
	Info:       lipgloss.Color("#005FAF"),
}

// StylesFor returns the palette of t.
func StylesFor(t theme.Theme) Styles {
	if t == theme.Light {
		return lightStyles
	}
	return darkStyles
}

func (s Styles) table() table.Styles {
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(s.Muted).
		BorderBottom(true).
		Bold(true).
		Foreground(s.Accent)
	ts.Cell = ts.Cell.Foreground(s.Text)
	ts.Selected = ts.Selected.
		Foreground(s.SelectedFg).
		Background(s.SelectedBg).
		Bold(true)
	return ts
}

func (s Styles) titleBar(bg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(bg).
		Padding(0, 1)
}

func (s Styles) severity(sev models.Severity) lipgloss.Style {
	c := s.Info
	switch sev {
	case models.SeveritySuccess:
		c = s.Success
	case models.SeverityWarning:
		c = s.Warning
	case models.SeverityError:
		c = s.Error
	}
	return lipgloss.NewStyle().Foreground(c)
}

func (s Styles) muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.Muted)
}
