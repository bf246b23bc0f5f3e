package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-strategy-wizard/pkg/wizard"
)

// Theme styles the non-prompt output of a session.
type Theme struct {
	Title     lipgloss.Style
	Active    lipgloss.Style
	Completed lipgloss.Style
	Pending   lipgloss.Style
	Section   lipgloss.Style
	Help      lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
}

// DefaultTheme uses bold headings and ANSI colors that degrade to plain text
// when the output is not a terminal.
func DefaultTheme() Theme {
	return Theme{
		Title:     lipgloss.NewStyle().Bold(true),
		Active:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Completed: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Pending:   lipgloss.NewStyle().Faint(true),
		Section:   lipgloss.NewStyle().Bold(true).Underline(true),
		Help:      lipgloss.NewStyle().Faint(true),
		Error:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Success:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
	}
}

// PlainTheme renders without any styling.
func PlainTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Title: plain, Active: plain, Completed: plain, Pending: plain,
		Section: plain, Help: plain, Error: plain, Success: plain,
	}
}

// Progress renders the step indicator.
func (t Theme) Progress(steps []wizard.StepInfo) string {
	parts := make([]string, 0, len(steps))
	for _, s := range steps {
		switch {
		case s.Completed:
			parts = append(parts, t.Completed.Render(fmt.Sprintf("✓ %s", s.Title)))
		case s.Active:
			parts = append(parts, t.Active.Render(fmt.Sprintf("%d %s", s.Number, s.Title)))
		default:
			parts = append(parts, t.Pending.Render(fmt.Sprintf("%d %s", s.Number, s.Title)))
		}
	}
	return strings.Join(parts, "  ›  ")
}

// Banner renders an error banner, one message per line.
func (t Theme) Banner(messages ...string) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		if m = strings.TrimSpace(m); m != "" {
			lines = append(lines, t.Error.Render("✗ "+m))
		}
	}
	return strings.Join(lines, "\n")
}
