package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/leetgrade/internal/report"
)

// Theme styles terminal output.
type Theme struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Faint  lipgloss.Style
	Card   lipgloss.Style
	Strong lipgloss.Style
	Fair   lipgloss.Style
	Weak   lipgloss.Style
}

// DefaultTheme is used by the CLI.
func DefaultTheme() Theme {
	return Theme{
		Title: lipgloss.NewStyle().Bold(true),
		Label: lipgloss.NewStyle().Width(12),
		Faint: lipgloss.NewStyle().Faint(true),
		Card: lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")),
		Strong: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		Fair:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		Weak:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
}

func (t Theme) rating(r report.Rating) string {
	switch r {
	case report.RatingStrong:
		return t.Strong.Render(string(r))
	case report.RatingFair:
		return t.Fair.Render(string(r))
	default:
		return t.Weak.Render(string(r))
	}
}

// Text renders a report as a styled terminal card.
func Text(r *report.Report, t Theme) string {
	var b strings.Builder

	b.WriteString(t.Title.Render("LeetGrade"))
	b.WriteString("  ")
	b.WriteString(t.Faint.Render(r.Time.Format(time.RFC3339)))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(t.Label.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}
	if r.Question != "" {
		row("Question", firstLine(r.Question, 50))
	}
	row("Logic", fmt.Sprintf("%d/100", r.Logic))
	row("Efficiency", fmt.Sprintf("%d/100", r.Efficiency))
	row("Readability", fmt.Sprintf("%d/100", r.Readability))
	row("Overall", fmt.Sprintf("%d/100 %s", r.Summary.Overall, t.rating(r.Summary.Rating)))

	if r.Grade != nil {
		b.WriteString("\n")
		b.WriteString(t.Title.Render("Model grade"))
		if r.Meta != nil {
			b.WriteString("  ")
			b.WriteString(t.Faint.Render(r.Meta.Model))
		}
		b.WriteString("\n")
		row("Logic", fmt.Sprintf("%g/10", r.Grade.Logic))
		row("Efficiency", fmt.Sprintf("%g/10", r.Grade.Efficiency))
		row("Readability", fmt.Sprintf("%g/10", r.Grade.Readability))
	}

	return t.Card.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

// History renders a compact listing of past reports, newest first.
func History(reports []*report.Report, t Theme) string {
	if len(reports) == 0 {
		return t.Faint.Render("No analyses recorded.") + "\n"
	}
	var b strings.Builder
	for _, r := range reports {
		fmt.Fprintf(&b, "%s  L%3d E%3d R%3d  %3d %s  %s\n",
			t.Faint.Render(r.Time.Format("2006-01-02 15:04:05")),
			r.Logic, r.Efficiency, r.Readability,
			r.Summary.Overall, t.rating(r.Summary.Rating),
			firstLine(r.Question, 50),
		)
	}
	return b.String()
}

func firstLine(s string, limit int) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "\n")
	if r := []rune(s); len(r) > limit {
		return string(r[:limit-1]) + "…"
	}
	return s
}
