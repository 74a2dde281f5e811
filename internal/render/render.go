// Package render produces Markdown and terminal output from a report.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/dshills/leetgrade/internal/report"
)

// Markdown renders a report as a Markdown document.
func Markdown(r *report.Report) string {
	var b strings.Builder

	b.WriteString("# LeetGrade Report\n\n")
	fmt.Fprintf(&b, "**Time:** %s\n", r.Time.Format(time.RFC3339))
	fmt.Fprintf(&b, "**Rating:** %s\n", r.Summary.Rating)
	fmt.Fprintf(&b, "**Overall:** %d / 100\n\n", r.Summary.Overall)

	b.WriteString("## Heuristic Scores\n\n")
	b.WriteString("| Criterion | Score |\n|---|---|\n")
	fmt.Fprintf(&b, "| Logic | %d/100 |\n", r.Logic)
	fmt.Fprintf(&b, "| Efficiency | %d/100 |\n", r.Efficiency)
	fmt.Fprintf(&b, "| Readability | %d/100 |\n\n", r.Readability)

	if r.Grade != nil {
		b.WriteString("## Model Grade\n\n")
		b.WriteString("| Criterion | Grade |\n|---|---|\n")
		fmt.Fprintf(&b, "| Logic | %g/10 |\n", r.Grade.Logic)
		fmt.Fprintf(&b, "| Efficiency | %g/10 |\n", r.Grade.Efficiency)
		fmt.Fprintf(&b, "| Readability | %g/10 |\n\n", r.Grade.Readability)
		if r.Meta != nil {
			fmt.Fprintf(&b, "Graded by %s at temperature %g", r.Meta.Model, r.Meta.Temperature)
			if r.Input.Rubric != "" {
				fmt.Fprintf(&b, " using the %s rubric", r.Input.Rubric)
			}
			b.WriteString(".\n\n")
		}
	}

	b.WriteString("## Question\n\n")
	writeQuoted(&b, r.Question)
	b.WriteString("## Answer\n\n")
	b.WriteString("```\n")
	b.WriteString(strings.TrimRight(r.Answer, "\n"))
	b.WriteString("\n```\n")

	return b.String()
}

func writeQuoted(b *strings.Builder, text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		b.WriteString("_(empty)_\n\n")
		return
	}
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(b, "> %s\n", line)
	}
	b.WriteString("\n")
}
