// Package prompt builds the LLM prompt for answer grading.
package prompt

import (
	"fmt"
	"strings"

	"github.com/dshills/leetgrade/internal/rubric"
	"github.com/dshills/leetgrade/internal/schema"
	"github.com/dshills/leetgrade/internal/submission"
)

// System is the system role sent with every grading request.
const System = "You are a strict coding interviewer. You grade candidate answers to coding " +
	"interview questions. Return ONLY valid JSON, no markdown and no prose."

// BuildOpts configures prompt construction.
type BuildOpts struct {
	Question *submission.Text
	Answer   *submission.Text
	Rubric   *rubric.Rubric
}

// Build assembles the user prompt.
func Build(opts BuildOpts) string {
	var b strings.Builder

	b.WriteString("Leetcode Question:\n")
	b.WriteString(strings.TrimRight(opts.Question.Raw, "\n"))
	b.WriteString("\n\n")

	// Line numbers would change what the candidate wrote.
	b.WriteString("Candidate Answer (verbatim):\n")
	b.WriteString(strings.TrimRight(opts.Answer.Raw, "\n"))
	b.WriteString("\n\n")

	if opts.Rubric != nil {
		b.WriteString(rubric.FormatForPrompt(opts.Rubric))
		b.WriteString("\n")
	}

	b.WriteString(outputInstructions(opts.Rubric))
	return b.String()
}

func outputInstructions(r *rubric.Rubric) string {
	lo, hi := 0.0, 10.0
	keys := schema.Criteria
	if r != nil {
		lo, hi = r.Scale.Min, r.Scale.Max
		keys = make([]string, 0, len(r.Criteria))
		for _, c := range r.Criteria {
			keys = append(keys, c.Key)
		}
	}

	fields := make([]string, len(keys))
	for i, k := range keys {
		fields[i] = fmt.Sprintf("%q: number", k)
	}
	return fmt.Sprintf("Return a JSON object of the form {%s}. Each number must be between %g and %g. No other keys.\n",
		strings.Join(fields, ", "), lo, hi)
}

// BuildRepair constructs a follow-up prompt to fix schema validation errors.
func BuildRepair(originalOutput string, errors []schema.ValidationError) string {
	var b strings.Builder
	b.WriteString("The JSON output you returned has validation errors. Fix ONLY the errors listed below and return the corrected JSON.\n\n")
	b.WriteString("## Validation Errors\n\n")
	for _, e := range errors {
		fmt.Fprintf(&b, "- %s: %s\n", e.Path, e.Message)
	}
	b.WriteString("\n## Original Output\n\n```json\n")
	b.WriteString(originalOutput)
	b.WriteString("\n```\n\nReturn ONLY the corrected JSON. No prose.\n")
	return b.String()
}
