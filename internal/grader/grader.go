// Package grader asks a model for a rubric grade and validates the answer it returns.
package grader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dshills/leetgrade/internal/llm"
	"github.com/dshills/leetgrade/internal/prompt"
	"github.com/dshills/leetgrade/internal/redact"
	"github.com/dshills/leetgrade/internal/report"
	"github.com/dshills/leetgrade/internal/rubric"
	"github.com/dshills/leetgrade/internal/schema"
	"github.com/dshills/leetgrade/internal/submission"
)

// ProviderError reports a failed model call.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string { return fmt.Sprintf("LLM call failed: %v", e.Err) }

func (e *ProviderError) Unwrap() error { return e.Err }

// ValidationFailedError reports a model response that still failed schema
// validation after the repair attempt.
type ValidationFailedError struct {
	Errors []schema.ValidationError
}

func (e *ValidationFailedError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return "LLM output failed schema validation after repair: " + strings.Join(msgs, "; ")
}

// Grader grades answers with a model.
type Grader struct {
	Provider llm.Provider
	Rubric   *rubric.Rubric
	Settings llm.Settings

	// Redact strips secrets from both texts before they are sent.
	Redact bool

	// OnPrompt, if set, receives the user prompt before the call.
	OnPrompt func(string)

	Logger *slog.Logger
}

// Result is a validated grade.
type Result struct {
	Grade      *report.Grade
	Meta       *report.Meta
	Redactions int
	Repaired   bool
}

// Grade builds the prompt, calls the model and validates its JSON, asking the
// model once to repair an invalid response.
func (g *Grader) Grade(ctx context.Context, question, answer *submission.Text) (*Result, error) {
	log := g.Logger
	if log == nil {
		log = slog.Default()
	}

	r := g.Rubric
	if r == nil {
		var err error
		if r, err = rubric.LoadBuiltin(""); err != nil {
			return nil, err
		}
	}

	res := &Result{}
	if g.Redact {
		var n int
		question, n = redacted(question)
		res.Redactions += n
		answer, n = redacted(answer)
		res.Redactions += n
		if res.Redactions > 0 {
			log.Debug("redacted secrets", "count", res.Redactions)
		}
	}

	validator, err := schema.ForScale(r.Scale.Min, r.Scale.Max)
	if err != nil {
		return nil, fmt.Errorf("grader.Grade: %w", err)
	}

	settings := g.Settings
	settings.System = prompt.System
	settings.Schema = &llm.Schema{
		Name:       schema.Name,
		Definition: schema.Definition(r.Scale.Min, r.Scale.Max),
	}

	promptText := prompt.Build(prompt.BuildOpts{Question: question, Answer: answer, Rubric: r})
	if g.OnPrompt != nil {
		g.OnPrompt(promptText)
	}

	log.Debug("calling LLM", "provider", g.Provider.Name(), "rubric", r.Name)
	out, err := g.Provider.Generate(ctx, promptText, settings)
	if err != nil {
		return nil, &ProviderError{Err: err}
	}
	log.Debug("received LLM response", "bytes", len(out))

	grade, verrs := validator.Parse([]byte(llm.ExtractJSON(out)))
	if len(verrs) > 0 {
		log.Debug("validation failed, attempting repair", "errors", len(verrs))
		repaired, err := g.Provider.Generate(ctx, prompt.BuildRepair(out, verrs), settings)
		if err != nil {
			return nil, &ProviderError{Err: err}
		}
		grade, verrs = validator.Parse([]byte(llm.ExtractJSON(repaired)))
		if len(verrs) > 0 {
			return nil, &ValidationFailedError{Errors: verrs}
		}
		res.Repaired = true
	}

	model := llm.Model(g.Provider)
	if model == "" {
		model = settings.Model
	}
	if model == "" {
		model = "(default)"
	}
	res.Grade = grade
	res.Meta = &report.Meta{
		Model:       g.Provider.Name() + "/" + model,
		Temperature: settings.Temperature,
	}
	return res, nil
}

func redacted(t *submission.Text) (*submission.Text, int) {
	r := redact.Text(t.Raw)
	if r.Count() == 0 {
		return t, 0
	}
	out := submission.FromText(t.Source, r.Text)
	out.Hash = t.Hash
	return out, r.Count()
}
