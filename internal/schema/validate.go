// Package schema validates model grades against the grade JSON Schema.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dshills/leetgrade/internal/report"
)

// Name identifies the grade schema to providers that require one.
const Name = "LeetCodeGrading"

// Criteria are the grade fields, in prompt order.
var Criteria = []string{"Logic", "Efficiency", "Readability"}

// ValidationError describes a single schema violation.
type ValidationError struct {
	Path    string
	Message string
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Definition returns the grade schema for scores in [lo, hi].
func Definition(lo, hi float64) map[string]any {
	props := make(map[string]any, len(Criteria))
	required := make([]any, 0, len(Criteria))
	for _, c := range Criteria {
		props[c] = map[string]any{"type": "number", "minimum": lo, "maximum": hi}
		required = append(required, c)
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

// Validator checks raw model output against a compiled grade schema.
type Validator struct {
	compiled *jsonschema.Schema
	printer  *message.Printer
}

var (
	cacheMu sync.Mutex
	cache   = map[[2]float64]*Validator{}
)

// ForScale returns a validator for scores in [lo, hi]. Validators are
// compiled once per scale.
func ForScale(lo, hi float64) (*Validator, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	key := [2]float64{lo, hi}
	if v, ok := cache[key]; ok {
		return v, nil
	}

	// The compiler wants a decoded JSON document, not a Go map with typed values.
	defBytes, err := json.Marshal(Definition(lo, hi))
	if err != nil {
		return nil, fmt.Errorf("schema.ForScale: marshal definition: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(defBytes)))
	if err != nil {
		return nil, fmt.Errorf("schema.ForScale: parse definition: %w", err)
	}

	url := fmt.Sprintf("schema://grade-%g-%g.json", lo, hi)
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("schema.ForScale: add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema.ForScale: compile: %w", err)
	}

	v := &Validator{compiled: compiled, printer: message.NewPrinter(language.English)}
	cache[key] = v
	return v, nil
}

// Validate checks raw JSON and returns every violation found.
func (v *Validator) Validate(raw []byte) []ValidationError {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return []ValidationError{{Path: "(root)", Message: fmt.Sprintf("invalid JSON: %v", err)}}
	}

	err := v.compiled.Validate(parsed)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []ValidationError{{Path: "(root)", Message: err.Error()}}
	}
	var errs []ValidationError
	v.flatten(ve, &errs)
	return errs
}

// Parse validates raw JSON and decodes it into a grade.
func (v *Validator) Parse(raw []byte) (*report.Grade, []ValidationError) {
	if errs := v.Validate(raw); len(errs) > 0 {
		return nil, errs
	}
	var g report.Grade
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, []ValidationError{{Path: "(root)", Message: err.Error()}}
	}
	return &g, nil
}

// flatten collects the leaf causes, which carry the specific failures.
func (v *Validator) flatten(e *jsonschema.ValidationError, out *[]ValidationError) {
	if len(e.Causes) == 0 {
		path := strings.Join(e.InstanceLocation, ".")
		if path == "" {
			path = "(root)"
		}
		*out = append(*out, ValidationError{
			Path:    path,
			Message: e.ErrorKind.LocalizedString(v.printer),
		})
		return
	}
	for _, c := range e.Causes {
		v.flatten(c, out)
	}
}
