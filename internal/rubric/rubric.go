// Package rubric loads the grading rubrics handed to the model.
package rubric

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/leetgrade/internal/schema"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// DefaultName is used when no rubric is requested.
const DefaultName = "general"

// Rubric describes how a model should grade an answer.
type Rubric struct {
	Name        string      `yaml:"name"`
	Version     int         `yaml:"version"`
	Description string      `yaml:"description"`
	Scale       Scale       `yaml:"scale"`
	Criteria    []Criterion `yaml:"criteria"`
	Guidance    []string    `yaml:"guidance"`
}

// Scale bounds every criterion score.
type Scale struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Criterion is one graded dimension. Key is the JSON field the model fills.
type Criterion struct {
	Key         string `yaml:"key"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// LoadBuiltin loads a built-in rubric by name.
func LoadBuiltin(name string) (*Rubric, error) {
	if name == "" {
		name = DefaultName
	}
	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("rubric.LoadBuiltin: unknown rubric %q: %w", name, err)
	}
	return Parse(data)
}

// Parse decodes a rubric and checks it is usable.
func Parse(data []byte) (*Rubric, error) {
	var r Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("rubric.Parse: %w", err)
	}
	if r.Name == "" {
		return nil, fmt.Errorf("rubric.Parse: name is required")
	}
	if r.Scale.Max <= r.Scale.Min {
		return nil, fmt.Errorf("rubric.Parse: %s: scale max must exceed min", r.Name)
	}
	if len(r.Criteria) == 0 {
		return nil, fmt.Errorf("rubric.Parse: %s: no criteria", r.Name)
	}
	if err := checkKeys(r.Criteria); err != nil {
		return nil, fmt.Errorf("rubric.Parse: %s: %w", r.Name, err)
	}
	return &r, nil
}

// checkKeys requires exactly one criterion per grade schema field.
func checkKeys(criteria []Criterion) error {
	want := make(map[string]bool, len(schema.Criteria))
	for _, k := range schema.Criteria {
		want[k] = true
	}
	seen := make(map[string]bool, len(criteria))
	for _, c := range criteria {
		if !want[c.Key] {
			return fmt.Errorf("unknown criterion key %q (want one of %s)", c.Key, strings.Join(schema.Criteria, ", "))
		}
		if seen[c.Key] {
			return fmt.Errorf("duplicate criterion key %q", c.Key)
		}
		seen[c.Key] = true
	}
	for _, k := range schema.Criteria {
		if !seen[k] {
			return fmt.Errorf("missing criterion key %q", k)
		}
	}
	return nil
}

// List returns the names of all available built-in rubrics.
func List() ([]string, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if n, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, n)
		}
	}
	return names, nil
}

// FormatForPrompt renders the rubric as the grading instructions for the prompt.
func FormatForPrompt(r *Rubric) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Grade the answer on these criteria (%g-%g, where %g is the best):\n", r.Scale.Min, r.Scale.Max, r.Scale.Max)
	for _, c := range r.Criteria {
		fmt.Fprintf(&b, "- %s: %s\n", c.Title, c.Description)
	}

	if len(r.Guidance) > 0 {
		b.WriteString("\nAdditional guidance:\n")
		for _, g := range r.Guidance {
			fmt.Fprintf(&b, "- %s\n", g)
		}
	}
	return b.String()
}
