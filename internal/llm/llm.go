// Package llm defines the provider interface and implementations for model grading.
package llm

import "context"

// Settings configures the LLM request.
type Settings struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Seed        *int

	// System is the system prompt. Empty means none.
	System string

	// Schema, when set, asks the provider for JSON matching it through the
	// provider's native structured output mechanism.
	Schema *Schema
}

// Schema is a named JSON Schema definition.
type Schema struct {
	Name       string
	Definition map[string]any
}

// Provider generates text from a prompt using an LLM.
type Provider interface {
	Generate(ctx context.Context, prompt string, settings Settings) (string, error)
	Name() string
}
