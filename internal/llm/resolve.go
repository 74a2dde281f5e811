package llm

import (
	"context"
	"fmt"
	"strings"
)

// ResolveProvider selects an LLM provider based on the model flag and available keys.
func ResolveProvider(ctx context.Context, modelFlag string, keys Keys) (Provider, error) {
	// Explicit provider from model flag
	if modelFlag != "" {
		lower := strings.ToLower(modelFlag)
		switch {
		case strings.HasPrefix(lower, "anthropic:"):
			return withModel(NewAnthropic(keys.Anthropic, keys.AnthropicBaseURL))(modelFlag[len("anthropic:"):])
		case strings.HasPrefix(lower, "claude"):
			return withModel(NewAnthropic(keys.Anthropic, keys.AnthropicBaseURL))(modelFlag)
		case strings.HasPrefix(lower, "openai:"):
			return withModel(NewOpenAI(keys.OpenAI, keys.OpenAIBaseURL))(modelFlag[len("openai:"):])
		case strings.HasPrefix(lower, "gpt"), strings.HasPrefix(lower, "o1"), strings.HasPrefix(lower, "o3"):
			return withModel(NewOpenAI(keys.OpenAI, keys.OpenAIBaseURL))(modelFlag)
		case strings.HasPrefix(lower, "gemini:"):
			return withModel(NewGemini(ctx, keys.Gemini, keys.GeminiBaseURL))(modelFlag[len("gemini:"):])
		case strings.HasPrefix(lower, "gemini"):
			return withModel(NewGemini(ctx, keys.Gemini, keys.GeminiBaseURL))(modelFlag)
		}
	}

	// Auto-detect from available keys
	switch {
	case keys.Anthropic != "":
		return NewAnthropic(keys.Anthropic, keys.AnthropicBaseURL)
	case keys.OpenAI != "":
		return NewOpenAI(keys.OpenAI, keys.OpenAIBaseURL)
	case keys.Gemini != "":
		return NewGemini(ctx, keys.Gemini, keys.GeminiBaseURL)
	}
	return nil, fmt.Errorf("no LLM provider configured: set ANTHROPIC_API_KEY, OPENAI_API_KEY or GEMINI_API_KEY, or run 'leetgrade auth set'")
}

// withModel adapts a constructor result so the resolved provider always
// requests the given model.
func withModel[P Provider](p P, err error) func(model string) (Provider, error) {
	return func(model string) (Provider, error) {
		if err != nil {
			return nil, err
		}
		return &modelOverride{Provider: p, model: model}, nil
	}
}

// modelOverride wraps a provider to override the model in settings.
type modelOverride struct {
	Provider
	model string
}

func (m *modelOverride) Generate(ctx context.Context, prompt string, s Settings) (string, error) {
	s.Model = m.model
	return m.Provider.Generate(ctx, prompt, s)
}

// Model returns the model a provider will request, or "" for its default.
func Model(p Provider) string {
	for {
		switch v := p.(type) {
		case *modelOverride:
			return v.model
		case *retryProvider:
			p = v.Provider
		case *MockProvider:
			return v.Model
		default:
			return ""
		}
	}
}
