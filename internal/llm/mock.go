package llm

import (
	"context"
	"errors"
	"sync"
)

// MockProvider is a test double that returns canned responses.
// Responses are returned in order; the last one repeats.
type MockProvider struct {
	Responses []string
	Err       error

	// Model, if set, is what Model reports for this provider.
	Model string

	mu      sync.Mutex
	Prompts []string
	Calls   []Settings
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Generate(_ context.Context, prompt string, s Settings) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := len(m.Prompts)
	m.Prompts = append(m.Prompts, prompt)
	m.Calls = append(m.Calls, s)

	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", errors.New("mock: no responses configured")
	}
	return m.Responses[min(idx, len(m.Responses)-1)], nil
}
