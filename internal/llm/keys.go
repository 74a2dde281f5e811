package llm

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/zalando/go-keyring"
)

// KeyringService is the OS keychain service API keys are stored under.
const KeyringService = "leetgrade"

// Providers lists the provider names that accept a stored key.
var Providers = []string{"anthropic", "openai", "gemini"}

// Keys holds provider credentials.
type Keys struct {
	Anthropic        string `env:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL string `env:"ANTHROPIC_BASE_URL"`
	OpenAI           string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`
	Gemini           string `env:"GEMINI_API_KEY"`
	GeminiBaseURL    string `env:"GEMINI_BASE_URL"`
}

// LoadKeys reads keys from the environment, then fills any that are missing
// from the OS keychain.
func LoadKeys() (Keys, error) {
	var k Keys
	if err := env.Parse(&k); err != nil {
		return Keys{}, fmt.Errorf("llm.LoadKeys: %w", err)
	}
	k.Anthropic = orKeychain(k.Anthropic, "anthropic")
	k.OpenAI = orKeychain(k.OpenAI, "openai")
	k.Gemini = orKeychain(k.Gemini, "gemini")
	return k, nil
}

func orKeychain(current, provider string) string {
	if current != "" {
		return current
	}
	v, err := keyring.Get(KeyringService, provider)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			slog.Debug("keychain lookup failed", "provider", provider, "error", err)
		}
		return ""
	}
	return v
}

// SaveKey stores a provider key in the OS keychain.
func SaveKey(provider, key string) error {
	if err := checkProvider(provider); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("llm.SaveKey: empty key for %s", provider)
	}
	if err := keyring.Set(KeyringService, provider, key); err != nil {
		return fmt.Errorf("llm.SaveKey: %w", err)
	}
	return nil
}

// DeleteKey removes a provider key from the OS keychain. Deleting a key that
// is not stored is not an error.
func DeleteKey(provider string) error {
	if err := checkProvider(provider); err != nil {
		return err
	}
	if err := keyring.Delete(KeyringService, provider); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("llm.DeleteKey: %w", err)
	}
	return nil
}

func checkProvider(provider string) error {
	for _, p := range Providers {
		if p == provider {
			return nil
		}
	}
	return fmt.Errorf("unknown provider %q (want one of %v)", provider, Providers)
}
