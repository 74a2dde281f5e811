package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

const geminiDefaultModel = "gemini-2.0-flash"

// GeminiProvider implements Provider using the Gemini API.
type GeminiProvider struct {
	client *genai.Client
}

// NewGemini creates a Gemini provider. An empty baseURL uses the public endpoint.
func NewGemini(ctx context.Context, apiKey, baseURL string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (g *GeminiProvider) Name() string { return "gemini" }

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, s Settings) (string, error) {
	model := s.Model
	if model == "" {
		model = geminiDefaultModel
	}

	maxTokens := s.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	temp := float32(s.Temperature)
	config := &genai.GenerateContentConfig{
		MaxOutputTokens:  int32(maxTokens),
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
	if s.Seed != nil {
		seed := int32(*s.Seed)
		config.Seed = &seed
	}
	if s.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: s.System}},
		}
	}
	if s.Schema != nil {
		config.ResponseSchema = buildGeminiSchema(s.Schema.Definition)
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}

	result, err := g.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", mapGeminiError(err)
	}
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == "MAX_TOKENS" {
		return "", &ErrMaxTokensExceeded{Provider: g.Name()}
	}

	text := result.Text()
	if text == "" {
		return "", &ErrInvalidResponse{Err: fmt.Errorf("gemini: no text content in response")}
	}
	return text, nil
}

// buildGeminiSchema converts a JSON Schema definition to a genai.Schema.
// Gemini does not accept additionalProperties, so it is dropped.
func buildGeminiSchema(def map[string]any) *genai.Schema {
	schema := &genai.Schema{}

	if t, ok := def["type"].(string); ok {
		schema.Type = mapGeminiType(t)
	}
	if desc, ok := def["description"].(string); ok {
		schema.Description = desc
	}
	if v, ok := toFloat(def["minimum"]); ok {
		schema.Minimum = &v
	}
	if v, ok := toFloat(def["maximum"]); ok {
		schema.Maximum = &v
	}

	if props, ok := def["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for k, v := range props {
			if propDef, ok := v.(map[string]any); ok {
				schema.Properties[k] = buildGeminiSchema(propDef)
			}
		}
	}

	switch req := def["required"].(type) {
	case []string:
		schema.Required = append(schema.Required, req...)
	case []any:
		for _, r := range req {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}

	if items, ok := def["items"].(map[string]any); ok {
		schema.Items = buildGeminiSchema(items)
	}

	return schema
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func mapGeminiType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

func mapGeminiError(err error) error {
	if code, ok := geminiStatus(err); ok {
		switch {
		case code == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case code >= 500:
			return &ErrProviderUnavailable{Err: err}
		}
		return fmt.Errorf("gemini: %w", err)
	}
	return &ErrProviderUnavailable{Err: err}
}

// geminiStatus extracts the HTTP status from an API error. The client returns
// APIError by value.
func geminiStatus(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code, true
	}
	return 0, false
}
