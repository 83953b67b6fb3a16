package factory

import (
	"fmt"

	"ai-musictriage-be/pkg/classifier"
	"ai-musictriage-be/pkg/classifier/anthropic"
	"ai-musictriage-be/pkg/classifier/openai"
)

// NewProvider selects a classification backend by name. Model may be empty,
// in which case the provider default is used.
func NewProvider(provider, model, apiKey string) (classifier.Provider, error) {
	switch provider {
	case "openai":
		return openai.NewOpenAIProvider(apiKey, model), nil
	case "anthropic":
		return anthropic.NewAnthropicProvider(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", provider)
	}
}
