package classifier

import (
	"context"

	"ai-musictriage-be/internal/entity"
)

// Provider defines the contract for any classification backend. Suggestions
// are advisory: a failed call must be safe to retry and never leaves partial
// state behind.
type Provider interface {
	// SuggestBatch classifies tracks against the catalog. A track may yield
	// more than one suggestion when it fits several themes.
	SuggestBatch(ctx context.Context, tracks []*entity.Track, catalog *entity.ThemeCatalog, options ...Option) ([]*entity.Suggestion, error)

	// Identity returns the provider and model names that participate in the
	// suggestion-cache fingerprint.
	Identity() (provider string, model string)
}

// Option allows optional parameters like MaxTokens or a model override.
type Option func(*Options)

type Options struct {
	MaxTokens int
	Model     string
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Suggest classifies a single track. Convenience over SuggestBatch.
func Suggest(ctx context.Context, p Provider, track *entity.Track, catalog *entity.ThemeCatalog, options ...Option) ([]*entity.Suggestion, error) {
	return p.SuggestBatch(ctx, []*entity.Track{track}, catalog, options...)
}

// BuildOptions folds a call's options over the provider defaults.
func BuildOptions(defaults Options, options []Option) Options {
	for _, opt := range options {
		opt(&defaults)
	}
	return defaults
}
