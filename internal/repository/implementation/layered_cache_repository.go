package implementation

import (
	"context"

	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/internal/repository/contract"
)

// LayeredCacheRepository fronts a durable cache with a fast in-memory one.
// Reads fall through and backfill; writes go to both. Safe under concurrent
// prefetch because entries are independent per fingerprint and writes are
// idempotent.
type LayeredCacheRepository struct {
	front contract.SuggestionCacheRepository
	back  contract.SuggestionCacheRepository
}

var _ contract.SuggestionCacheRepository = &LayeredCacheRepository{}

func NewLayeredCacheRepository(front, back contract.SuggestionCacheRepository) *LayeredCacheRepository {
	return &LayeredCacheRepository{
		front: front,
		back:  back,
	}
}

func (r *LayeredCacheRepository) Get(ctx context.Context, key string) ([]*entity.Suggestion, bool, error) {
	if suggestions, found, err := r.front.Get(ctx, key); err == nil && found {
		return suggestions, true, nil
	}

	suggestions, found, err := r.back.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}
	// Backfill the front layer; a failure here only costs a future re-read.
	_ = r.front.Put(ctx, key, suggestions)
	return suggestions, true, nil
}

func (r *LayeredCacheRepository) Put(ctx context.Context, key string, suggestions []*entity.Suggestion) error {
	if err := r.front.Put(ctx, key, suggestions); err != nil {
		return err
	}
	return r.back.Put(ctx, key, suggestions)
}

func (r *LayeredCacheRepository) Clear(ctx context.Context) error {
	if err := r.front.Clear(ctx); err != nil {
		return err
	}
	return r.back.Clear(ctx)
}
