package memory

import (
	"context"

	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// SuggestionCache is the in-process cache layer. Entries never expire on
// their own: invalidation is by fingerprint change or explicit Clear.
type SuggestionCache struct {
	cache *cache.Cache
}

var _ contract.SuggestionCacheRepository = &SuggestionCache{}

func NewSuggestionCache() *SuggestionCache {
	return &SuggestionCache{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *SuggestionCache) Get(ctx context.Context, key string) ([]*entity.Suggestion, bool, error) {
	if x, found := r.cache.Get(key); found {
		return x.([]*entity.Suggestion), true, nil
	}
	return nil, false, nil
}

func (r *SuggestionCache) Put(ctx context.Context, key string, suggestions []*entity.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}
	r.cache.Set(key, suggestions, cache.NoExpiration)
	return nil
}

func (r *SuggestionCache) Clear(ctx context.Context) error {
	r.cache.Flush()
	return nil
}
