package contract

import (
	"context"

	"ai-musictriage-be/internal/entity"
)

// SuggestionCacheRepository maps a fingerprint to previously computed
// suggestions (a track fitting several themes yields one entry per theme).
// Entries never expire on their own; invalidation happens by fingerprint
// change or explicit Clear. Writes are last-write-wins per key: entries are
// derived, not authoritative.
type SuggestionCacheRepository interface {
	Get(ctx context.Context, key string) ([]*entity.Suggestion, bool, error)
	Put(ctx context.Context, key string, suggestions []*entity.Suggestion) error
	Clear(ctx context.Context) error
}
