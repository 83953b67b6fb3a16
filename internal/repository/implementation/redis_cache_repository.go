package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "musictriage:suggestion:"

// RedisCacheRepository is an alternative durable suggestion cache for setups
// that already run redis. Keys carry no TTL; the contract says entries never
// expire automatically.
type RedisCacheRepository struct {
	rdb *redis.Client
}

var _ contract.SuggestionCacheRepository = &RedisCacheRepository{}

func NewRedisCacheRepository(rdb *redis.Client) *RedisCacheRepository {
	return &RedisCacheRepository{rdb: rdb}
}

func (r *RedisCacheRepository) Get(ctx context.Context, key string) ([]*entity.Suggestion, bool, error) {
	raw, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var items []cachedSuggestion
	if err := json.Unmarshal(raw, &items); err != nil {
		// Treat undecodable entries as absent; they get overwritten by the
		// next Put for this fingerprint.
		return nil, false, nil
	}

	suggestions := make([]*entity.Suggestion, len(items))
	for i, item := range items {
		suggestions[i] = &entity.Suggestion{
			TrackId:    item.TrackId,
			ThemeKey:   item.ThemeKey,
			Confidence: item.Confidence,
			Reasoning:  item.Reasoning,
		}
	}
	return suggestions, true, nil
}

func (r *RedisCacheRepository) Put(ctx context.Context, key string, suggestions []*entity.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}

	items := make([]cachedSuggestion, len(suggestions))
	for i, s := range suggestions {
		items[i] = cachedSuggestion{
			TrackId:    s.TrackId,
			ThemeKey:   s.ThemeKey,
			Confidence: s.Confidence,
			Reasoning:  s.Reasoning,
		}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("serialize suggestions: %w", err)
	}
	return r.rdb.Set(ctx, redisKeyPrefix+key, raw, 0).Err()
}

func (r *RedisCacheRepository) Clear(ctx context.Context) error {
	iter := r.rdb.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
