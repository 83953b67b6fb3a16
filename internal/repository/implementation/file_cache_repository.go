package implementation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/internal/repository/contract"
)

type cachedSuggestion struct {
	TrackId    string  `json:"track_id"`
	ThemeKey   string  `json:"theme_key"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type cacheFile struct {
	Entries map[string][]cachedSuggestion `json:"entries"`
}

// FileCacheRepository is the durable suggestion cache: classifier results
// survive restarts so the same track is never re-billed. A corrupt cache
// file is discarded silently; entries are derived, not authoritative.
type FileCacheRepository struct {
	path string

	mu      sync.Mutex
	entries map[string][]cachedSuggestion
}

var _ contract.SuggestionCacheRepository = &FileCacheRepository{}

func NewFileCacheRepository(path string) *FileCacheRepository {
	r := &FileCacheRepository{
		path:    path,
		entries: make(map[string][]cachedSuggestion),
	}
	r.load()
	return r
}

func (r *FileCacheRepository) Get(ctx context.Context, key string) ([]*entity.Suggestion, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, ok := r.entries[key]
	if !ok {
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

func (r *FileCacheRepository) Put(ctx context.Context, key string, suggestions []*entity.Suggestion) error {
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

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = items
	return r.save()
}

func (r *FileCacheRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string][]cachedSuggestion)
	return r.save()
}

func (r *FileCacheRepository) load() {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return
	}
	var doc cacheFile
	if err := json.Unmarshal(raw, &doc); err != nil || doc.Entries == nil {
		return
	}
	r.entries = doc.Entries
}

func (r *FileCacheRepository) save() error {
	raw, err := json.Marshal(cacheFile{Entries: r.entries})
	if err != nil {
		return fmt.Errorf("serialize suggestion cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}
