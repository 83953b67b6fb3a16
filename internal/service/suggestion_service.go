package service

import (
	"context"
	"sort"

	"ai-musictriage-be/internal/dto"
	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/internal/pkg/logger"
	"ai-musictriage-be/internal/repository/contract"
	"ai-musictriage-be/pkg/classifier"
	"ai-musictriage-be/pkg/fingerprint"
)

type ISuggestionService interface {
	// SuggestForCurrent returns the advisory classification for the track at
	// the cursor. Provider failures degrade to an absent suggestion; only
	// successful provider responses enter the cache.
	SuggestForCurrent(ctx context.Context) (*dto.SuggestForCurrentResponse, error)

	// Preload warms the cache for the upcoming tracks in one provider batch.
	// Safe to run concurrently with decides.
	Preload(ctx context.Context) error

	// ClearCache drops every cached suggestion, forcing fresh provider calls.
	ClearCache(ctx context.Context) error
}

type suggestionService struct {
	provider classifier.Provider
	cache    contract.SuggestionCacheRepository
	catalog  *entity.ThemeCatalog
	session  ISessionService
	notifier INotifierService
	logger   logger.ILogger

	// Cache keys are namespaced by provider identity and theme catalog so a
	// model or prompt change invalidates everything at once.
	namespace      string
	prefetchWindow int
	batchSize      int
}

func NewSuggestionService(
	provider classifier.Provider,
	cache contract.SuggestionCacheRepository,
	catalog *entity.ThemeCatalog,
	session ISessionService,
	notifier INotifierService,
	prefetchWindow int,
	batchSize int,
	sysLogger logger.ILogger,
) ISuggestionService {
	if batchSize <= 0 {
		batchSize = 10
	}
	providerName, model := provider.Identity()
	return &suggestionService{
		provider:       provider,
		cache:          cache,
		catalog:        catalog,
		session:        session,
		notifier:       notifier,
		logger:         sysLogger,
		namespace:      fingerprint.Namespace(providerName, model, catalog, classifier.SystemPrompt),
		prefetchWindow: prefetchWindow,
		batchSize:      batchSize,
	}
}

func (s *suggestionService) SuggestForCurrent(ctx context.Context) (*dto.SuggestForCurrentResponse, error) {
	track, ok := s.session.CurrentTrack()
	if !ok {
		return &dto.SuggestForCurrentResponse{}, nil
	}

	key := fingerprint.TrackKey(s.namespace, track)
	cached, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Suggestion", "Cache read failed, falling through to provider", map[string]interface{}{
			"track_id": track.Id,
			"error":    err.Error(),
		})
	}
	if hit {
		return s.toResponse(cached, true, false), nil
	}

	suggestions, err := classifier.Suggest(ctx, s.provider, track, s.catalog)
	if err != nil {
		s.logger.Warn("Suggestion", "Provider call failed, suggestion degraded", map[string]interface{}{
			"track_id": track.Id,
			"error":    err.Error(),
		})
		return &dto.SuggestForCurrentResponse{ProviderDegraded: true}, nil
	}

	forTrack := s.filterForTrack(track.Id, suggestions)
	if err := s.cache.Put(ctx, key, forTrack); err != nil {
		s.logger.Warn("Suggestion", "Cache write failed", map[string]interface{}{
			"track_id": track.Id,
			"error":    err.Error(),
		})
	}
	return s.toResponse(forTrack, false, false), nil
}

func (s *suggestionService) Preload(ctx context.Context) error {
	upcoming := s.session.UpcomingTracks(s.prefetchWindow)
	if len(upcoming) == 0 {
		return nil
	}

	var misses []*entity.Track
	for _, track := range upcoming {
		key := fingerprint.TrackKey(s.namespace, track)
		if _, hit, _ := s.cache.Get(ctx, key); !hit {
			misses = append(misses, track)
		}
	}
	if len(misses) == 0 {
		return nil
	}

	for start := 0; start < len(misses); start += s.batchSize {
		end := start + s.batchSize
		if end > len(misses) {
			end = len(misses)
		}
		batch := misses[start:end]

		suggestions, err := s.provider.SuggestBatch(ctx, batch, s.catalog)
		if err != nil {
			s.logger.Warn("Suggestion", "Prefetch batch failed", map[string]interface{}{
				"tracks": len(batch),
				"error":  err.Error(),
			})
			return err
		}

		for _, track := range batch {
			forTrack := s.filterForTrack(track.Id, suggestions)
			key := fingerprint.TrackKey(s.namespace, track)
			if err := s.cache.Put(ctx, key, forTrack); err != nil {
				s.logger.Warn("Suggestion", "Cache write failed during prefetch", map[string]interface{}{
					"track_id": track.Id,
					"error":    err.Error(),
				})
				continue
			}
			if s.notifier != nil && len(forTrack) > 0 {
				s.notifier.Notify("suggestion_ready", dto.SuggestionResponse{
					TrackId:  track.Id,
					ThemeKey: forTrack[0].ThemeKey,
				})
			}
		}
	}
	return nil
}

func (s *suggestionService) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

// filterForTrack keeps only well-formed suggestions addressed to the given
// track. Hallucinated track ids or theme keys are dropped, not errors.
func (s *suggestionService) filterForTrack(trackId string, suggestions []*entity.Suggestion) []*entity.Suggestion {
	var out []*entity.Suggestion
	for _, sg := range suggestions {
		if sg.TrackId != trackId {
			continue
		}
		if !s.catalog.Has(sg.ThemeKey) {
			s.logger.Warn("Suggestion", "Provider suggested unknown theme, dropped", map[string]interface{}{
				"track_id": trackId,
				"theme":    sg.ThemeKey,
			})
			continue
		}
		out = append(out, sg)
	}
	return out
}

func (s *suggestionService) toResponse(suggestions []*entity.Suggestion, fromCache, degraded bool) *dto.SuggestForCurrentResponse {
	resp := &dto.SuggestForCurrentResponse{
		FromCache:        fromCache,
		ProviderDegraded: degraded,
	}
	if len(suggestions) == 0 {
		return resp
	}

	ranked := make([]*entity.Suggestion, len(suggestions))
	copy(ranked, suggestions)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})

	resp.Suggestion = s.toSuggestionDto(ranked[0])
	for _, sg := range ranked[1:] {
		resp.Alternatives = append(resp.Alternatives, s.toSuggestionDto(sg))
	}
	return resp
}

func (s *suggestionService) toSuggestionDto(sg *entity.Suggestion) *dto.SuggestionResponse {
	themeName := sg.ThemeKey
	if theme, ok := s.catalog.Get(sg.ThemeKey); ok {
		themeName = theme.Name
	}
	return &dto.SuggestionResponse{
		TrackId:    sg.TrackId,
		ThemeKey:   sg.ThemeKey,
		ThemeName:  themeName,
		Confidence: sg.Confidence,
		Reasoning:  sg.Reasoning,
	}
}
