package spotify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/pkg/playlist"
	"ai-musictriage-be/pkg/spotify"

	"github.com/cenkalti/backoff/v5"
)

const (
	playlistNamePrefix = "\U0001f3b5 " // 🎵
	maxAttempts        = 3
	playlistPageSize   = 50
	itemsPageSize      = 100
)

// SpotifySink maintains one private playlist per theme, created lazily on
// first add. Calls are retried with bounded exponential backoff; a failure
// after the attempt budget degrades to "pending" at the engine level instead
// of blocking the decision.
type SpotifySink struct {
	client  *spotify.Client
	catalog *entity.ThemeCatalog

	mu sync.Mutex
	// theme key -> playlist id, resolved once per process
	playlistIds map[string]string
}

var _ playlist.Sink = &SpotifySink{}

func NewSpotifySink(client *spotify.Client, catalog *entity.ThemeCatalog) *SpotifySink {
	return &SpotifySink{
		client:      client,
		catalog:     catalog,
		playlistIds: make(map[string]string),
	}
}

func (s *SpotifySink) Add(ctx context.Context, themeKey, trackId string) error {
	return s.retry(ctx, func() error {
		playlistId, err := s.getOrCreatePlaylist(ctx, themeKey)
		if err != nil {
			return err
		}

		member, err := s.trackInPlaylist(ctx, playlistId, trackId)
		if err != nil {
			return err
		}
		if member {
			// Idempotent: a retried add must not duplicate the track.
			return nil
		}
		return s.client.AddToPlaylist(ctx, playlistId, []string{trackId})
	})
}

func (s *SpotifySink) Remove(ctx context.Context, themeKey, trackId string) error {
	s.mu.Lock()
	playlistId, ok := s.playlistIds[themeKey]
	s.mu.Unlock()
	if !ok {
		// Nothing was ever added through this process; nothing to remove.
		return nil
	}

	return s.retry(ctx, func() error {
		return s.client.RemoveFromPlaylist(ctx, playlistId, []string{trackId})
	})
}

func (s *SpotifySink) retry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, op()
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(maxAttempts))
	return err
}

func (s *SpotifySink) getOrCreatePlaylist(ctx context.Context, themeKey string) (string, error) {
	s.mu.Lock()
	if id, ok := s.playlistIds[themeKey]; ok {
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	theme, ok := s.catalog.Get(themeKey)
	if !ok {
		return "", backoff.Permanent(fmt.Errorf("theme %s not in catalog", themeKey))
	}
	name := playlistNamePrefix + theme.Name

	id, err := s.findPlaylist(ctx, name)
	if err != nil {
		return "", err
	}
	if id == "" {
		user, err := s.client.CurrentUser(ctx)
		if err != nil {
			return "", err
		}
		created, err := s.client.CreatePlaylist(ctx, user.Id, name, theme.Description, false)
		if err != nil {
			return "", err
		}
		id = created.Id
	}

	s.mu.Lock()
	s.playlistIds[themeKey] = id
	s.mu.Unlock()
	return id, nil
}

func (s *SpotifySink) findPlaylist(ctx context.Context, name string) (string, error) {
	offset := 0
	for {
		page, err := s.client.CurrentUserPlaylists(ctx, playlistPageSize, offset)
		if err != nil {
			return "", err
		}
		if len(page.Items) == 0 {
			return "", nil
		}
		for _, pl := range page.Items {
			if pl.Name == name {
				return pl.Id, nil
			}
		}
		offset += playlistPageSize
		if offset >= page.Total {
			return "", nil
		}
	}
}

func (s *SpotifySink) trackInPlaylist(ctx context.Context, playlistId, trackId string) (bool, error) {
	offset := 0
	for {
		page, err := s.client.PlaylistItems(ctx, playlistId, itemsPageSize, offset)
		if err != nil {
			return false, err
		}
		if len(page.Items) == 0 {
			return false, nil
		}
		for _, item := range page.Items {
			if item.Track.Id == trackId {
				return true, nil
			}
		}
		offset += itemsPageSize
		if offset >= page.Total {
			return false, nil
		}
	}
}
