package spotify

import (
	"context"
	"fmt"
	"strings"

	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/pkg/library"
	"ai-musictriage-be/pkg/spotify"
)

const pageSize = 50

// SpotifySource fetches the user's saved tracks ("liked songs").
type SpotifySource struct {
	client *spotify.Client
	// Resolved per call: the user id is only known after the OAuth
	// callback lands, which happens after construction.
	userId func() string
}

var _ library.Source = &SpotifySource{}

func NewSpotifySource(client *spotify.Client, userId func() string) *SpotifySource {
	return &SpotifySource{
		client: client,
		userId: userId,
	}
}

func (s *SpotifySource) Key() string {
	return "liked:" + s.userId()
}

func (s *SpotifySource) FetchAll(ctx context.Context) ([]*entity.Track, error) {
	var tracks []*entity.Track
	offset := 0

	for {
		page, err := s.client.SavedTracks(ctx, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("fetch saved tracks at offset %d: %w", offset, err)
		}
		if len(page.Items) == 0 {
			break
		}

		for _, item := range page.Items {
			tracks = append(tracks, toTrack(item.Track))
		}

		offset += pageSize
		if offset >= page.Total {
			break
		}
	}

	return tracks, nil
}

func toTrack(t spotify.TrackObject) *entity.Track {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}

	var coverURL *string
	if len(t.Album.Images) > 0 && t.Album.Images[0].URL != "" {
		u := t.Album.Images[0].URL
		coverURL = &u
	}

	return &entity.Track{
		Id:            t.Id,
		Name:          t.Name,
		Artist:        strings.Join(names, ", "),
		Album:         t.Album.Name,
		Popularity:    t.Popularity,
		DurationMs:    t.DurationMs,
		ReleaseDate:   t.Album.ReleaseDate,
		Explicit:      t.Explicit,
		AlbumImageURL: coverURL,
		PreviewURL:    t.PreviewURL,
		Genres:        []string{},
	}
}
