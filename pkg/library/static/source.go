// Package static provides a fixed in-memory track source for simulation runs
// and tests.
package static

import (
	"context"

	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/pkg/library"
)

type StaticSource struct {
	SessionKey string
	Tracks     []*entity.Track
}

var _ library.Source = &StaticSource{}

func New(sessionKey string, tracks []*entity.Track) *StaticSource {
	return &StaticSource{
		SessionKey: sessionKey,
		Tracks:     tracks,
	}
}

func (s *StaticSource) Key() string {
	return s.SessionKey
}

func (s *StaticSource) FetchAll(ctx context.Context) ([]*entity.Track, error) {
	return s.Tracks, nil
}
