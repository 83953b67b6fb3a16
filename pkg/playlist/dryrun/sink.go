// Package dryrun provides a no-op playlist sink for audit mode: it records
// intent without mutating remote state.
package dryrun

import (
	"context"
	"sync"

	"ai-musictriage-be/pkg/playlist"
)

type Mutation struct {
	ThemeKey string
	TrackId  string
}

type DryRunSink struct {
	mu      sync.Mutex
	Added   []Mutation
	Removed []Mutation
	// Fail, when set, makes every call return this error. Tests use it to
	// exercise pending-sync degradation.
	Fail error
}

var _ playlist.Sink = &DryRunSink{}

func New() *DryRunSink {
	return &DryRunSink{}
}

func (s *DryRunSink) Add(ctx context.Context, themeKey, trackId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	s.Added = append(s.Added, Mutation{ThemeKey: themeKey, TrackId: trackId})
	return nil
}

func (s *DryRunSink) Remove(ctx context.Context, themeKey, trackId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	s.Removed = append(s.Removed, Mutation{ThemeKey: themeKey, TrackId: trackId})
	return nil
}

// Contains reports whether (themeKey, trackId) is currently in the sink's
// simulated membership (added and not since removed).
func (s *DryRunSink) Contains(themeKey, trackId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	adds := 0
	for _, m := range s.Added {
		if m.ThemeKey == themeKey && m.TrackId == trackId {
			adds++
		}
	}
	removes := 0
	for _, m := range s.Removed {
		if m.ThemeKey == themeKey && m.TrackId == trackId {
			removes++
		}
	}
	return adds > removes
}
