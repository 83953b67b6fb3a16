package playlist

import (
	"context"
)

// Sink is the system of record for theme playlists. The dry-run
// implementation must be substitutable transparently: the engine never
// special-cases audit mode.
type Sink interface {
	Add(ctx context.Context, themeKey, trackId string) error
	Remove(ctx context.Context, themeKey, trackId string) error
}
