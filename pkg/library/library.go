package library

import (
	"context"

	"ai-musictriage-be/internal/entity"
)

// Source produces the ordered track list for a session. Implementations may
// paginate internally but must yield the stable full list before the session
// starts iterating.
type Source interface {
	FetchAll(ctx context.Context) ([]*entity.Track, error)

	// Key identifies the item-set/user context this source yields, used as
	// the session key so one session exists per context.
	Key() string
}
