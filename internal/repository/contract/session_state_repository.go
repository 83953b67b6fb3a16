package contract

import (
	"context"

	"ai-musictriage-be/internal/entity"
)

// SessionStateRepository durably persists the session aggregate as a single
// atomic unit. Save must never leave a partially written snapshot: media
// either replace the previous snapshot wholesale (write-new-then-rename) or
// upsert one row transactionally.
//
// Load returns (nil, nil) when no state exists for the key, and an error
// wrapping entity.ErrStateCorruption when state exists but is unreadable or
// structurally invalid.
type SessionStateRepository interface {
	Load(ctx context.Context, key string) (*entity.Session, error)
	Save(ctx context.Context, session *entity.Session) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
