package memory

import (
	"context"
	"sync"

	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/internal/mapper"
	"ai-musictriage-be/internal/repository/contract"
)

// StateRepository holds session snapshots in memory. It round-trips through
// the real snapshot codec so tests exercise the same serialization path as
// the durable media.
type StateRepository struct {
	mu        sync.Mutex
	snapshots map[string][]byte
	mapper    *mapper.SessionMapper
}

var _ contract.SessionStateRepository = &StateRepository{}

func NewStateRepository() *StateRepository {
	return &StateRepository{
		snapshots: make(map[string][]byte),
		mapper:    mapper.NewSessionMapper(),
	}
}

func (r *StateRepository) Load(ctx context.Context, key string) (*entity.Session, error) {
	r.mu.Lock()
	raw, ok := r.snapshots[key]
	r.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return r.mapper.FromSnapshot(raw)
}

func (r *StateRepository) Save(ctx context.Context, session *entity.Session) error {
	raw, err := r.mapper.ToSnapshot(session)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.snapshots[session.Key] = raw
	r.mu.Unlock()
	return nil
}

func (r *StateRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	delete(r.snapshots, key)
	r.mu.Unlock()
	return nil
}

func (r *StateRepository) Exists(ctx context.Context, key string) (bool, error) {
	r.mu.Lock()
	_, ok := r.snapshots[key]
	r.mu.Unlock()
	return ok, nil
}

// Corrupt overwrites a stored snapshot with garbage. Test helper.
func (r *StateRepository) Corrupt(key string) {
	r.mu.Lock()
	r.snapshots[key] = []byte("{not json")
	r.mu.Unlock()
}
