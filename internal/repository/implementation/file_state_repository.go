package implementation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/internal/mapper"
	"ai-musictriage-be/internal/repository/contract"
)

// FileStateRepository keeps one snapshot file per session key under a data
// directory. Saves go through a temp file plus rename so an interrupted
// write can never truncate the previous snapshot.
type FileStateRepository struct {
	dir    string
	mapper *mapper.SessionMapper
	mu     sync.Mutex
}

var _ contract.SessionStateRepository = &FileStateRepository{}

func NewFileStateRepository(dir string) *FileStateRepository {
	return &FileStateRepository{
		dir:    dir,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *FileStateRepository) path(key string) string {
	// Session keys contain ':' which is unfriendly to filesystems.
	safe := strings.NewReplacer(":", "_", "/", "_", "\\", "_").Replace(key)
	return filepath.Join(r.dir, "session-"+safe+".json")
}

func (r *FileStateRepository) Load(ctx context.Context, key string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := os.ReadFile(r.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", entity.ErrStateCorruption, err)
	}
	return r.mapper.FromSnapshot(raw)
}

func (r *FileStateRepository) Save(ctx context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := r.mapper.ToSnapshot(session)
	if err != nil {
		return fmt.Errorf("serialize session %s: %w", session.Key, err)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	target := r.path(session.Key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (r *FileStateRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (r *FileStateRepository) Exists(ctx context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := os.Stat(r.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
