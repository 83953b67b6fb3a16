package implementation

import (
	"context"
	"errors"
	"fmt"

	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/internal/mapper"
	"ai-musictriage-be/internal/model"
	"ai-musictriage-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStateRepository persists session snapshots in a database, one row per
// session key. The upsert is a single statement, so readers never observe a
// half-written snapshot.
type GormStateRepository struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

var _ contract.SessionStateRepository = &GormStateRepository{}

func NewGormStateRepository(db *gorm.DB) *GormStateRepository {
	return &GormStateRepository{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *GormStateRepository) Load(ctx context.Context, key string) (*entity.Session, error) {
	var m model.SessionSnapshot
	if err := r.db.WithContext(ctx).First(&m, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", entity.ErrStateCorruption, err)
	}
	return r.mapper.FromSnapshot([]byte(m.Snapshot))
}

func (r *GormStateRepository) Save(ctx context.Context, session *entity.Session) error {
	raw, err := r.mapper.ToSnapshot(session)
	if err != nil {
		return fmt.Errorf("serialize session %s: %w", session.Key, err)
	}

	m := model.SessionSnapshot{
		Key:      session.Key,
		Snapshot: raw,
		Version:  mapper.SnapshotVersion,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"snapshot", "version", "updated_at"}),
	}).Create(&m).Error
}

func (r *GormStateRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&model.SessionSnapshot{}, "key = ?", key).Error
}

func (r *GormStateRepository) Exists(ctx context.Context, key string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.SessionSnapshot{}).Where("key = ?", key).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
