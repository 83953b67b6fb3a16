package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"ai-musictriage-be/internal/entity"
)

// SnapshotVersion guards the persisted layout. A snapshot with a different
// version is treated as corrupted rather than silently reinterpreted.
const SnapshotVersion = 1

type decisionDoc struct {
	Seq         int64      `json:"seq"`
	TrackId     string     `json:"track_id"`
	TrackName   string     `json:"track_name"`
	Artist      string     `json:"artist"`
	ThemeKeys   []string   `json:"theme_keys"`
	Skipped     bool       `json:"skipped"`
	Status      string     `json:"status"`
	DecidedAt   time.Time  `json:"decided_at"`
	UndoneAt    *time.Time `json:"undone_at,omitempty"`
	SyncedKeys  []string   `json:"synced_keys,omitempty"`
	PendingKeys []string   `json:"pending_keys,omitempty"`
}

type sessionDoc struct {
	Version   int           `json:"version"`
	Key       string        `json:"key"`
	TrackIds  []string      `json:"track_ids"`
	Cursor    int           `json:"cursor"`
	NextSeq   int64         `json:"next_seq"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Log       []decisionDoc `json:"log"`
}

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToSnapshot(s *entity.Session) ([]byte, error) {
	doc := sessionDoc{
		Version:   SnapshotVersion,
		Key:       s.Key,
		TrackIds:  s.TrackIds,
		Cursor:    s.Cursor,
		NextSeq:   s.NextSeq,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Log:       make([]decisionDoc, len(s.Log)),
	}
	for i, d := range s.Log {
		doc.Log[i] = decisionDoc{
			Seq:         d.Seq,
			TrackId:     d.TrackId,
			TrackName:   d.TrackName,
			Artist:      d.Artist,
			ThemeKeys:   d.ThemeKeys,
			Skipped:     d.Skipped,
			Status:      string(d.Status),
			DecidedAt:   d.DecidedAt,
			UndoneAt:    d.UndoneAt,
			SyncedKeys:  d.SyncedKeys,
			PendingKeys: d.PendingKeys,
		}
	}
	return json.Marshal(doc)
}

// FromSnapshot decodes and structurally validates a snapshot. Every failure
// wraps entity.ErrStateCorruption so callers can require explicit user
// confirmation before discarding.
func (m *SessionMapper) FromSnapshot(raw []byte) (*entity.Session, error) {
	var doc sessionDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrStateCorruption, err)
	}
	if doc.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported snapshot version %d", entity.ErrStateCorruption, doc.Version)
	}

	session := &entity.Session{
		Key:       doc.Key,
		TrackIds:  doc.TrackIds,
		Cursor:    doc.Cursor,
		NextSeq:   doc.NextSeq,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
		Log:       make([]*entity.Decision, len(doc.Log)),
	}
	if session.TrackIds == nil {
		session.TrackIds = []string{}
	}

	for i, d := range doc.Log {
		status := entity.DecisionStatus(d.Status)
		if status != entity.DecisionApplied && status != entity.DecisionUndone && status != entity.DecisionArchived {
			return nil, fmt.Errorf("%w: log entry %d has status %q", entity.ErrStateCorruption, i, d.Status)
		}
		session.Log[i] = &entity.Decision{
			Seq:         d.Seq,
			TrackId:     d.TrackId,
			TrackName:   d.TrackName,
			Artist:      d.Artist,
			ThemeKeys:   d.ThemeKeys,
			Skipped:     d.Skipped,
			Status:      status,
			DecidedAt:   d.DecidedAt,
			UndoneAt:    d.UndoneAt,
			SyncedKeys:  d.SyncedKeys,
			PendingKeys: d.PendingKeys,
		}
	}

	if err := validate(session); err != nil {
		return nil, err
	}
	return session, nil
}

func validate(s *entity.Session) error {
	if s.Cursor < 0 || s.Cursor > len(s.TrackIds) {
		return fmt.Errorf("%w: cursor %d outside [0,%d]", entity.ErrStateCorruption, s.Cursor, len(s.TrackIds))
	}

	for i, trackId := range s.TrackIds {
		effective := s.EffectiveDecision(trackId)
		if i < s.Cursor && effective == nil {
			return fmt.Errorf("%w: track %s before cursor has no effective decision", entity.ErrStateCorruption, trackId)
		}
		if i >= s.Cursor && effective != nil {
			return fmt.Errorf("%w: track %s at/after cursor has an effective decision", entity.ErrStateCorruption, trackId)
		}
	}

	var lastSeq int64
	for i, d := range s.Log {
		if d.Seq <= lastSeq {
			return fmt.Errorf("%w: log entry %d breaks sequence ordering", entity.ErrStateCorruption, i)
		}
		lastSeq = d.Seq
	}
	if s.NextSeq <= lastSeq {
		return fmt.Errorf("%w: next_seq %d not beyond last log entry", entity.ErrStateCorruption, s.NextSeq)
	}
	return nil
}
