package entity

import "time"

// SessionState is derived from the cursor, never stored.
type SessionState string

const (
	SessionEmpty    SessionState = "EMPTY"
	SessionActive   SessionState = "ACTIVE"
	SessionComplete SessionState = "COMPLETE"
)

// Session is the aggregate for one classification run: the ordered track list
// fixed at start, the cursor pointing at the next undecided track, and the
// chronological decision log (including undone entries).
//
// Invariants:
//   - cursor is always in [0, len(TrackIds)]; cursor == len(TrackIds) means
//     the session is complete
//   - every track before the cursor has exactly one effective decision
//     (possibly a skip); every track at or after it has none
type Session struct {
	Key       string
	TrackIds  []string
	Cursor    int
	Log       []*Decision
	NextSeq   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewSession(key string, trackIds []string) *Session {
	now := time.Now()
	return &Session{
		Key:       key,
		TrackIds:  trackIds,
		Cursor:    0,
		Log:       make([]*Decision, 0),
		NextSeq:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) State() SessionState {
	if len(s.TrackIds) == 0 {
		return SessionEmpty
	}
	if s.Cursor >= len(s.TrackIds) {
		return SessionComplete
	}
	return SessionActive
}

// CurrentTrackId returns the id at the cursor, or "" when the session is
// complete or empty.
func (s *Session) CurrentTrackId() string {
	if s.Cursor < 0 || s.Cursor >= len(s.TrackIds) {
		return ""
	}
	return s.TrackIds[s.Cursor]
}

// EffectiveDecision returns the latest non-undone log entry for a track, or
// nil when the track has no live decision.
func (s *Session) EffectiveDecision(trackId string) *Decision {
	for i := len(s.Log) - 1; i >= 0; i-- {
		d := s.Log[i]
		if d.TrackId == trackId && d.Status == DecisionApplied {
			return d
		}
	}
	return nil
}

// LastApplied returns the most recent live decision, the only one undo may
// target, or nil when there is nothing to undo.
func (s *Session) LastApplied() *Decision {
	for i := len(s.Log) - 1; i >= 0; i-- {
		if s.Log[i].Status == DecisionApplied {
			return s.Log[i]
		}
	}
	return nil
}

// Append records a new live decision and advances the cursor.
func (s *Session) Append(d *Decision) {
	d.Seq = s.NextSeq
	s.NextSeq++
	s.Log = append(s.Log, d)
	s.Cursor++
	s.UpdatedAt = time.Now()
}

// Revert marks a decision undone and steps the cursor back one track.
func (s *Session) Revert(d *Decision) {
	now := time.Now()
	d.Status = DecisionUndone
	d.UndoneAt = &now
	s.Cursor--
	s.UpdatedAt = now
}

func (s *Session) DecidedCount() int {
	return s.Cursor
}

func (s *Session) RemainingCount() int {
	return len(s.TrackIds) - s.Cursor
}

// PendingSync reports the live decisions that still have playlist adds
// awaiting retry.
func (s *Session) PendingSync() []*Decision {
	var pending []*Decision
	for _, d := range s.Log {
		if d.Status == DecisionApplied && len(d.PendingKeys) > 0 {
			pending = append(pending, d)
		}
	}
	return pending
}
