package entity

import "time"

// DecisionStatus tags a log entry as live or reverted. Undone entries stay in
// the log so the audit trail can distinguish "never happened" from "happened
// then reverted".
type DecisionStatus string

const (
	DecisionApplied DecisionStatus = "APPLIED"
	DecisionUndone  DecisionStatus = "UNDONE"
	// DecisionArchived marks decisions whose track dropped out of the
	// library. They no longer count toward the cursor but survive for
	// export.
	DecisionArchived DecisionStatus = "ARCHIVED"
)

// Decision is the atomic unit of session state: the user's committed theme
// assignment (or skip) for one track.
type Decision struct {
	Seq       int64
	TrackId   string
	TrackName string
	Artist    string
	// Deduplicated theme keys in the order the user picked them. Empty means
	// the track was skipped.
	ThemeKeys []string
	Skipped   bool
	Status    DecisionStatus
	DecidedAt time.Time
	UndoneAt  *time.Time
	// SyncedKeys are theme keys whose playlist add committed remotely.
	// PendingKeys are keys whose add failed and await retry; the decision
	// still counts locally.
	SyncedKeys  []string
	PendingKeys []string
}

func (d *Decision) HasTheme(key string) bool {
	for _, k := range d.ThemeKeys {
		if k == key {
			return true
		}
	}
	return false
}

// MarkSynced moves a theme key from pending to synced after a successful
// retry. No-op when the key is already synced.
func (d *Decision) MarkSynced(key string) {
	for _, k := range d.SyncedKeys {
		if k == key {
			return
		}
	}
	pending := d.PendingKeys[:0]
	for _, k := range d.PendingKeys {
		if k != key {
			pending = append(pending, k)
		}
	}
	d.PendingKeys = pending
	d.SyncedKeys = append(d.SyncedKeys, key)
}
