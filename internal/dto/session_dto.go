package dto

import "time"

type StartSessionRequest struct {
	// DiscardCorrupted confirms throwing away unreadable persisted state.
	// Without it a corrupted snapshot fails the start so nothing is lost
	// silently.
	DiscardCorrupted bool `json:"discard_corrupted"`
}

type TrackResponse struct {
	Id            string  `json:"id"`
	Name          string  `json:"name"`
	Artist        string  `json:"artist"`
	Album         string  `json:"album"`
	ReleaseDate   string  `json:"release_date"`
	DurationMs    int     `json:"duration_ms"`
	Explicit      bool    `json:"explicit"`
	Popularity    *int    `json:"popularity"`
	AlbumImageURL *string `json:"album_image_url"`
	PreviewURL    *string `json:"preview_url"`
}

type DriftResponse struct {
	// RemovedTrackIds disappeared upstream since the last run; their past
	// decisions stay in the log and the export.
	RemovedTrackIds []string `json:"removed_track_ids"`
	// AddedTrackIds were appended to the end of the iteration order.
	AddedTrackIds []string `json:"added_track_ids"`
}

type SessionStatusResponse struct {
	Key         string    `json:"key"`
	State       string    `json:"state"`
	Cursor      int       `json:"cursor"`
	TotalTracks int       `json:"total_tracks"`
	Decided     int       `json:"decided"`
	Skipped     int       `json:"skipped"`
	Remaining   int       `json:"remaining"`
	PendingSync int       `json:"pending_sync"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type StartSessionResponse struct {
	Session SessionStatusResponse `json:"session"`
	Resumed bool                  `json:"resumed"`
	Drift   *DriftResponse        `json:"drift,omitempty"`
}

type CurrentTrackResponse struct {
	Complete bool           `json:"complete"`
	Track    *TrackResponse `json:"track,omitempty"`
	Position int            `json:"position"`
	Total    int            `json:"total"`
}

type DecideRequest struct {
	TrackId string `json:"track_id" validate:"required"`
	// Empty theme keys means "skip".
	ThemeKeys []string `json:"theme_keys"`
}

type DecideResponse struct {
	Seq       int64    `json:"seq"`
	TrackId   string   `json:"track_id"`
	ThemeKeys []string `json:"theme_keys"`
	Skipped   bool     `json:"skipped"`
	// PendingThemeKeys had a failing playlist add; the decision still
	// committed locally and the keys are flagged for retry.
	PendingThemeKeys []string `json:"pending_theme_keys,omitempty"`
	Cursor           int      `json:"cursor"`
	State            string   `json:"state"`
}

type UndoResponse struct {
	TrackId   string   `json:"track_id"`
	ThemeKeys []string `json:"theme_keys"`
	Cursor    int      `json:"cursor"`
	State     string   `json:"state"`
}

type ExportRow struct {
	TrackId   string   `json:"track_id"`
	TrackName string   `json:"track_name"`
	Artist    string   `json:"artist"`
	Themes    []string `json:"themes"`
	Skipped   bool     `json:"skipped"`
}
