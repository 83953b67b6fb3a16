package entity

import "errors"

// Session engine error taxonomy. Collaborator failures (classifier, playlist
// sink) are translated at the service boundary and never surface as engine
// errors; only these kinds cross it.
var (
	// ErrStateCorruption means persisted state is unreadable or structurally
	// invalid. The engine never discards it on its own; the caller must
	// explicitly confirm a fresh start.
	ErrStateCorruption = errors.New("persisted session state is corrupted")

	// ErrCursorMismatch means the caller referenced a track that is not the
	// current one, usually stale UI state. State is left unchanged.
	ErrCursorMismatch = errors.New("track is not the current item")

	// ErrUnknownTheme means a decision referenced a theme outside the catalog.
	ErrUnknownTheme = errors.New("unknown theme key")

	// ErrNothingToUndo means undo was called with the cursor at zero.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNoActiveSession means an operation needs a started session.
	ErrNoActiveSession = errors.New("no active session")

	// ErrSessionNotComplete means export was requested mid-session without
	// forcing a partial export.
	ErrSessionNotComplete = errors.New("session is not complete")

	// ErrNotAuthenticated means no Spotify login has completed yet, so
	// library and playlist calls have no token to act with.
	ErrNotAuthenticated = errors.New("not authenticated with spotify")
)
