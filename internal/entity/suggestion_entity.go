package entity

// Suggestion is an advisory theme guess attached to a track by the classifier.
// It is ephemeral: shown once, never persisted as session state, and it only
// influences the Decision the user later records.
type Suggestion struct {
	TrackId    string
	ThemeKey   string
	Confidence float64
	Reasoning  string
}
