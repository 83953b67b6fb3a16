package dto

type SuggestionResponse struct {
	TrackId    string  `json:"track_id"`
	ThemeKey   string  `json:"theme_key"`
	ThemeName  string  `json:"theme_name"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type SuggestForCurrentResponse struct {
	// Suggestion is the highest-confidence guess, null when none is
	// available (provider failure or nothing matched).
	Suggestion *SuggestionResponse `json:"suggestion"`
	// Alternatives carry the remaining guesses when the track fits several
	// themes.
	Alternatives []*SuggestionResponse `json:"alternatives,omitempty"`
	FromCache    bool                  `json:"from_cache"`
	// ProviderDegraded is set when the classifier call failed; the session
	// continues without advice.
	ProviderDegraded bool `json:"provider_degraded"`
}

// PublishSyncRetryMessage is the payload on the playlist-sync retry topic.
type PublishSyncRetryMessage struct {
	TrackId  string `json:"track_id"`
	ThemeKey string `json:"theme_key"`
}
