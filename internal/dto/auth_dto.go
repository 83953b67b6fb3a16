package dto

type LoginURLResponse struct {
	URL string `json:"url"`
}

type LoginResponse struct {
	Token         string `json:"token"`
	SpotifyUserId string `json:"spotify_user_id"`
	DisplayName   string `json:"display_name"`
}

type ThemeResponse struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Shortcut    string `json:"shortcut"`
}
