package spotify

import (
	"golang.org/x/oauth2"
	spotifyauth "golang.org/x/oauth2/spotify"
)

// Scope covers library reads plus private/public playlist writes.
const Scope = "user-library-read playlist-modify-public playlist-modify-private playlist-read-private"

func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"user-library-read",
			"playlist-modify-public",
			"playlist-modify-private",
			"playlist-read-private",
		},
		Endpoint: spotifyauth.Endpoint,
	}
}
