// Package spotify wraps the subset of the Spotify Web API this product
// touches: the saved-tracks library and playlist membership.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.spotify.com/v1"

type Client struct {
	BaseURL string
	// Http must be an authorized client, normally oauth2.Config.Client with
	// the user's token source so refreshes happen transparently.
	Http *http.Client
}

func NewClient(authorized *http.Client) *Client {
	if authorized == nil {
		authorized = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		BaseURL: defaultBaseURL,
		Http:    authorized,
	}
}

// --- Wire types ---

type User struct {
	Id          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type Image struct {
	URL string `json:"url"`
}

type Artist struct {
	Name string `json:"name"`
}

type Album struct {
	Name        string  `json:"name"`
	ReleaseDate string  `json:"release_date"`
	Images      []Image `json:"images"`
}

type TrackObject struct {
	Id         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	DurationMs int      `json:"duration_ms"`
	Explicit   bool     `json:"explicit"`
	Popularity *int     `json:"popularity"`
	PreviewURL *string  `json:"preview_url"`
}

type SavedTrackItem struct {
	Track TrackObject `json:"track"`
}

type SavedTracksPage struct {
	Items []SavedTrackItem `json:"items"`
	Total int              `json:"total"`
}

type Playlist struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type PlaylistsPage struct {
	Items []Playlist `json:"items"`
	Total int        `json:"total"`
}

type PlaylistTrackItem struct {
	Track TrackObject `json:"track"`
}

type PlaylistItemsPage struct {
	Items []PlaylistTrackItem `json:"items"`
	Total int                 `json:"total"`
}

// --- Calls ---

func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.doJSON(ctx, "GET", "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) SavedTracks(ctx context.Context, limit, offset int) (*SavedTracksPage, error) {
	path := fmt.Sprintf("/me/tracks?limit=%d&offset=%d", limit, offset)
	var page SavedTracksPage
	if err := c.doJSON(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) CurrentUserPlaylists(ctx context.Context, limit, offset int) (*PlaylistsPage, error) {
	path := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)
	var page PlaylistsPage
	if err := c.doJSON(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) CreatePlaylist(ctx context.Context, userId, name, description string, public bool) (*Playlist, error) {
	body := map[string]interface{}{
		"name":        name,
		"description": description,
		"public":      public,
	}
	var playlist Playlist
	path := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userId))
	if err := c.doJSON(ctx, "POST", path, body, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

func (c *Client) PlaylistItems(ctx context.Context, playlistId string, limit, offset int) (*PlaylistItemsPage, error) {
	path := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(playlistId), limit, offset)
	var page PlaylistItemsPage
	if err := c.doJSON(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) AddToPlaylist(ctx context.Context, playlistId string, trackIds []string) error {
	uris := make([]string, len(trackIds))
	for i, id := range trackIds {
		uris[i] = "spotify:track:" + id
	}
	body := map[string]interface{}{"uris": uris}
	path := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistId))
	return c.doJSON(ctx, "POST", path, body, nil)
}

func (c *Client) RemoveFromPlaylist(ctx context.Context, playlistId string, trackIds []string) error {
	tracks := make([]map[string]string, len(trackIds))
	for i, id := range trackIds {
		tracks[i] = map[string]string{"uri": "spotify:track:" + id}
	}
	body := map[string]interface{}{"tracks": tracks}
	path := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistId))
	return c.doJSON(ctx, "DELETE", path, body, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payloadBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewBuffer(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Http.Do(req)
	if err != nil {
		return fmt.Errorf("spotify request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("spotify error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	if out != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
