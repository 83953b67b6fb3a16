// Package fingerprint derives deterministic suggestion-cache keys. A key
// binds the classifier identity (provider, model, prompt) and the theme
// catalog content to the track's classification-relevant metadata, so any
// change to either yields a miss instead of a stale hit.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"ai-musictriage-be/internal/entity"
)

func hash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

type namespacePayload struct {
	Provider   string            `json:"provider"`
	Model      string            `json:"model"`
	Themes     map[string]string `json:"themes"`
	PromptHash string            `json:"prompt_hash"`
}

// Namespace is shared by every key computed for one classifier configuration.
// Editing a theme description rotates the namespace and invalidates all prior
// suggestions.
func Namespace(provider, model string, catalog *entity.ThemeCatalog, systemPrompt string) string {
	themes := make(map[string]string, catalog.Len())
	for _, t := range catalog.All() {
		themes[t.Key] = t.Name + "|" + t.Description
	}

	payload := namespacePayload{
		Provider:   provider,
		Model:      model,
		Themes:     themes,
		PromptHash: hash([]byte(systemPrompt)),
	}
	// encoding/json sorts map keys, keeping the serialization stable.
	raw, _ := json.Marshal(payload)
	return hash(raw)
}

type trackPayload struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	ReleaseDate string `json:"release_date"`
	DurationMs  int    `json:"duration_ms"`
	Explicit    bool   `json:"explicit"`
	Popularity  *int   `json:"popularity"`
}

// TrackKey fingerprints one track within a namespace. The metadata hash, not
// the id alone, participates: the same track re-fetched with different
// metadata is a fresh case.
func TrackKey(namespace string, track *entity.Track) string {
	payload := trackPayload{
		Id:          track.Id,
		Name:        track.Name,
		Artist:      track.Artist,
		Album:       track.Album,
		ReleaseDate: track.ReleaseDate,
		DurationMs:  track.DurationMs,
		Explicit:    track.Explicit,
		Popularity:  track.Popularity,
	}
	raw, _ := json.Marshal(payload)
	return fmt.Sprintf("%s:%s:%s", namespace, track.Id, hash(raw))
}
