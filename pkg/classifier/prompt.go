package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"ai-musictriage-be/internal/entity"
)

// SystemPrompt is part of the cache fingerprint: changing it invalidates
// every previously cached suggestion.
const SystemPrompt = `You are a music classification assistant. You classify songs into playlist themes based on their metadata.

Available themes:
%s

For each track, suggest the BEST matching theme. A track can match multiple themes.
Respond with valid JSON only - an array of objects with these fields:
- track_id: string
- suggested_theme: string (theme key)
- confidence: float (0.0-1.0)
- reasoning: string (brief explanation)

If a track could fit multiple themes, return one entry per theme for that track.`

func BuildSystemPrompt(catalog *entity.ThemeCatalog) string {
	var parts []string
	for _, t := range catalog.All() {
		parts = append(parts, fmt.Sprintf("- %q: %s - %s", t.Key, t.Name, t.Description))
	}
	return fmt.Sprintf(SystemPrompt, strings.Join(parts, "\n"))
}

func BuildTracksPrompt(tracks []*entity.Track) string {
	lines := []string{"Classify these tracks:\n"}
	for _, t := range tracks {
		popularity := "unknown"
		if t.Popularity != nil {
			popularity = fmt.Sprintf("%d", *t.Popularity)
		}
		releaseDate := t.ReleaseDate
		if releaseDate == "" {
			releaseDate = "unknown"
		}
		explicit := "no"
		if t.Explicit {
			explicit = "yes"
		}
		lines = append(lines, fmt.Sprintf(
			"- ID: %s, Title: %q, Artist: %q, Album: %q, Release Date: %s, Duration Sec: %d, Explicit: %s, Popularity: %s",
			t.Id, t.Name, t.Artist, t.Album, releaseDate, (t.DurationMs+500)/1000, explicit, popularity,
		))
	}
	return strings.Join(lines, "\n")
}

type rawSuggestion struct {
	TrackId        string  `json:"track_id"`
	SuggestedTheme string  `json:"suggested_theme"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
}

// ParseSuggestions decodes a model response, tolerating a markdown code
// fence around the JSON. Unparseable responses yield no suggestions rather
// than an error: suggestion quality is advisory.
func ParseSuggestions(text string) []*entity.Suggestion {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		lines := strings.Split(cleaned, "\n")
		lines = lines[1:]
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
			lines = lines[:len(lines)-1]
		}
		cleaned = strings.Join(lines, "\n")
	}

	var items []rawSuggestion
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil
	}

	suggestions := make([]*entity.Suggestion, 0, len(items))
	for _, item := range items {
		suggestions = append(suggestions, &entity.Suggestion{
			TrackId:    item.TrackId,
			ThemeKey:   item.SuggestedTheme,
			Confidence: item.Confidence,
			Reasoning:  item.Reasoning,
		})
	}
	return suggestions
}
