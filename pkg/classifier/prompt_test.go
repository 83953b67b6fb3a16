package classifier

import (
	"strings"
	"testing"

	"ai-musictriage-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSystemPrompt(t *testing.T) {
	catalog := entity.NewThemeCatalog([]entity.Theme{
		{Key: "ambiance", Name: "Ambiance", Description: "Chill and warm"},
		{Key: "lets_dance", Name: "Let's Dance", Description: "High energy"},
	})

	prompt := BuildSystemPrompt(catalog)
	assert.Contains(t, prompt, `"ambiance": Ambiance - Chill and warm`)
	assert.Contains(t, prompt, `"lets_dance": Let's Dance - High energy`)
	assert.Contains(t, prompt, "suggested_theme")
}

func TestBuildTracksPrompt(t *testing.T) {
	pop := 73
	tracks := []*entity.Track{
		{
			Id: "t1", Name: "Song One", Artist: "Artist A", Album: "LP",
			Popularity: &pop, DurationMs: 185400, ReleaseDate: "2022-05-01", Explicit: true,
		},
		{
			Id: "t2", Name: "Song Two", Artist: "Artist B", Album: "EP",
			DurationMs: 90000,
		},
	}

	prompt := BuildTracksPrompt(tracks)
	assert.Contains(t, prompt, "ID: t1")
	assert.Contains(t, prompt, "Duration Sec: 185", "rounds to nearest second")
	assert.Contains(t, prompt, "Explicit: yes")
	assert.Contains(t, prompt, "Popularity: 73")
	assert.Contains(t, prompt, "Release Date: unknown")
	assert.Contains(t, prompt, "Popularity: unknown")
}

func TestParseSuggestions(t *testing.T) {
	payload := `[
		{"track_id": "t1", "suggested_theme": "ambiance", "confidence": 0.85, "reasoning": "warm pads"},
		{"track_id": "t1", "suggested_theme": "lets_dance", "confidence": 0.4, "reasoning": "slight groove"}
	]`

	tests := []struct {
		name string
		text string
		want int
	}{
		{"bare json", payload, 2},
		{"fenced", "```json\n" + payload + "\n```", 2},
		{"fenced no language", "```\n" + payload + "\n```", 2},
		{"surrounding whitespace", "\n  " + payload + "  \n", 2},
		{"empty array", "[]", 0},
		{"prose instead of json", "I think t1 is ambient music.", 0},
		{"truncated", payload[:40], 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSuggestions(tt.text)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestParseSuggestionsFieldMapping(t *testing.T) {
	got := ParseSuggestions(`[{"track_id": "t9", "suggested_theme": "ambiance", "confidence": 0.9, "reasoning": "calm"}]`)
	require.Len(t, got, 1)
	assert.Equal(t, "t9", got[0].TrackId)
	assert.Equal(t, "ambiance", got[0].ThemeKey)
	assert.InDelta(t, 0.9, got[0].Confidence, 1e-9)
	assert.Equal(t, "calm", got[0].Reasoning)
}

func TestSystemPromptMentionsJSONContract(t *testing.T) {
	// The parser and the prompt must agree on field names.
	for _, field := range []string{"track_id", "suggested_theme", "confidence", "reasoning"} {
		assert.True(t, strings.Contains(SystemPrompt, field), field)
	}
}
