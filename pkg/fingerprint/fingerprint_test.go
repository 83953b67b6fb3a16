package fingerprint

import (
	"strings"
	"testing"

	"ai-musictriage-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func catalog(ambianceDesc string) *entity.ThemeCatalog {
	return entity.NewThemeCatalog([]entity.Theme{
		{Key: "ambiance", Name: "Ambiance", Description: ambianceDesc},
		{Key: "lets_dance", Name: "Let's Dance", Description: "High energy"},
	})
}

func TestNamespaceStable(t *testing.T) {
	a := Namespace("openai", "gpt-4o-mini", catalog("Chill"), "prompt")
	b := Namespace("openai", "gpt-4o-mini", catalog("Chill"), "prompt")
	assert.Equal(t, a, b, "identical inputs must fingerprint identically")
}

func TestNamespaceRotation(t *testing.T) {
	base := Namespace("openai", "gpt-4o-mini", catalog("Chill"), "prompt")

	tests := []struct {
		name string
		got  string
	}{
		{"different model", Namespace("openai", "gpt-4o", catalog("Chill"), "prompt")},
		{"different provider", Namespace("anthropic", "gpt-4o-mini", catalog("Chill"), "prompt")},
		{"edited theme description", Namespace("openai", "gpt-4o-mini", catalog("Chill but louder"), "prompt")},
		{"different prompt", Namespace("openai", "gpt-4o-mini", catalog("Chill"), "prompt v2")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, tt.got)
		})
	}
}

func TestTrackKeyMetadataSensitivity(t *testing.T) {
	ns := Namespace("openai", "gpt-4o-mini", catalog("Chill"), "prompt")
	track := &entity.Track{
		Id:          "t1",
		Name:        "Song",
		Artist:      "Artist",
		Album:       "Album",
		DurationMs:  180000,
		ReleaseDate: "2023-01-01",
	}

	original := TrackKey(ns, track)
	assert.True(t, strings.HasPrefix(original, ns+":t1:"))
	assert.Equal(t, original, TrackKey(ns, track))

	remastered := *track
	remastered.Album = "Album (Remastered)"
	assert.NotEqual(t, original, TrackKey(ns, &remastered),
		"changed metadata must miss, same id notwithstanding")

	samemeta := *track
	samemeta.Id = "t2"
	assert.NotEqual(t, original, TrackKey(ns, &samemeta))
}
