// Simulation runs the whole classification flow in-process: a static
// library, a scripted classifier and a dry-run playlist sink. No Spotify
// account or LLM key needed; useful for demoing and eyeballing the engine.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"ai-musictriage-be/internal/config"
	"ai-musictriage-be/internal/dto"
	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/internal/pkg/logger"
	"ai-musictriage-be/internal/repository/implementation"
	"ai-musictriage-be/internal/repository/memory"
	"ai-musictriage-be/internal/service"
	"ai-musictriage-be/pkg/classifier/scripted"
	"ai-musictriage-be/pkg/library/static"
	"ai-musictriage-be/pkg/playlist/dryrun"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

func main() {
	color.Cyan("🎵 Music Triage Simulation\n")

	ctx := context.Background()
	sysLogger := logger.NewZapLogger("logs/simulation.log", false)
	defer sysLogger.Sync()

	themes := make([]entity.Theme, 0)
	for _, t := range config.DefaultThemes() {
		themes = append(themes, entity.Theme{
			Key:         t.Key,
			Name:        t.Name,
			Description: t.Description,
			Shortcut:    t.Shortcut,
		})
	}
	catalog := entity.NewThemeCatalog(themes)

	tracks := []*entity.Track{
		track("track-a", "Slow Burner", "The Loungers"),
		track("track-b", "Midnight Groove", "Velvet Echo"),
		track("track-c", "Jump Around Again", "Bassline Riot"),
	}

	runId := uuid.New().String()[:8]
	source := static.New("sim:"+runId, tracks)
	sink := dryrun.New()
	stateRepo := memory.NewStateRepository()

	provider := scripted.New()
	provider.Suggestions["track-a"] = []*entity.Suggestion{
		{TrackId: "track-a", ThemeKey: "ambiance", Confidence: 0.92, Reasoning: "Warm and mid-tempo"},
	}
	provider.Suggestions["track-b"] = []*entity.Suggestion{
		{TrackId: "track-b", ThemeKey: "ambiance", Confidence: 0.61, Reasoning: "Chill but danceable"},
		{TrackId: "track-b", ThemeKey: "lets_dance", Confidence: 0.55, Reasoning: "Groove could fill a floor"},
	}
	provider.Suggestions["track-c"] = []*entity.Suggestion{
		{TrackId: "track-c", ThemeKey: "lets_dance", Confidence: 0.97, Reasoning: "High energy party track"},
	}

	sessionService := service.NewSessionService(source, sink, stateRepo, catalog, nil, nil, sysLogger)
	suggestionService := service.NewSuggestionService(provider, implementation.NewLayeredCacheRepository(
		memory.NewSuggestionCache(), memory.NewSuggestionCache(),
	), catalog, sessionService, nil, 3, 10, sysLogger)

	color.Yellow("\n1. Start session")
	start, err := sessionService.StartOrResume(ctx, false)
	must(err)
	color.Green("State: %s, %d tracks", start.Session.State, start.Session.TotalTracks)

	color.Yellow("\n2. Triage each track with suggestions")
	for {
		current, err := sessionService.Current(ctx)
		must(err)
		if current.Complete {
			break
		}

		sg, err := suggestionService.SuggestForCurrent(ctx)
		must(err)

		fmt.Printf("  ▶ %s — %s", current.Track.Name, current.Track.Artist)
		picked := []string{}
		if sg.Suggestion != nil {
			fmt.Printf("  (suggested: %s %.0f%%)", sg.Suggestion.ThemeName, sg.Suggestion.Confidence*100)
			picked = []string{sg.Suggestion.ThemeKey}
		}
		fmt.Println()

		res, err := sessionService.Decide(ctx, &dto.DecideRequest{
			TrackId:   current.Track.Id,
			ThemeKeys: picked,
		})
		must(err)
		if res.Skipped {
			color.Magenta("    skipped")
		} else {
			color.Green("    filed under %s", strings.Join(res.ThemeKeys, ", "))
		}
	}

	color.Yellow("\n3. Undo the last decision and redo it as a skip")
	undone, err := sessionService.UndoLast(ctx)
	must(err)
	color.Green("Undid %s, cursor back to %d", undone.TrackId, undone.Cursor)

	_, err = sessionService.Decide(ctx, &dto.DecideRequest{TrackId: undone.TrackId})
	must(err)
	color.Green("Re-decided %s as a skip", undone.TrackId)

	color.Yellow("\n4. Export")
	rows, err := sessionService.Export(ctx, false)
	must(err)
	for _, row := range rows {
		themesCol := strings.Join(row.Themes, "|")
		if row.Skipped {
			themesCol = "(skipped)"
		}
		fmt.Printf("  %-12s %-20s %s\n", row.TrackId, row.TrackName, themesCol)
	}

	color.Yellow("\n5. Dry-run sink ledger")
	for _, m := range sink.Added {
		fmt.Printf("  + %s -> %s\n", m.TrackId, m.ThemeKey)
	}
	for _, m := range sink.Removed {
		fmt.Printf("  - %s -> %s\n", m.TrackId, m.ThemeKey)
	}

	color.Cyan("\n✅ Simulation complete")
}

func track(id, name, artist string) *entity.Track {
	pop := 50
	return &entity.Track{
		Id:          id,
		Name:        name,
		Artist:      artist,
		Album:       "Simulation LP",
		Popularity:  &pop,
		DurationMs:  180000,
		ReleaseDate: "2024-01-01",
		Genres:      []string{},
	}
}

func must(err error) {
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
}
