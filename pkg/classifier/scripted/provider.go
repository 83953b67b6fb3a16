// Package scripted provides a deterministic classifier used by the
// simulation entrypoint and by tests. It never leaves the process.
package scripted

import (
	"context"

	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/pkg/classifier"
)

type ScriptedProvider struct {
	// Suggestions maps track id to the canned responses to return.
	Suggestions map[string][]*entity.Suggestion
	// Err, when set, is returned by every call to simulate a provider outage.
	Err error
	// Calls records the track ids of each batch for assertions.
	Calls [][]string
}

var _ classifier.Provider = &ScriptedProvider{}

func New() *ScriptedProvider {
	return &ScriptedProvider{
		Suggestions: make(map[string][]*entity.Suggestion),
	}
}

func (p *ScriptedProvider) Identity() (string, string) {
	return "scripted", "scripted-v1"
}

func (p *ScriptedProvider) SuggestBatch(ctx context.Context, tracks []*entity.Track, catalog *entity.ThemeCatalog, options ...classifier.Option) ([]*entity.Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Err != nil {
		return nil, p.Err
	}

	ids := make([]string, len(tracks))
	var out []*entity.Suggestion
	for i, t := range tracks {
		ids[i] = t.Id
		out = append(out, p.Suggestions[t.Id]...)
	}
	p.Calls = append(p.Calls, ids)
	return out, nil
}
