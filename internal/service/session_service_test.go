package service

import (
	"context"
	"errors"
	"testing"

	"ai-musictriage-be/internal/dto"
	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/internal/pkg/logger"
	"ai-musictriage-be/internal/repository/memory"
	"ai-musictriage-be/pkg/library/static"
	"ai-musictriage-be/pkg/playlist/dryrun"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *entity.ThemeCatalog {
	return entity.NewThemeCatalog([]entity.Theme{
		{Key: "ambiance", Name: "Ambiance", Description: "Chill and warm", Shortcut: "1"},
		{Key: "lets_dance", Name: "Let's Dance", Description: "High energy", Shortcut: "2"},
	})
}

func testTrack(id, name string) *entity.Track {
	return &entity.Track{
		Id:          id,
		Name:        name,
		Artist:      "Artist of " + name,
		Album:       "Album",
		DurationMs:  200000,
		ReleaseDate: "2023-06-01",
	}
}

type engineFixture struct {
	service ISessionService
	source  *static.StaticSource
	sink    *dryrun.DryRunSink
	repo    *memory.StateRepository
}

func newEngine(t *testing.T, tracks ...*entity.Track) *engineFixture {
	t.Helper()
	source := static.New("sim:test", tracks)
	sink := dryrun.New()
	repo := memory.NewStateRepository()
	svc := NewSessionService(source, sink, repo, testCatalog(), nil, nil, logger.NewNopLogger())
	return &engineFixture{service: svc, source: source, sink: sink, repo: repo}
}

func (f *engineFixture) reopen() ISessionService {
	return NewSessionService(f.source, f.sink, f.repo, testCatalog(), nil, nil, logger.NewNopLogger())
}

func TestStartFreshSession(t *testing.T) {
	f := newEngine(t, testTrack("a", "Alpha"), testTrack("b", "Beta"))

	res, err := f.service.StartOrResume(context.Background(), false)
	require.NoError(t, err)

	assert.False(t, res.Resumed)
	assert.Nil(t, res.Drift)
	assert.Equal(t, "ACTIVE", res.Session.State)
	assert.Equal(t, 0, res.Session.Cursor)
	assert.Equal(t, 2, res.Session.TotalTracks)
}

func TestStartEmptyLibrary(t *testing.T) {
	f := newEngine(t)

	res, err := f.service.StartOrResume(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "EMPTY", res.Session.State)

	current, err := f.service.Current(context.Background())
	require.NoError(t, err)
	assert.True(t, current.Complete)
}

func TestDecideAdvancesAndSyncs(t *testing.T) {
	f := newEngine(t, testTrack("a", "Alpha"), testTrack("b", "Beta"))
	_, err := f.service.StartOrResume(context.Background(), false)
	require.NoError(t, err)

	res, err := f.service.Decide(context.Background(), &dto.DecideRequest{
		TrackId:   "a",
		ThemeKeys: []string{"ambiance", "lets_dance", "ambiance"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.Seq)
	assert.Equal(t, []string{"ambiance", "lets_dance"}, res.ThemeKeys, "duplicate keys collapse")
	assert.False(t, res.Skipped)
	assert.Empty(t, res.PendingThemeKeys)
	assert.Equal(t, 1, res.Cursor)
	assert.True(t, f.sink.Contains("ambiance", "a"))
	assert.True(t, f.sink.Contains("lets_dance", "a"))

	current, err := f.service.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", current.Track.Id)
}

func TestDecideSkip(t *testing.T) {
	f := newEngine(t, testTrack("a", "Alpha"))
	_, err := f.service.StartOrResume(context.Background(), false)
	require.NoError(t, err)

	res, err := f.service.Decide(context.Background(), &dto.DecideRequest{TrackId: "a"})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, "COMPLETE", res.State)
	assert.Empty(t, f.sink.Added)
}

func TestDecideErrors(t *testing.T) {
	f := newEngine(t, testTrack("a", "Alpha"), testTrack("b", "Beta"))
	_, err := f.service.StartOrResume(context.Background(), false)
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     *dto.DecideRequest
		wantErr error
	}{
		{
			name:    "stale track id",
			req:     &dto.DecideRequest{TrackId: "b"},
			wantErr: entity.ErrCursorMismatch,
		},
		{
			name:    "unknown track id",
			req:     &dto.DecideRequest{TrackId: "zzz"},
			wantErr: entity.ErrCursorMismatch,
		},
		{
			name:    "unknown theme",
			req:     &dto.DecideRequest{TrackId: "a", ThemeKeys: []string{"nope"}},
			wantErr: entity.ErrUnknownTheme,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Decide(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Failed decides must not move the cursor or touch the sink.
	current, err := f.service.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", current.Track.Id)
	assert.Empty(t, f.sink.Added)
}

func TestDecideAfterComplete(t *testing.T) {
	f := newEngine(t, testTrack("a", "Alpha"))
	_, err := f.service.StartOrResume(context.Background(), false)
	require.NoError(t, err)
	_, err = f.service.Decide(context.Background(), &dto.DecideRequest{TrackId: "a"})
	require.NoError(t, err)

	_, err = f.service.Decide(context.Background(), &dto.DecideRequest{TrackId: "a"})
	assert.ErrorIs(t, err, entity.ErrCursorMismatch)
}

func TestSinkFailureDegradesToPending(t *testing.T) {
	f := newEngine(t, testTrack("a", "Alpha"))
	_, err := f.service.StartOrResume(context.Background(), false)
	require.NoError(t, err)

	f.sink.Fail = errors.New("spotify 503")

	res, err := f.service.Decide(context.Background(), &dto.DecideRequest{
		TrackId:   "a",
		ThemeKeys: []string{"ambiance"},
	})
	require.NoError(t, err, "remote failure must not abort the decision")
	assert.Equal(t, []string{"ambiance"}, res.PendingThemeKeys)
	assert.Equal(t, 1, res.Cursor)

	pending := f.service.PendingRetries()
	require.Len(t, pending, 1)
	assert.Equal(t, "a", pending[0].TrackId)
	assert.Equal(t, "ambiance", pending[0].ThemeKey)

	// A successful retry clears the pending flag.
	require.NoError(t, f.service.MarkSynced(context.Background(), "a", "ambiance"))
	assert.Empty(t, f.service.PendingRetries())
}

func TestUndoRestoresPriorState(t *testing.T) {
	f := newEngine(t, testTrack("a", "Alpha"), testTrack("b", "Beta"))
	_, err := f.service.StartOrResume(context.Background(), false)
	require.NoError(t, err)

	_, err = f.service.Decide(context.Background(), &dto.DecideRequest{
		TrackId:   "a",
		ThemeKeys: []string{"ambiance"},
	})
	require.NoError(t, err)

	res, err := f.service.UndoLast(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", res.TrackId)
	assert.Equal(t, 0, res.Cursor)
	assert.False(t, f.sink.Contains("ambiance", "a"), "undo reverses the remote add")

	current, err := f.service.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", current.Track.Id)

	// The undone entry must survive as history while a re-decide differs.
	_, err = f.service.Decide(context.Background(), &dto.DecideRequest{TrackId: "a"})
	require.NoError(t, err)

	_, err = f.service.Decide(context.Background(), &dto.DecideRequest{
		TrackId:   "b",
		ThemeKeys: []string{"lets_dance"},
	})
	require.NoError(t, err)

	rows, err := f.service.Export(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Skipped, "the re-decision wins, not the undone one")
	assert.Equal(t, []string{"lets_dance"}, rows[1].Themes)
}

func TestUndoNothingToUndo(t *testing.T) {
	f := newEngine(t, testTrack("a", "Alpha"))
	_, err := f.service.StartOrResume(context.Background(), false)
	require.NoError(t, err)

	_, err = f.service.UndoLast(context.Background())
	assert.ErrorIs(t, err, entity.ErrNothingToUndo)

	// Undo is single-level: decide, undo, undo again.
	_, err = f.service.Decide(context.Background(), &dto.DecideRequest{TrackId: "a"})
	require.NoError(t, err)
	_, err = f.service.UndoLast(context.Background())
	require.NoError(t, err)
	_, err = f.service.UndoLast(context.Background())
	assert.ErrorIs(t, err, entity.ErrNothingToUndo)
}

func TestNoActiveSession(t *testing.T) {
	f := newEngine(t, testTrack("a", "Alpha"))

	_, err := f.service.Current(context.Background())
	assert.ErrorIs(t, err, entity.ErrNoActiveSession)
	_, err = f.service.Decide(context.Background(), &dto.DecideRequest{TrackId: "a"})
	assert.ErrorIs(t, err, entity.ErrNoActiveSession)
	_, err = f.service.UndoLast(context.Background())
	assert.ErrorIs(t, err, entity.ErrNoActiveSession)
	_, err = f.service.Export(context.Background(), false)
	assert.ErrorIs(t, err, entity.ErrNoActiveSession)
	assert.ErrorIs(t, f.service.Pause(context.Background()), entity.ErrNoActiveSession)
}

func TestPauseResumeIsLossless(t *testing.T) {
	f := newEngine(t, testTrack("a", "Alpha"), testTrack("b", "Beta"), testTrack("c", "Gamma"))
	_, err := f.service.StartOrResume(context.Background(), false)
	require.NoError(t, err)

	_, err = f.service.Decide(context.Background(), &dto.DecideRequest{
		TrackId:   "a",
		ThemeKeys: []string{"ambiance"},
	})
	require.NoError(t, err)
	require.NoError(t, f.service.Pause(context.Background()))

	// A new engine over the same store picks up exactly where we stopped.
	reopened := f.reopen()
	res, err := reopened.StartOrResume(context.Background(), false)
	require.NoError(t, err)

	assert.True(t, res.Resumed)
	assert.Nil(t, res.Drift)
	assert.Equal(t, 1, res.Session.Cursor)

	current, err := reopened.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", current.Track.Id)

	// Resuming again without changes is a no-op on progress.
	again, err := f.reopen().StartOrResume(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Session.Cursor)
}

func TestResumeReconcilesDrift(t *testing.T) {
	f := newEngine(t, testTrack("a", "Alpha"), testTrack("b", "Beta"), testTrack("c", "Gamma"))
	_, err := f.service.StartOrResume(context.Background(), false)
	require.NoError(t, err)

	for _, id := range []string{"a", "b"} {
		_, err = f.service.Decide(context.Background(), &dto.DecideRequest{
			TrackId:   id,
			ThemeKeys: []string{"ambiance"},
		})
		require.NoError(t, err)
	}

	// Upstream drift: "b" vanishes, "d" appears.
	f.source.Tracks = []*entity.Track{
		testTrack("a", "Alpha"), testTrack("c", "Gamma"), testTrack("d", "Delta"),
	}

	reopened := f.reopen()
	res, err := reopened.StartOrResume(context.Background(), false)
	require.NoError(t, err)

	require.NotNil(t, res.Drift)
	assert.Equal(t, []string{"b"}, res.Drift.RemovedTrackIds)
	assert.Equal(t, []string{"d"}, res.Drift.AddedTrackIds)

	// "a" stays decided, so the cursor lands on "c"; "d" waits at the tail.
	assert.Equal(t, 1, res.Session.Cursor)
	assert.Equal(t, 3, res.Session.TotalTracks)

	current, err := reopened.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c", current.Track.Id)

	// The removed track's decision survives in the export as history.
	rows, err := reopened.Export(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].TrackId)
	assert.Equal(t, "b", rows[1].TrackId)
}

func TestResumeReappearedTrackIsFresh(t *testing.T) {
	f := newEngine(t, testTrack("a", "Alpha"), testTrack("b", "Beta"))
	_, err := f.service.StartOrResume(context.Background(), false)
	require.NoError(t, err)
	_, err = f.service.Decide(context.Background(), &dto.DecideRequest{
		TrackId:   "a",
		ThemeKeys: []string{"ambiance"},
	})
	require.NoError(t, err)

	// "a" vanishes, then comes back in a later run.
	f.source.Tracks = []*entity.Track{testTrack("b", "Beta")}
	_, err = f.reopen().StartOrResume(context.Background(), false)
	require.NoError(t, err)

	f.source.Tracks = []*entity.Track{testTrack("b", "Beta"), testTrack("a", "Alpha")}
	reopened := f.reopen()
	res, err := reopened.StartOrResume(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, res.Drift.AddedTrackIds)
	assert.Equal(t, 0, res.Session.Cursor)

	// It must be offered again, not auto-resolved from its stale decision.
	current, err := reopened.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", current.Track.Id)
	assert.Equal(t, 2, current.Total)
}

func TestCorruptedStateRequiresConfirmation(t *testing.T) {
	f := newEngine(t, testTrack("a", "Alpha"))
	_, err := f.service.StartOrResume(context.Background(), false)
	require.NoError(t, err)
	_, err = f.service.Decide(context.Background(), &dto.DecideRequest{TrackId: "a"})
	require.NoError(t, err)

	f.repo.Corrupt("sim:test")

	reopened := f.reopen()
	_, err = reopened.StartOrResume(context.Background(), false)
	assert.ErrorIs(t, err, entity.ErrStateCorruption, "no silent discard")

	res, err := reopened.StartOrResume(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, res.Resumed)
	assert.Equal(t, 0, res.Session.Cursor)
}

func TestExportLifecycle(t *testing.T) {
	f := newEngine(t, testTrack("a", "Alpha"), testTrack("b", "Beta"), testTrack("c", "Gamma"))
	_, err := f.service.StartOrResume(context.Background(), false)
	require.NoError(t, err)

	// Mid-session export needs force.
	_, err = f.service.Decide(context.Background(), &dto.DecideRequest{
		TrackId:   "a",
		ThemeKeys: []string{"ambiance"},
	})
	require.NoError(t, err)

	_, err = f.service.Export(context.Background(), false)
	assert.ErrorIs(t, err, entity.ErrSessionNotComplete)

	partial, err := f.service.Export(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, partial, 1)

	_, err = f.service.Decide(context.Background(), &dto.DecideRequest{TrackId: "b"})
	require.NoError(t, err)
	_, err = f.service.Decide(context.Background(), &dto.DecideRequest{
		TrackId:   "c",
		ThemeKeys: []string{"ambiance", "lets_dance"},
	})
	require.NoError(t, err)

	rows, err := f.service.Export(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, rows, 3, "one row per item, in item order")
	assert.Equal(t, []string{"a", "b", "c"}, []string{rows[0].TrackId, rows[1].TrackId, rows[2].TrackId})
	assert.True(t, rows[1].Skipped)
	assert.Equal(t, []string{"ambiance", "lets_dance"}, rows[2].Themes)
}

func TestStatusCounts(t *testing.T) {
	f := newEngine(t, testTrack("a", "Alpha"), testTrack("b", "Beta"), testTrack("c", "Gamma"))
	_, err := f.service.StartOrResume(context.Background(), false)
	require.NoError(t, err)

	_, err = f.service.Decide(context.Background(), &dto.DecideRequest{
		TrackId:   "a",
		ThemeKeys: []string{"ambiance"},
	})
	require.NoError(t, err)
	_, err = f.service.Decide(context.Background(), &dto.DecideRequest{TrackId: "b"})
	require.NoError(t, err)

	status, err := f.service.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, status.Decided)
	assert.Equal(t, 1, status.Skipped)
	assert.Equal(t, 1, status.Remaining)
	assert.Equal(t, "ACTIVE", status.State)
}

func TestArchiveDeletesState(t *testing.T) {
	f := newEngine(t, testTrack("a", "Alpha"))
	_, err := f.service.StartOrResume(context.Background(), false)
	require.NoError(t, err)
	_, err = f.service.Decide(context.Background(), &dto.DecideRequest{TrackId: "a"})
	require.NoError(t, err)

	require.NoError(t, f.service.Archive(context.Background()))

	_, err = f.service.Current(context.Background())
	assert.ErrorIs(t, err, entity.ErrNoActiveSession)

	exists, err := f.repo.Exists(context.Background(), "sim:test")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpcomingTracksWindow(t *testing.T) {
	f := newEngine(t, testTrack("a", "Alpha"), testTrack("b", "Beta"), testTrack("c", "Gamma"), testTrack("d", "Delta"))
	_, err := f.service.StartOrResume(context.Background(), false)
	require.NoError(t, err)

	track, ok := f.service.CurrentTrack()
	require.True(t, ok)
	assert.Equal(t, "a", track.Id)

	upcoming := f.service.UpcomingTracks(2)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "b", upcoming[0].Id)
	assert.Equal(t, "c", upcoming[1].Id)

	// Window clamps at the tail.
	assert.Len(t, f.service.UpcomingTracks(10), 3)
}
