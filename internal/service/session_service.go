package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"ai-musictriage-be/internal/dto"
	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/internal/pkg/logger"
	"ai-musictriage-be/internal/repository/contract"
	"ai-musictriage-be/pkg/library"
	"ai-musictriage-be/pkg/playlist"
)

// INotifierService pushes engine events to the UI. The websocket hub
// implements it; a nil-safe no-op is used in simulation.
type INotifierService interface {
	Notify(event string, payload interface{})
}

type ISessionService interface {
	// StartOrResume creates a fresh session for the source's item set or
	// resumes the persisted one, reconciling upstream drift. A corrupted
	// snapshot fails the call unless discardCorrupted confirms starting over.
	StartOrResume(ctx context.Context, discardCorrupted bool) (*dto.StartSessionResponse, error)

	// Current returns the track at the cursor, or a completion marker.
	Current(ctx context.Context) (*dto.CurrentTrackResponse, error)

	// Decide records the decision for the current track: playlist adds
	// first (failures degrade to pending), then log append, cursor advance
	// and persist. Empty themeKeys is the skip decision.
	Decide(ctx context.Context, req *dto.DecideRequest) (*dto.DecideResponse, error)

	// UndoLast reverses the decision immediately preceding the cursor.
	UndoLast(ctx context.Context) (*dto.UndoResponse, error)

	// Pause persists current state; resuming reloads it unchanged.
	Pause(ctx context.Context) error

	// Export renders the effective decisions in original item order. Valid
	// when complete, or mid-session with force.
	Export(ctx context.Context, force bool) ([]*dto.ExportRow, error)

	Status(ctx context.Context) (*dto.SessionStatusResponse, error)

	// Archive deletes the persisted snapshot after the history has been
	// exported.
	Archive(ctx context.Context) error

	// CurrentTrack and UpcomingTracks feed the suggestion layer.
	CurrentTrack() (*entity.Track, bool)
	UpcomingTracks(n int) []*entity.Track

	// MarkSynced clears a pending playlist add after a successful retry.
	MarkSynced(ctx context.Context, trackId, themeKey string) error

	// PendingRetries lists playlist adds still awaiting retry.
	PendingRetries() []dto.PublishSyncRetryMessage
}

type sessionService struct {
	source    library.Source
	sink      playlist.Sink
	stateRepo contract.SessionStateRepository
	catalog   *entity.ThemeCatalog
	publisher IPublisherService
	notifier  INotifierService
	logger    logger.ILogger

	// The engine exclusively owns the aggregate; all mutations take mu.
	mu      sync.Mutex
	session *entity.Session
	tracks  map[string]*entity.Track
}

func NewSessionService(
	source library.Source,
	sink playlist.Sink,
	stateRepo contract.SessionStateRepository,
	catalog *entity.ThemeCatalog,
	publisher IPublisherService,
	notifier INotifierService,
	sysLogger logger.ILogger,
) ISessionService {
	return &sessionService{
		source:    source,
		sink:      sink,
		stateRepo: stateRepo,
		catalog:   catalog,
		publisher: publisher,
		notifier:  notifier,
		logger:    sysLogger,
		tracks:    make(map[string]*entity.Track),
	}
}

func (s *sessionService) StartOrResume(ctx context.Context, discardCorrupted bool) (*dto.StartSessionResponse, error) {
	fetched, err := s.source.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch library: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracks = make(map[string]*entity.Track, len(fetched))
	order := make([]string, 0, len(fetched))
	for _, t := range fetched {
		if _, seen := s.tracks[t.Id]; seen {
			continue
		}
		s.tracks[t.Id] = t
		order = append(order, t.Id)
	}

	key := s.source.Key()
	persisted, err := s.stateRepo.Load(ctx, key)
	if err != nil {
		if !discardCorrupted {
			return nil, err
		}
		s.logger.Warn("Session", "Discarding corrupted state on explicit confirmation", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		if delErr := s.stateRepo.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("discard corrupted state: %w", delErr)
		}
		persisted = nil
	}

	resumed := false
	var drift *dto.DriftResponse
	if persisted == nil {
		s.session = entity.NewSession(key, order)
	} else {
		s.session = persisted
		drift = s.reconcile(order)
		resumed = true
	}

	if err := s.stateRepo.Save(ctx, s.session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.logger.Info("Session", "Session started", map[string]interface{}{
		"key":     key,
		"tracks":  len(s.session.TrackIds),
		"cursor":  s.session.Cursor,
		"resumed": resumed,
	})

	return &dto.StartSessionResponse{
		Session: s.statusLocked(),
		Resumed: resumed,
		Drift:   drift,
	}, nil
}

// reconcile aligns the persisted track order with the freshly fetched one:
// vanished tracks drop out of the active list (their decisions become
// archived history), new tracks append at the tail so the cursor keeps its
// meaning. A track reappearing after removal re-enters undecided; its stale
// decisions stay archived instead of being resurrected.
func (s *sessionService) reconcile(fetchedOrder []string) *dto.DriftResponse {
	fetchedSet := make(map[string]bool, len(fetchedOrder))
	for _, id := range fetchedOrder {
		fetchedSet[id] = true
	}
	knownSet := make(map[string]bool, len(s.session.TrackIds))
	for _, id := range s.session.TrackIds {
		knownSet[id] = true
	}

	var removed, added, kept []string
	newCursor := 0
	for i, id := range s.session.TrackIds {
		if !fetchedSet[id] {
			removed = append(removed, id)
			continue
		}
		kept = append(kept, id)
		if i < s.session.Cursor {
			newCursor++
		}
	}
	for _, id := range fetchedOrder {
		if !knownSet[id] {
			added = append(added, id)
		}
	}

	if len(removed) == 0 && len(added) == 0 {
		return nil
	}

	removedSet := make(map[string]bool, len(removed))
	for _, id := range removed {
		removedSet[id] = true
	}
	for _, d := range s.session.Log {
		// Archive live decisions of dropped tracks, and stale archived ones
		// of tracks that came back so they re-enter as fresh items.
		if d.Status == entity.DecisionApplied && removedSet[d.TrackId] {
			d.Status = entity.DecisionArchived
		}
	}

	s.session.TrackIds = append(kept, added...)
	s.session.Cursor = newCursor
	s.session.UpdatedAt = time.Now()

	s.logger.Info("Session", "Reconciled library drift", map[string]interface{}{
		"removed": len(removed),
		"added":   len(added),
		"cursor":  newCursor,
	})

	return &dto.DriftResponse{
		RemovedTrackIds: removed,
		AddedTrackIds:   added,
	}
}

func (s *sessionService) Current(ctx context.Context) (*dto.CurrentTrackResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, entity.ErrNoActiveSession
	}

	resp := &dto.CurrentTrackResponse{
		Position: s.session.Cursor,
		Total:    len(s.session.TrackIds),
	}
	if s.session.State() == entity.SessionComplete || s.session.State() == entity.SessionEmpty {
		resp.Complete = true
		return resp, nil
	}

	track := s.tracks[s.session.CurrentTrackId()]
	resp.Track = toTrackResponse(track)
	return resp, nil
}

func (s *sessionService) Decide(ctx context.Context, req *dto.DecideRequest) (*dto.DecideResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, entity.ErrNoActiveSession
	}
	currentId := s.session.CurrentTrackId()
	if currentId == "" || req.TrackId != currentId {
		return nil, fmt.Errorf("%w: got %s", entity.ErrCursorMismatch, req.TrackId)
	}

	themeKeys := dedupe(req.ThemeKeys)
	for _, key := range themeKeys {
		if !s.catalog.Has(key) {
			return nil, fmt.Errorf("%w: %s", entity.ErrUnknownTheme, key)
		}
	}

	// Playlist adds happen before the local commit; failures degrade to
	// pending rather than aborting the decision.
	var synced, pending []string
	for _, key := range themeKeys {
		if err := s.sink.Add(ctx, key, currentId); err != nil {
			s.logger.Warn("Session", "Playlist add failed, flagged for retry", map[string]interface{}{
				"track_id": currentId,
				"theme":    key,
				"error":    err.Error(),
			})
			pending = append(pending, key)
			continue
		}
		synced = append(synced, key)
	}

	track := s.tracks[currentId]
	decision := &entity.Decision{
		TrackId:     currentId,
		TrackName:   track.Name,
		Artist:      track.Artist,
		ThemeKeys:   themeKeys,
		Skipped:     len(themeKeys) == 0,
		Status:      entity.DecisionApplied,
		DecidedAt:   time.Now(),
		SyncedKeys:  synced,
		PendingKeys: pending,
	}
	s.session.Append(decision)

	if err := s.stateRepo.Save(ctx, s.session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	for _, key := range pending {
		s.publishRetry(ctx, currentId, key)
	}
	s.notifyProgressLocked()
	if len(pending) > 0 && s.notifier != nil {
		s.notifier.Notify("sync_pending", dto.DecideResponse{
			Seq:              decision.Seq,
			TrackId:          currentId,
			PendingThemeKeys: pending,
		})
	}

	return &dto.DecideResponse{
		Seq:              decision.Seq,
		TrackId:          currentId,
		ThemeKeys:        themeKeys,
		Skipped:          decision.Skipped,
		PendingThemeKeys: pending,
		Cursor:           s.session.Cursor,
		State:            string(s.session.State()),
	}, nil
}

func (s *sessionService) UndoLast(ctx context.Context) (*dto.UndoResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, entity.ErrNoActiveSession
	}
	if s.session.Cursor == 0 {
		return nil, entity.ErrNothingToUndo
	}

	last := s.session.LastApplied()
	if last == nil {
		// Cursor > 0 guarantees a live decision; anything else means the
		// snapshot validation failed to catch an inconsistency.
		return nil, fmt.Errorf("%w: cursor %d with empty decision log", entity.ErrStateCorruption, s.session.Cursor)
	}

	// Best-effort removal of the adds that actually committed; failures are
	// logged but never block the undo.
	for _, key := range last.SyncedKeys {
		if err := s.sink.Remove(ctx, key, last.TrackId); err != nil {
			s.logger.Warn("Session", "Playlist remove failed during undo", map[string]interface{}{
				"track_id": last.TrackId,
				"theme":    key,
				"error":    err.Error(),
			})
		}
	}

	s.session.Revert(last)

	if err := s.stateRepo.Save(ctx, s.session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	s.notifyProgressLocked()

	return &dto.UndoResponse{
		TrackId:   last.TrackId,
		ThemeKeys: last.ThemeKeys,
		Cursor:    s.session.Cursor,
		State:     string(s.session.State()),
	}, nil
}

func (s *sessionService) Pause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return entity.ErrNoActiveSession
	}
	return s.stateRepo.Save(ctx, s.session)
}

func (s *sessionService) Export(ctx context.Context, force bool) ([]*dto.ExportRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, entity.ErrNoActiveSession
	}
	if s.session.State() != entity.SessionComplete && !force {
		return nil, entity.ErrSessionNotComplete
	}

	var rows []*dto.ExportRow
	for i, trackId := range s.session.TrackIds {
		if i >= s.session.Cursor {
			break
		}
		d := s.session.EffectiveDecision(trackId)
		if d == nil {
			continue
		}
		rows = append(rows, &dto.ExportRow{
			TrackId:   d.TrackId,
			TrackName: d.TrackName,
			Artist:    d.Artist,
			Themes:    d.ThemeKeys,
			Skipped:   d.Skipped,
		})
	}

	// Historical decisions of tracks that left the library follow the
	// active rows.
	activeSet := make(map[string]bool, len(s.session.TrackIds))
	for _, id := range s.session.TrackIds {
		activeSet[id] = true
	}
	seen := make(map[string]bool)
	for i := len(s.session.Log) - 1; i >= 0; i-- {
		d := s.session.Log[i]
		if d.Status != entity.DecisionArchived || activeSet[d.TrackId] || seen[d.TrackId] {
			continue
		}
		seen[d.TrackId] = true
		rows = append(rows, &dto.ExportRow{
			TrackId:   d.TrackId,
			TrackName: d.TrackName,
			Artist:    d.Artist,
			Themes:    d.ThemeKeys,
			Skipped:   d.Skipped,
		})
	}

	return rows, nil
}

func (s *sessionService) Status(ctx context.Context) (*dto.SessionStatusResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, entity.ErrNoActiveSession
	}
	status := s.statusLocked()
	return &status, nil
}

func (s *sessionService) Archive(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return entity.ErrNoActiveSession
	}
	if err := s.stateRepo.Delete(ctx, s.session.Key); err != nil {
		return fmt.Errorf("archive session: %w", err)
	}
	s.logger.Info("Session", "Session archived", map[string]interface{}{"key": s.session.Key})
	s.session = nil
	return nil
}

func (s *sessionService) CurrentTrack() (*entity.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, false
	}
	id := s.session.CurrentTrackId()
	if id == "" {
		return nil, false
	}
	track, ok := s.tracks[id]
	return track, ok
}

func (s *sessionService) UpcomingTracks(n int) []*entity.Track {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}
	var upcoming []*entity.Track
	for i := s.session.Cursor + 1; i < len(s.session.TrackIds) && len(upcoming) < n; i++ {
		if track, ok := s.tracks[s.session.TrackIds[i]]; ok {
			upcoming = append(upcoming, track)
		}
	}
	return upcoming
}

func (s *sessionService) MarkSynced(ctx context.Context, trackId, themeKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return entity.ErrNoActiveSession
	}
	d := s.session.EffectiveDecision(trackId)
	if d == nil {
		// The decision was undone while the retry was in flight; the add
		// will be reversed by a future reconcile pass, nothing to record.
		return nil
	}
	d.MarkSynced(themeKey)

	if err := s.stateRepo.Save(ctx, s.session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	if s.notifier != nil {
		s.notifier.Notify("sync_resolved", dto.PublishSyncRetryMessage{
			TrackId:  trackId,
			ThemeKey: themeKey,
		})
	}
	return nil
}

func (s *sessionService) PendingRetries() []dto.PublishSyncRetryMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}
	var msgs []dto.PublishSyncRetryMessage
	for _, d := range s.session.PendingSync() {
		for _, key := range d.PendingKeys {
			msgs = append(msgs, dto.PublishSyncRetryMessage{
				TrackId:  d.TrackId,
				ThemeKey: key,
			})
		}
	}
	return msgs
}

// --- helpers ---

func (s *sessionService) statusLocked() dto.SessionStatusResponse {
	skipped := 0
	pendingSync := 0
	for i, trackId := range s.session.TrackIds {
		if i >= s.session.Cursor {
			break
		}
		if d := s.session.EffectiveDecision(trackId); d != nil {
			if d.Skipped {
				skipped++
			}
			pendingSync += len(d.PendingKeys)
		}
	}
	return dto.SessionStatusResponse{
		Key:         s.session.Key,
		State:       string(s.session.State()),
		Cursor:      s.session.Cursor,
		TotalTracks: len(s.session.TrackIds),
		Decided:     s.session.DecidedCount(),
		Skipped:     skipped,
		Remaining:   s.session.RemainingCount(),
		PendingSync: pendingSync,
		UpdatedAt:   s.session.UpdatedAt,
	}
}

func (s *sessionService) notifyProgressLocked() {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify("progress", s.statusLocked())
}

func (s *sessionService) publishRetry(ctx context.Context, trackId, themeKey string) {
	if s.publisher == nil {
		return
	}
	msg := dto.PublishSyncRetryMessage{
		TrackId:  trackId,
		ThemeKey: themeKey,
	}
	msgJson, _ := json.Marshal(msg)
	if err := s.publisher.Publish(ctx, msgJson); err != nil {
		s.logger.Warn("Session", "Failed to publish sync retry", map[string]interface{}{
			"track_id": trackId,
			"theme":    themeKey,
			"error":    err.Error(),
		})
	}
}

func dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func toTrackResponse(t *entity.Track) *dto.TrackResponse {
	if t == nil {
		return nil
	}
	return &dto.TrackResponse{
		Id:            t.Id,
		Name:          t.Name,
		Artist:        t.Artist,
		Album:         t.Album,
		ReleaseDate:   t.ReleaseDate,
		DurationMs:    t.DurationMs,
		Explicit:      t.Explicit,
		Popularity:    t.Popularity,
		AlbumImageURL: t.AlbumImageURL,
		PreviewURL:    t.PreviewURL,
	}
}
