package service

import (
	"context"
	"encoding/json"

	"ai-musictriage-be/internal/dto"
	"ai-musictriage-be/internal/pkg/logger"
	"ai-musictriage-be/pkg/playlist"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ISyncService drains the retry topic for playlist adds that failed during a
// decide. The sink carries its own bounded backoff; a message that still
// fails stays pending and is re-enqueued when the session next starts.
type ISyncService interface {
	Consume(ctx context.Context) error

	// EnqueuePending republishes every pending add from the loaded session,
	// picking up retries left over from a previous run.
	EnqueuePending(ctx context.Context) error
}

type syncService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	sink      playlist.Sink
	session   ISessionService
	publisher IPublisherService
	logger    logger.ILogger
}

func NewSyncService(
	pubSub *gochannel.GoChannel,
	topicName string,
	sink playlist.Sink,
	session ISessionService,
	publisher IPublisherService,
	sysLogger logger.ILogger,
) ISyncService {
	return &syncService{
		pubSub:    pubSub,
		topicName: topicName,
		sink:      sink,
		session:   session,
		publisher: publisher,
		logger:    sysLogger,
	}
}

func (s *syncService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *syncService) EnqueuePending(ctx context.Context) error {
	for _, pending := range s.session.PendingRetries() {
		msgJson, err := json.Marshal(pending)
		if err != nil {
			return err
		}
		if err := s.publisher.Publish(ctx, msgJson); err != nil {
			return err
		}
	}
	return nil
}

func (s *syncService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishSyncRetryMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("Sync", "Failed to unmarshal retry message", map[string]interface{}{
			"error": err.Error(),
		})
		// Ack malformed messages to prevent infinite redelivery.
		msg.Ack()
		return
	}

	if err := s.sink.Add(ctx, payload.ThemeKey, payload.TrackId); err != nil {
		s.logger.Warn("Sync", "Retry still failing, left pending", map[string]interface{}{
			"track_id": payload.TrackId,
			"theme":    payload.ThemeKey,
			"error":    err.Error(),
		})
		msg.Ack()
		return
	}

	if err := s.session.MarkSynced(ctx, payload.TrackId, payload.ThemeKey); err != nil {
		s.logger.Error("Sync", "Failed to record resolved sync", map[string]interface{}{
			"track_id": payload.TrackId,
			"theme":    payload.ThemeKey,
			"error":    err.Error(),
		})
	}
	msg.Ack()
}
