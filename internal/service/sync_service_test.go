package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-musictriage-be/internal/dto"
	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/internal/pkg/logger"
	"ai-musictriage-be/internal/repository/memory"
	"ai-musictriage-be/pkg/library/static"
	"ai-musictriage-be/pkg/playlist/dryrun"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncRetryResolvesPendingAdd(t *testing.T) {
	sink := dryrun.New()
	sessionSvc := NewSessionService(
		static.New("sim:test", []*entity.Track{testTrack("a", "Alpha")}),
		sink,
		memory.NewStateRepository(),
		testCatalog(),
		nil,
		nil,
		logger.NewNopLogger(),
	)
	_, err := sessionSvc.StartOrResume(context.Background(), false)
	require.NoError(t, err)

	// The decide-time add fails, leaving the theme pending.
	sink.Fail = errors.New("spotify 503")
	_, err = sessionSvc.Decide(context.Background(), &dto.DecideRequest{
		TrackId:   "a",
		ThemeKeys: []string{"ambiance"},
	})
	require.NoError(t, err)
	require.Len(t, sessionSvc.PendingRetries(), 1)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	publisher := NewPublisherService("retry-test", pubSub)
	syncSvc := NewSyncService(pubSub, "retry-test", sink, sessionSvc, publisher, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, syncSvc.Consume(ctx))

	// Remote recovers; draining the queue completes the add.
	sink.Fail = nil
	require.NoError(t, syncSvc.EnqueuePending(context.Background()))

	assert.Eventually(t, func() bool {
		return sink.Contains("ambiance", "a") && len(sessionSvc.PendingRetries()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSyncRetryStillFailingStaysPending(t *testing.T) {
	sink := dryrun.New()
	sessionSvc := NewSessionService(
		static.New("sim:test", []*entity.Track{testTrack("a", "Alpha")}),
		sink,
		memory.NewStateRepository(),
		testCatalog(),
		nil,
		nil,
		logger.NewNopLogger(),
	)
	_, err := sessionSvc.StartOrResume(context.Background(), false)
	require.NoError(t, err)

	sink.Fail = errors.New("spotify 503")
	_, err = sessionSvc.Decide(context.Background(), &dto.DecideRequest{
		TrackId:   "a",
		ThemeKeys: []string{"ambiance"},
	})
	require.NoError(t, err)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	publisher := NewPublisherService("retry-test", pubSub)
	syncSvc := NewSyncService(pubSub, "retry-test", sink, sessionSvc, publisher, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, syncSvc.Consume(ctx))
	require.NoError(t, syncSvc.EnqueuePending(context.Background()))

	// Still failing: the add stays pending for a later pass.
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, sessionSvc.PendingRetries(), 1)
	assert.False(t, sink.Contains("ambiance", "a"))
}
