package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/viva-go-api/internal/dto"
)

func TestEventServiceBroadcastsToSubscribers(t *testing.T) {
	svc := NewEventService(nil, nil, "viva:events", zerolog.Nop())

	events, cancel := svc.Subscribe()
	defer cancel()

	published := dto.AnalysisEvent{
		InterviewID:   "int-1",
		Score:         82,
		SimpleVerdict: "human",
		Structured:    true,
		AnalyzedAt:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	svc.PublishAnalysis(context.Background(), published)

	select {
	case received := <-events:
		require.Equal(t, published, received)
	case <-time.After(time.Second):
		t.Fatal("expected an analysis event")
	}
}

func TestEventServiceDropsEventsForSlowSubscribers(t *testing.T) {
	svc := NewEventService(nil, nil, "", zerolog.Nop())

	events, cancel := svc.Subscribe()
	defer cancel()

	for i := 0; i < eventBufferSize*2; i++ {
		svc.PublishAnalysis(context.Background(), dto.AnalysisEvent{InterviewID: "int-1", Score: i})
	}

	received := 0
	for {
		select {
		case <-events:
			received++
		default:
			require.Equal(t, eventBufferSize, received)
			return
		}
	}
}

func TestEventServiceUnsubscribeClosesChannel(t *testing.T) {
	svc := NewEventService(nil, nil, "", zerolog.Nop())

	events, cancel := svc.Subscribe()
	cancel()

	_, open := <-events
	require.False(t, open)

	// A publish after unsubscribe must not panic or block.
	svc.PublishAnalysis(context.Background(), dto.AnalysisEvent{InterviewID: "int-2"})
}
