package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/viva-go-api/internal/dto"
	"github.com/noah-isme/viva-go-api/internal/observability"
)

const eventBufferSize = 16

// EventService fans out freshly computed verdicts to dashboard clients, both
// in-process and across nodes via Redis pub/sub and NATS when configured.
type EventService interface {
	PublishAnalysis(ctx context.Context, event dto.AnalysisEvent)
	Subscribe() (<-chan dto.AnalysisEvent, func())
	Start(ctx context.Context)
}

type analysisEnvelope struct {
	Source string            `json:"source"`
	Event  dto.AnalysisEvent `json:"event"`
	SentAt time.Time         `json:"sent_at"`
}

type eventService struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	nodeID       string

	mu          sync.RWMutex
	subscribers map[chan dto.AnalysisEvent]struct{}
}

// NewEventService constructs the analysis event broker. Redis and NATS are
// optional; a nil client keeps fan-out in-process only.
func NewEventService(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) EventService {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":analyses"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".analyses"
	}

	return &eventService{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "event_service").Logger(),
		nodeID:       uuid.NewString(),
		subscribers:  make(map[chan dto.AnalysisEvent]struct{}),
	}
}

func (s *eventService) Start(ctx context.Context) {
	if s.redis != nil && s.redisChannel != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *eventService) PublishAnalysis(ctx context.Context, event dto.AnalysisEvent) {
	s.broadcast(event)
	observability.EventsPublished().Inc()

	envelope := analysisEnvelope{
		Source: s.nodeID,
		Event:  event,
		SentAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode analysis event")
		return
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish analysis event to redis")
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish analysis event to nats")
		}
	}
}

func (s *eventService) Subscribe() (<-chan dto.AnalysisEvent, func()) {
	channel := make(chan dto.AnalysisEvent, eventBufferSize)

	s.mu.Lock()
	s.subscribers[channel] = struct{}{}
	s.mu.Unlock()
	observability.EventClientsActive().Inc()

	cleanup := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[channel]; ok {
			delete(s.subscribers, channel)
			close(channel)
		}
		s.mu.Unlock()
		observability.EventClientsActive().Dec()
	}

	return channel, cleanup
}

func (s *eventService) broadcast(event dto.AnalysisEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for channel := range s.subscribers {
		select {
		case channel <- event:
		default:
		}
	}
}

func (s *eventService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("analysis event redis subscription closed")
			return
		}
		s.handleEnvelope([]byte(msg.Payload))
	}
}

func (s *eventService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "viva-analyses", func(msg *nats.Msg) {
		s.handleEnvelope(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats analysis subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain nats analysis subscription")
		}
	}()
}

func (s *eventService) handleEnvelope(payload []byte) {
	var envelope analysisEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		s.logger.Warn().Err(err).Msg("invalid analysis event payload")
		return
	}

	if envelope.Source == s.nodeID {
		return
	}

	s.broadcast(envelope.Event)
}
