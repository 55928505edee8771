// Package gateway pushes turn notifications to connected users over
// websockets, fed either by a JetStream consumer or directly as the
// notifier.
package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	eventConsumer     *EventConsumer
}

type Config struct {
	ConnectionConfig ConnectionConfig
	JetStreamConfig  JetStreamConsumerConfig
	// UseJetStream reads events from the stream. Without it the connection
	// manager must be wired in as the notifier.
	UseJetStream bool
}

func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		JetStreamConfig:  DefaultJetStreamConsumerConfig(),
	}
}

func NewService(ctx context.Context, config Config, clock clockwork.Clock) (*Service, error) {
	cm := NewConnectionManager(config.ConnectionConfig, clock)
	s := &Service{
		connectionManager: cm,
		wsHandler:         NewWebSocketHandler(cm),
	}
	if config.UseJetStream {
		consumer, err := NewEventConsumer(ctx, cm, config.JetStreamConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create event consumer: %w", err)
		}
		s.eventConsumer = consumer
	}
	return s, nil
}

// Start runs the gateway until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Bool("jetstream", s.eventConsumer != nil).Msg("starting draft gateway service")

	go s.connectionManager.Start(ctx)

	if s.eventConsumer != nil {
		go func() {
			if err := s.eventConsumer.Start(ctx); err != nil {
				log.Error().Err(err).Msg("event consumer failed")
			}
		}()
	}

	<-ctx.Done()
	log.Info().Msg("draft gateway service shutting down")
	return s.Stop()
}

func (s *Service) Stop() error {
	if s.eventConsumer != nil {
		if err := s.eventConsumer.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop event consumer")
		}
	}
	log.Info().Msg("draft gateway service stopped")
	return nil
}

// Notifier delivers turns straight to sockets, for deployments without a
// broker.
func (s *Service) Notifier() *ConnectionManager {
	return s.connectionManager
}

func (s *Service) Register(r chi.Router, requireUser func(http.Handler) http.Handler) {
	r.With(requireUser).Get("/v1/ws", s.wsHandler.HandleConnection)
	r.Get("/v1/ws/stats", s.wsHandler.HandleConnectionStats)
}
