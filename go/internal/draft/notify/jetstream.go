package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gridpick/go/internal/draft/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

type JetStreamConfig struct {
	URL             string
	StreamName      string
	SubjectPrefix   string
	MaxReconnects   int
	ReconnectWait   time.Duration
	MaxAge          time.Duration
	Replicas        int
	DuplicateWindow time.Duration
}

func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		URL:             nats.DefaultURL,
		StreamName:      "DRAFT_TURNS",
		SubjectPrefix:   events.DefaultSubjectPrefix,
		MaxReconnects:   -1,
		ReconnectWait:   2 * time.Second,
		MaxAge:          72 * time.Hour,
		Replicas:        1,
		DuplicateWindow: 2 * time.Hour,
	}
}

// JetStreamNotifier publishes turn events to a per-user subject. The message
// id is derived from the turn so duplicates inside the stream's window are
// dropped by the server.
type JetStreamNotifier struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config JetStreamConfig
	clock  clockwork.Clock
}

func NewJetStreamNotifier(ctx context.Context, cfg JetStreamConfig, clock clockwork.Clock) (*JetStreamNotifier, error) {
	opts := []nats.Option{
		nats.Name("gridpick-notifier"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	n := &JetStreamNotifier{nc: nc, js: js, config: cfg, clock: clock}
	if err := EnsureStream(ctx, js, cfg); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}
	return n, nil
}

// EnsureStream creates the turn stream or updates it when limits changed.
func EnsureStream(ctx context.Context, js jetstream.JetStream, cfg JetStreamConfig) error {
	sc := jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Description: "Draft turn notifications",
		Subjects:    []string{cfg.SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      cfg.MaxAge,
		Storage:     jetstream.FileStorage,
		Replicas:    cfg.Replicas,
		Duplicates:  cfg.DuplicateWindow,
	}

	stream, err := js.Stream(ctx, cfg.StreamName)
	if err != nil {
		if _, err = js.CreateStream(ctx, sc); err != nil {
			return fmt.Errorf("create stream: %w", err)
		}
		log.Info().Str("stream", cfg.StreamName).Msg("created JetStream stream")
		return nil
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("get stream info: %w", err)
	}
	if info.Config.MaxAge != sc.MaxAge || info.Config.Replicas != sc.Replicas || info.Config.Duplicates != sc.Duplicates {
		if _, err = js.UpdateStream(ctx, sc); err != nil {
			return fmt.Errorf("update stream: %w", err)
		}
		log.Info().Str("stream", cfg.StreamName).Msg("updated JetStream stream")
	}
	return nil
}

func (n *JetStreamNotifier) NotifyTurn(ctx context.Context, turn Turn) error {
	msg, err := n.turnMsg(turn)
	if err != nil {
		return err
	}
	eventID := msg.Header.Get("Event-ID")

	ack, err := n.js.PublishMsg(ctx, msg,
		jetstream.WithMsgID(eventID),
		jetstream.WithExpectStream(n.config.StreamName),
	)
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	log.Debug().
		Str("subject", msg.Subject).
		Str("event_id", eventID).
		Uint64("sequence", ack.Sequence).
		Bool("duplicate", ack.Duplicate).
		Msg("published turn notification")
	return nil
}

func (n *JetStreamNotifier) turnMsg(turn Turn) (*nats.Msg, error) {
	eventID := events.TurnEventID(turn.DraftID, turn.PickIndex, turn.UserID, turn.Cause).String()
	payload, err := json.Marshal(events.TurnStartedPayload{
		DraftID:   turn.DraftID.String(),
		LeagueID:  turn.LeagueID.String(),
		RaceID:    turn.RaceID.String(),
		UserID:    turn.UserID.String(),
		PickIndex: turn.PickIndex,
		Deadline:  turn.Deadline,
		StartedAt: n.clock.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	data, err := json.Marshal(events.Envelope{
		EventID:   eventID,
		EventType: events.TypeTurnStarted,
		DraftID:   turn.DraftID.String(),
		UserID:    turn.UserID.String(),
		Timestamp: n.clock.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	return &nats.Msg{
		Subject: events.TurnSubject(n.config.SubjectPrefix, turn.UserID),
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{events.TypeTurnStarted},
			"Event-ID":   []string{eventID},
			"Draft-ID":   []string{turn.DraftID.String()},
			"User-ID":    []string{turn.UserID.String()},
		},
	}, nil
}

func (n *JetStreamNotifier) Close() error {
	if n.nc != nil {
		return n.nc.Drain()
	}
	return nil
}
