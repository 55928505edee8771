package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcdev12/gridpick/go/internal/draft/events"
)

// Event is the frame pushed to websocket clients
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	DraftID   string          `json:"draft_id"`
	UserID    string          `json:"user_id"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// eventFromEnvelope converts a stream envelope into a client frame.
func eventFromEnvelope(data []byte) (*Event, error) {
	var env events.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal event envelope: %w", err)
	}
	switch env.EventType {
	case events.TypeTurnStarted:
	default:
		return nil, fmt.Errorf("unknown event type: %s", env.EventType)
	}
	if env.UserID == "" {
		return nil, fmt.Errorf("event %s has no user", env.EventID)
	}
	return &Event{
		ID:        env.EventID,
		Type:      env.EventType,
		DraftID:   env.DraftID,
		UserID:    env.UserID,
		Timestamp: env.Timestamp,
		Data:      env.Payload,
	}, nil
}

// ParseEventPayload decodes an event's data into its typed payload.
func ParseEventPayload(event *Event) (any, error) {
	switch event.Type {
	case events.TypeTurnStarted:
		var payload events.TurnStartedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	default:
		return nil, nil
	}
}
