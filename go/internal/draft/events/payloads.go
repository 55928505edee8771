package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types shared between the notifier and the gateway
const (
	TypeTurnStarted = "turn_started"
)

// DefaultSubjectPrefix roots every turn subject: <prefix>.<user_id>
const DefaultSubjectPrefix = "draft.turn"

// TurnStartedPayload tells a user it is their turn in a draft
type TurnStartedPayload struct {
	DraftID   string    `json:"draft_id"`
	LeagueID  string    `json:"league_id"`
	RaceID    string    `json:"race_id"`
	UserID    string    `json:"user_id"`
	PickIndex int       `json:"pick_index"`
	Deadline  time.Time `json:"deadline"`
	StartedAt time.Time `json:"started_at"`
}

// Envelope wraps every payload published to the stream
type Envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	DraftID   string          `json:"draftId"`
	UserID    string          `json:"userId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// TurnSubject is the subject a user's turn events are published on
func TurnSubject(prefix string, userID uuid.UUID) string {
	return fmt.Sprintf("%s.%s", prefix, userID)
}

// TurnEventID derives a stable id for one turn so that repeat notifications
// for the same opening deduplicate in the stream. cause is the pick that
// opened the turn, uuid.Nil for the first turn or a skipped slot.
func TurnEventID(draftID uuid.UUID, pickIndex int, userID, cause uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(draftID, fmt.Appendf(nil, "turn:%d:%s:%s", pickIndex, userID, cause))
}
