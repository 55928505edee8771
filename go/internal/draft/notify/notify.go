// Package notify tells users when their draft turn begins.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Turn identifies the turn that just opened for UserID. Cause is the pick
// whose creation or ban opened it.
type Turn struct {
	DraftID   uuid.UUID
	LeagueID  uuid.UUID
	RaceID    uuid.UUID
	UserID    uuid.UUID
	PickIndex int
	Deadline  time.Time
	Cause     uuid.UUID
}

// Notifier delivers turn notifications. Delivery is best effort: callers log
// failures and carry on.
type Notifier interface {
	NotifyTurn(ctx context.Context, turn Turn) error
}

// LogNotifier writes turns to the log. It is used when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) NotifyTurn(ctx context.Context, turn Turn) error {
	log.Info().
		Str("draft_id", turn.DraftID.String()).
		Str("user_id", turn.UserID.String()).
		Int("pick_index", turn.PickIndex).
		Time("deadline", turn.Deadline).
		Msg("turn started")
	return nil
}

// Send notifies and logs any failure without returning it.
func Send(ctx context.Context, n Notifier, turn Turn) {
	if n == nil {
		return
	}
	if err := n.NotifyTurn(ctx, turn); err != nil {
		log.Warn().
			Err(err).
			Str("draft_id", turn.DraftID.String()).
			Str("user_id", turn.UserID.String()).
			Int("pick_index", turn.PickIndex).
			Msg("failed to send turn notification")
	}
}
