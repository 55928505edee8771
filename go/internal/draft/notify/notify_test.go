package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gridpick/go/internal/draft/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sentAt = time.Date(2026, time.March, 12, 9, 0, 0, 0, time.UTC)

func newTurn() Turn {
	return Turn{
		DraftID:   uuid.New(),
		LeagueID:  uuid.New(),
		RaceID:    uuid.New(),
		UserID:    uuid.New(),
		PickIndex: 2,
		Deadline:  sentAt.Add(26 * time.Hour),
		Cause:     uuid.New(),
	}
}

func TestTurnMsg(t *testing.T) {
	n := &JetStreamNotifier{config: DefaultJetStreamConfig(), clock: clockwork.NewFakeClockAt(sentAt)}
	turn := newTurn()

	msg, err := n.turnMsg(turn)
	require.NoError(t, err)

	wantID := events.TurnEventID(turn.DraftID, turn.PickIndex, turn.UserID, turn.Cause).String()
	assert.Equal(t, "draft.turn."+turn.UserID.String(), msg.Subject)

	headers := map[string]string{
		"Event-Type": events.TypeTurnStarted,
		"Event-ID":   wantID,
		"Draft-ID":   turn.DraftID.String(),
		"User-ID":    turn.UserID.String(),
	}
	for key, want := range headers {
		t.Run(key, func(t *testing.T) {
			assert.Equal(t, want, msg.Header.Get(key))
		})
	}

	var env events.Envelope
	require.NoError(t, json.Unmarshal(msg.Data, &env))
	assert.Equal(t, wantID, env.EventID)
	assert.Equal(t, events.TypeTurnStarted, env.EventType)
	assert.True(t, sentAt.Equal(env.Timestamp))

	var payload events.TurnStartedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, turn.LeagueID.String(), payload.LeagueID)
	assert.Equal(t, turn.RaceID.String(), payload.RaceID)
	assert.Equal(t, 2, payload.PickIndex)
	assert.True(t, turn.Deadline.Equal(payload.Deadline))
}

func TestTurnMsgCustomPrefix(t *testing.T) {
	cfg := DefaultJetStreamConfig()
	cfg.SubjectPrefix = "staging.turn"
	n := &JetStreamNotifier{config: cfg, clock: clockwork.NewFakeClockAt(sentAt)}
	turn := newTurn()

	msg, err := n.turnMsg(turn)
	require.NoError(t, err)
	assert.Equal(t, "staging.turn."+turn.UserID.String(), msg.Subject)
}

func TestTurnEventIDDedupes(t *testing.T) {
	turn := newTurn()
	id := events.TurnEventID(turn.DraftID, turn.PickIndex, turn.UserID, turn.Cause)

	n := &JetStreamNotifier{config: DefaultJetStreamConfig(), clock: clockwork.NewFakeClockAt(sentAt)}
	first, err := n.turnMsg(turn)
	require.NoError(t, err)
	later := &JetStreamNotifier{config: DefaultJetStreamConfig(), clock: clockwork.NewFakeClockAt(sentAt.Add(time.Minute))}
	second, err := later.turnMsg(turn)
	require.NoError(t, err)
	assert.Equal(t, first.Header.Get("Event-ID"), second.Header.Get("Event-ID"), "a resend of one turn keeps its id")

	tests := map[string]func(Turn) Turn{
		"other draft": func(tr Turn) Turn { tr.DraftID = uuid.New(); return tr },
		"other index": func(tr Turn) Turn { tr.PickIndex++; return tr },
		"other user":  func(tr Turn) Turn { tr.UserID = uuid.New(); return tr },
		"other cause": func(tr Turn) Turn { tr.Cause = uuid.New(); return tr },
		"no cause":    func(tr Turn) Turn { tr.Cause = uuid.Nil; return tr },
	}
	for name, change := range tests {
		t.Run(name, func(t *testing.T) {
			other := change(turn)
			assert.NotEqual(t, id, events.TurnEventID(other.DraftID, other.PickIndex, other.UserID, other.Cause))
		})
	}
}

type failingNotifier struct {
	calls int
}

func (f *failingNotifier) NotifyTurn(context.Context, Turn) error {
	f.calls++
	return errors.New("broker down")
}

func TestSend(t *testing.T) {
	assert.NotPanics(t, func() { Send(context.Background(), nil, newTurn()) })

	f := &failingNotifier{}
	Send(context.Background(), f, newTurn())
	assert.Equal(t, 1, f.calls)

	assert.NoError(t, LogNotifier{}.NotifyTurn(context.Background(), newTurn()))
}
