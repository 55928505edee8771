package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gridpick/go/internal/auth"
	"github.com/mcdev12/gridpick/go/internal/draft/events"
	"github.com/mcdev12/gridpick/go/internal/draft/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T) (*Service, *auth.Authenticator, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	svc, err := NewService(ctx, DefaultConfig(), clockwork.NewRealClock())
	require.NoError(t, err)
	go svc.connectionManager.Start(ctx)

	authn := auth.NewAuthenticator("test-secret")
	r := chi.NewRouter()
	svc.Register(r, authn.Middleware)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return svc, authn, srv
}

func dial(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	if token != "" {
		url += "?token=" + token
	}
	return websocket.DefaultDialer.Dial(url, nil)
}

func TestTurnDeliveredToUserSocket(t *testing.T) {
	svc, authn, srv := newTestGateway(t)
	userID := uuid.New()
	token, err := authn.Issue(userID, time.Now(), time.Hour)
	require.NoError(t, err)

	conn, _, err := dial(t, srv, token)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return svc.connectionManager.Stats().TotalConnections == 1
	}, 2*time.Second, 10*time.Millisecond)

	turn := notify.Turn{
		DraftID:   uuid.New(),
		LeagueID:  uuid.New(),
		RaceID:    uuid.New(),
		UserID:    userID,
		PickIndex: 3,
		Deadline:  time.Date(2026, time.May, 22, 11, 30, 0, 0, time.UTC),
	}
	require.NoError(t, svc.Notifier().NotifyTurn(context.Background(), turn))
	// a turn for someone else is not delivered here
	require.NoError(t, svc.Notifier().NotifyTurn(context.Background(), notify.Turn{DraftID: turn.DraftID, UserID: uuid.New()}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, events.TypeTurnStarted, event.Type)
	assert.Equal(t, userID.String(), event.UserID)
	assert.Equal(t, events.TurnEventID(turn.DraftID, 3, userID, uuid.Nil).String(), event.ID)

	payload, err := ParseEventPayload(&event)
	require.NoError(t, err)
	started, ok := payload.(events.TurnStartedPayload)
	require.True(t, ok)
	assert.Equal(t, 3, started.PickIndex)
	assert.True(t, turn.Deadline.Equal(started.Deadline))
}

func TestWebSocketRequiresToken(t *testing.T) {
	_, _, srv := newTestGateway(t)

	_, resp, err := dial(t, srv, "")
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEventFromEnvelope(t *testing.T) {
	userID := uuid.New()
	payload := json.RawMessage(`{"pick_index":1}`)
	data, err := json.Marshal(events.Envelope{
		EventID:   "evt-1",
		EventType: events.TypeTurnStarted,
		DraftID:   uuid.NewString(),
		UserID:    userID.String(),
		Payload:   payload,
	})
	require.NoError(t, err)

	event, err := eventFromEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", event.ID)
	assert.Equal(t, userID.String(), event.UserID)
	assert.JSONEq(t, string(payload), string(event.Data))

	_, err = eventFromEnvelope([]byte(`{"eventType":"pick_made","userId":"x"}`))
	assert.Error(t, err)
	_, err = eventFromEnvelope([]byte(`{"eventType":"turn_started"}`))
	assert.Error(t, err)
	_, err = eventFromEnvelope([]byte(`not json`))
	assert.Error(t, err)
}
