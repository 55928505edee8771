package gateway

import (
	"net/http"

	"github.com/mcdev12/gridpick/go/internal/auth"
	"github.com/mcdev12/gridpick/go/internal/httputil"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades authenticated requests to turn-event sockets
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{connectionManager: cm}
}

// HandleConnection expects the caller to be authenticated already. Browsers
// cannot set headers on a websocket handshake, so the token usually arrives
// as the token query parameter.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFrom(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	// Upgrade writes its own error response
	if err := h.connectionManager.UpgradeConnection(w, r, userID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID.String()).
			Msg("failed to upgrade WebSocket connection")
	}
}

func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.connectionManager.Stats())
}
