package handlers

import (
	"net/http"

	"github.com/dom/jbf-storefront/internal/api/middleware"
	"github.com/dom/jbf-storefront/internal/websocket"
	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	hub      *websocket.Hub
	auth     middleware.Authenticator
	upgrader ws.Upgrader
	logger   *zap.Logger
}

func NewWebSocketHandler(hub *websocket.Hub, auth middleware.Authenticator, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:  hub,
		auth: auth,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, a := range allowedOrigins {
					if a == "*" || a == origin {
						return true
					}
				}
				return false
			},
		},
		logger: logger,
	}
}

// Handle upgrades an authenticated admin to the live feed. Browsers cannot
// set headers on websocket requests, so the token comes from the query.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if t, ok := middleware.BearerToken(r); ok {
			token = t
		}
	}
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Token required", Kind: "unauthorized"})
		return
	}

	session, err := h.auth.Authenticate(r.Context(), token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired token", Kind: "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, conn, session.Subject.ID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
