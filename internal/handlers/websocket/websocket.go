// internal/handlers/websocket/websocket.go
package websocket

import (
	"net/http"

	"compliancehub-service/internal/middleware"
	"compliancehub-service/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler builds the admin stream handler. allowedOrigin
// should be the dashboard origin; upgrades from anywhere else are
// refused.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigin string, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
		logger: logger,
	}
}

// StreamSessionEvents upgrades the connection and streams session
// events. Authentication happened upstream: the route sits behind the
// session resolver and the admin gate, so the principal is present.
func (h *WebSocketHandler) StreamSessionEvents(c *gin.Context) {
	user := middleware.MustCurrentUser(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			zap.Error(err),
			zap.String("ip", c.ClientIP()),
		)
		return
	}

	client := ws.NewClient(h.hub, conn, user.ID)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
