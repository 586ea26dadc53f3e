package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/xinzhang-hello/meet-your-dog/internal/hub"
	"github.com/xinzhang-hello/meet-your-dog/internal/service"
)

// WebSocketHandler upgrades authenticated HTTP requests to WebSocket
// connections and hands the resulting clients to the hub.
type WebSocketHandler struct {
	upgrader    websocket.Upgrader
	hub         *hub.Hub
	authService *service.AuthService
}

func NewWebSocketHandler(h *hub.Hub, authService *service.AuthService) *WebSocketHandler {
	if h == nil {
		panic("Hub cannot be nil for WebSocketHandler")
	}
	if authService == nil {
		panic("AuthService cannot be nil for WebSocketHandler")
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// TODO: restrict origins once the frontend domain is fixed
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return &WebSocketHandler{
		upgrader:    upgrader,
		hub:         h,
		authService: authService,
	}
}

// HandleConnection authenticates, upgrades, and starts a client.
// Room membership is negotiated later over join-room events, so the
// URL carries no room id.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	userIDAny, exists := c.Get("user_id")
	if !exists {
		logrus.Warn("WS Handler: User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	userID, ok := userIDAny.(string)
	if !ok || userID == "" {
		logrus.Error("WS Handler: User ID in context is not a string")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	logCtx := logrus.WithField("user_id", userID)

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		logCtx.WithError(err).Warn("WS Handler: Unknown user on socket connect")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade writes its own HTTP error response.
		logCtx.WithError(err).Error("WS Handler: Failed to upgrade connection")
		return
	}
	logCtx = logCtx.WithField("username", user.Username)
	logCtx.Info("WS Handler: Connection upgraded to WebSocket")

	client := hub.NewClient(h.hub, conn, user.Public())

	if !h.hub.QueueMessage(hub.HubMessage{Type: "register", Client: client}) {
		logCtx.Error("WS Handler: Hub message channel full, failed to register client")
		conn.Close()
		return
	}

	client.Run()
}
