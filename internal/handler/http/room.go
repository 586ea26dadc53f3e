package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/xinzhang-hello/meet-your-dog/internal/service"
)

// RoomHandler handles the park room REST surface. Live membership
// changes go through the WebSocket layer; these endpoints cover the
// lobby (listing, creating) and state reads.
type RoomHandler struct {
	roomService *service.RoomService
	coordinator *service.RoomCoordinator
}

func NewRoomHandler(roomService *service.RoomService, coordinator *service.RoomCoordinator) *RoomHandler {
	return &RoomHandler{roomService: roomService, coordinator: coordinator}
}

type CreateRoomRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=50"`
	MaxPlayers int    `json:"maxPlayers"`
}

// ListRooms returns the active park rooms with live player counts.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.roomService.ListRooms(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("Handler.ListRooms: Failed to list rooms")
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, rooms)
}

// CreateRoom opens a new park room.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CreateRoom: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: name is required")
		return
	}

	room, err := h.roomService.CreateRoom(c.Request.Context(), req.Name, req.MaxPlayers)
	if err != nil {
		logrus.WithField("name", req.Name).WithError(err).Warn("Handler.CreateRoom: Failed to create room")
		HandleServiceError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"room_id": room.ID,
		"name":    room.Name,
	}).Info("Handler.CreateRoom: Room created successfully")
	SuccessResponse(c, http.StatusCreated, room)
}

// GetRoom returns a single room's full state: members and pets included.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID := c.Param("id")

	state, err := h.coordinator.RoomState(c.Request.Context(), roomID)
	if err != nil {
		logrus.WithField("room_id", roomID).WithError(err).Warn("Handler.GetRoom: Failed to load room state")
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, state)
}
