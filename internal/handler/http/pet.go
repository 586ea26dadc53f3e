package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/xinzhang-hello/meet-your-dog/internal/domain"
	"github.com/xinzhang-hello/meet-your-dog/internal/service"
)

// PetHandler handles the pet REST surface: creation, position updates
// and per-room listing. Realtime relays of the same operations go over
// the WebSocket layer.
type PetHandler struct {
	petService *service.PetService
}

func NewPetHandler(petService *service.PetService) *PetHandler {
	return &PetHandler{petService: petService}
}

type CreatePetRequest struct {
	RoomID      string           `json:"roomId" binding:"required"`
	DrawingData domain.JSONText  `json:"drawingData"`
	ImageData   *string          `json:"imageData"`
	Type        domain.PetType   `json:"type" binding:"required"`
	Position    *domain.Position `json:"position"`
}

type UpdatePositionRequest struct {
	Position domain.Position `json:"position" binding:"required"`
}

// CreatePet adopts a new pet into a room the caller is a member of.
func (h *PetHandler) CreatePet(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}

	var req CreatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CreatePet: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: roomId and type are required")
		return
	}

	pet, err := h.petService.CreatePet(c.Request.Context(), req.RoomID, userID, service.CreatePetInput{
		DrawingData: req.DrawingData,
		ImageData:   req.ImageData,
		Type:        req.Type,
		Position:    req.Position,
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"room_id": req.RoomID,
			"user_id": userID,
		}).WithError(err).Warn("Handler.CreatePet: Failed to create pet")
		HandleServiceError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"pet_id":  pet.ID,
		"room_id": pet.RoomID,
		"user_id": userID,
	}).Info("Handler.CreatePet: Pet created successfully")
	SuccessResponse(c, http.StatusCreated, pet)
}

// UpdatePosition moves one of the caller's own pets.
func (h *PetHandler) UpdatePosition(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}
	petID := c.Param("id")

	var req UpdatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.UpdatePosition: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: position is required")
		return
	}

	pet, err := h.petService.UpdatePosition(c.Request.Context(), petID, userID, req.Position)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"pet_id":  petID,
			"user_id": userID,
		}).WithError(err).Warn("Handler.UpdatePosition: Failed to update pet position")
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, pet)
}

// ListRoomPets returns a room's pets, oldest first. Mounted under the
// rooms group, so the room id arrives as the :id param.
func (h *PetHandler) ListRoomPets(c *gin.Context) {
	roomID := c.Param("id")

	pets, err := h.petService.ListRoomPets(c.Request.Context(), roomID)
	if err != nil {
		logrus.WithField("room_id", roomID).WithError(err).Warn("Handler.ListRoomPets: Failed to list pets")
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, pets)
}

// currentUserID pulls the authenticated user id out of the gin context.
// An empty return means the response has already been written.
func currentUserID(c *gin.Context) string {
	userIDAny, exists := c.Get("user_id")
	if !exists {
		logrus.Warn("Handler: User ID not found in context, middleware missing or failed?")
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return ""
	}
	userID, ok := userIDAny.(string)
	if !ok || userID == "" {
		logrus.Error("Handler: User ID in context is not a string")
		ErrorResponse(c, http.StatusInternalServerError, "Internal server error processing user ID")
		return ""
	}
	return userID
}
