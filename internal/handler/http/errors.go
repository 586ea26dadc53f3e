package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/xinzhang-hello/meet-your-dog/internal/service"
)

// HandleServiceError translates a service failure into an HTTP response.
// Sentinel messages are part of the client contract and pass through as-is.
func HandleServiceError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrAuthenticationFailed) {
		ErrorResponse(c, http.StatusUnauthorized, err.Error())
	} else if errors.Is(err, service.ErrRoomNotFound) || errors.Is(err, service.ErrPetNotFound) {
		ErrorResponse(c, http.StatusNotFound, err.Error())
	} else if errors.Is(err, service.ErrRoomFull) {
		ErrorResponse(c, http.StatusConflict, err.Error())
	} else if errors.Is(err, service.ErrNotInRoom) || errors.Is(err, service.ErrNotYourPet) {
		ErrorResponse(c, http.StatusForbidden, err.Error())
	} else if errors.Is(err, service.ErrValidation) {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	} else if errors.Is(err, service.ErrTransient) {
		ErrorResponse(c, http.StatusServiceUnavailable, "Service temporarily unavailable")
	} else {
		// Log the internal error for debugging
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
