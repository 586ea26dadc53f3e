package hub

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/xinzhang-hello/meet-your-dog/internal/domain"
)

// Socket event names, identical in both directions where a name appears in
// both columns of the protocol table.
const (
	// client → server
	EventJoinRoom  = "join-room"
	EventLeaveRoom = "leave-room"
	// client → server and server → client
	EventPetCreated = "pet-created"
	EventPetMoved   = "pet-moved"
	// server → client
	EventRoomState    = "room-state"
	EventPlayerJoined = "player-joined"
	EventPlayerLeft   = "player-left"
	EventError        = "error"
)

// Envelope is the wire frame for every WebSocket text message:
// {"event": <name>, "data": <payload>}. For join-room and leave-room the
// payload is the bare roomId string.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// PlayerPayload announces a join or leave to the rest of the room.
type PlayerPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// PetCreatePayload is the client's pet-created request.
type PetCreatePayload struct {
	RoomID      string           `json:"roomId"`
	DrawingData domain.JSONText  `json:"drawingData"`
	ImageData   *string          `json:"imageData,omitempty"`
	Type        domain.PetType   `json:"type"`
	Position    *domain.Position `json:"position,omitempty"`
}

// PetMovePayload is the client's pet-moved request.
type PetMovePayload struct {
	RoomID   string          `json:"roomId"`
	PetID    string          `json:"petId"`
	Position domain.Position `json:"position"`
}

// PetMovedPayload is the relayed movement sent to the room.
type PetMovedPayload struct {
	PetID    string          `json:"petId"`
	Position domain.Position `json:"position"`
	UserID   string          `json:"userId"`
}

// ErrorPayload is delivered only to the originating connection.
type ErrorPayload struct {
	Message string `json:"message"`
}

// encodeEvent frames an event for the wire. A marshal failure is a
// programming error in a payload type; it is logged and yields nil, which
// senders treat as "nothing to deliver".
func encodeEvent(event string, payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		logrus.WithError(err).WithField("event", event).Error("Failed to marshal event payload")
		return nil
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		logrus.WithError(err).WithField("event", event).Error("Failed to marshal event envelope")
		return nil
	}
	return frame
}
