package tasks

import (
	"encoding/json"
)

// Task type names shared between the scheduler and the worker.
const (
	// TypeRoomReconcile re-derives every active room's player count
	// from the membership rows, repairing drift left by crashes.
	TypeRoomReconcile = "room:reconcile"
)

// RoomReconcilePayload scopes a reconcile run. An empty RoomID means
// all active rooms.
type RoomReconcilePayload struct {
	RoomID string `json:"room_id,omitempty"`
}

// NewRoomReconcileTask builds the serialized payload for a reconcile
// task covering the given room, or every room when roomID is empty.
func NewRoomReconcileTask(roomID string) ([]byte, error) {
	payload := RoomReconcilePayload{RoomID: roomID}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return payloadBytes, nil
}
