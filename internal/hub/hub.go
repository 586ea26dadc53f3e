package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/xinzhang-hello/meet-your-dog/internal/service"
)

// HubMessage is the internal queue item for connection lifecycle
// (register/unregister). Client events never ride this queue: ReadPump
// hands them to handleEvent directly so each connection stays ordered.
type HubMessage struct {
	Type   string
	Client *Client
}

const (
	messageRegister   = "register"
	messageUnregister = "unregister"
)

// Hub owns the in-memory fanout groups and routes client events to the
// services. Room membership truth lives in the coordinator; the hub's
// rooms map only tracks which live connections receive each room's events.
type Hub struct {
	messageChan chan HubMessage

	// map[roomID]map[*Client]bool
	rooms   map[string]map[*Client]bool
	roomsMu sync.RWMutex

	coordinator *service.RoomCoordinator
	pets        *service.PetService
}

func NewHub(coordinator *service.RoomCoordinator, pets *service.PetService) *Hub {
	if coordinator == nil {
		panic("RoomCoordinator cannot be nil for Hub")
	}
	if pets == nil {
		panic("PetService cannot be nil for Hub")
	}
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		rooms:       make(map[string]map[*Client]bool),
		coordinator: coordinator,
		pets:        pets,
	}
}

// Run is the hub's main loop. It must run in its own goroutine.
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	for msg := range h.messageChan {
		switch msg.Type {
		case messageRegister:
			h.registerClient(msg.Client)
		case messageUnregister:
			// Disconnect touches the database, keep the loop responsive.
			go h.handleDisconnect(msg.Client)
		default:
			log.Warnf("Received unknown message type: %s", msg.Type)
		}
	}
	log.Info("Hub is shutting down...")
}

// QueueMessage puts a message on the hub's queue without blocking.
// Returns false if the queue is full.
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithField("message_type", msg.Type).Warn("Hub message channel full, dropping message")
		return false
	}
}

func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to register a nil client")
		return
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  client.UserID(),
		"username": client.Username(),
	}).Info("Client registered to Hub")
	// Fanout subscriptions happen on join-room, nothing else to do here.
}

// handleEvent dispatches one client event. Called from the client's read
// loop, so events from a single connection are processed in arrival order.
func (h *Hub) handleEvent(client *Client, envelope Envelope) {
	ctx := context.Background()
	if client == nil {
		logrus.Error("Hub: Received event without client")
		return
	}

	switch envelope.Event {
	case EventJoinRoom:
		h.handleJoin(ctx, client, envelope.Data)
	case EventLeaveRoom:
		h.handleLeave(ctx, client, envelope.Data)
	case EventPetCreated:
		h.handlePetCreated(ctx, client, envelope.Data)
	case EventPetMoved:
		h.handlePetMoved(ctx, client, envelope.Data)
	default:
		logrus.WithFields(logrus.Fields{
			"user_id": client.UserID(),
			"event":   envelope.Event,
		}).Warn("Unknown client event")
		h.emitError(client, "Unknown event: "+envelope.Event)
	}
}

// handleJoin admits the client to a room, subscribes it to the room's
// fanout group, sends it the full room state, and announces it to the
// other members.
func (h *Hub) handleJoin(ctx context.Context, client *Client, data json.RawMessage) {
	var roomID string
	if err := json.Unmarshal(data, &roomID); err != nil || roomID == "" {
		h.emitError(client, "Invalid room id")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"room_id": roomID,
		"user_id": client.UserID(),
	})

	state, err := h.coordinator.Join(ctx, roomID, client.UserID(), client)
	if err != nil {
		logCtx.WithError(err).Warn("Join rejected")
		h.emitServiceError(client, err)
		return
	}

	h.subscribe(roomID, client)

	client.Enqueue(encodeEvent(EventRoomState, state))

	h.broadcast(roomID, encodeEvent(EventPlayerJoined, PlayerPayload{
		UserID:   client.UserID(),
		Username: client.Username(),
	}), client)

	logCtx.WithField("current_players", state.CurrentPlayers).Info("Client joined room")
}

func (h *Hub) handleLeave(ctx context.Context, client *Client, data json.RawMessage) {
	var roomID string
	if err := json.Unmarshal(data, &roomID); err != nil || roomID == "" {
		h.emitError(client, "Invalid room id")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"room_id": roomID,
		"user_id": client.UserID(),
	})

	if err := h.coordinator.Leave(ctx, roomID, client.UserID()); err != nil {
		logCtx.WithError(err).Warn("Leave failed")
		h.emitServiceError(client, err)
		return
	}

	h.unsubscribe(roomID, client)

	h.broadcast(roomID, encodeEvent(EventPlayerLeft, PlayerPayload{
		UserID:   client.UserID(),
		Username: client.Username(),
	}), client)

	logCtx.Info("Client left room")
}

// handlePetCreated persists the pet and announces it to the whole room,
// creator included, so every screen renders it from the same payload.
func (h *Hub) handlePetCreated(ctx context.Context, client *Client, data json.RawMessage) {
	var payload PetCreatePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.emitError(client, "Invalid pet payload")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"room_id": payload.RoomID,
		"user_id": client.UserID(),
	})

	pet, err := h.pets.CreatePet(ctx, payload.RoomID, client.UserID(), service.CreatePetInput{
		DrawingData: payload.DrawingData,
		ImageData:   payload.ImageData,
		Type:        payload.Type,
		Position:    payload.Position,
	})
	if err != nil {
		logCtx.WithError(err).Warn("Pet creation rejected")
		h.emitServiceError(client, err)
		return
	}

	h.broadcast(payload.RoomID, encodeEvent(EventPetCreated, pet), nil)
	logCtx.WithField("pet_id", pet.ID).Info("Pet created and broadcast")
}

// handlePetMoved relays a position update to everyone else in the room.
// The mover is excluded: its local render already moved the pet.
func (h *Hub) handlePetMoved(ctx context.Context, client *Client, data json.RawMessage) {
	var payload PetMovePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.emitError(client, "Invalid move payload")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"room_id": payload.RoomID,
		"pet_id":  payload.PetID,
		"user_id": client.UserID(),
	})

	if err := h.pets.AuthorizeMove(ctx, payload.RoomID, client.UserID()); err != nil {
		logCtx.WithError(err).Warn("Pet move rejected")
		h.emitServiceError(client, err)
		return
	}

	h.broadcast(payload.RoomID, encodeEvent(EventPetMoved, PetMovedPayload{
		PetID:    payload.PetID,
		Position: payload.Position,
		UserID:   client.UserID(),
	}), client)
	logCtx.Debug("Pet move relayed")
}

// handleDisconnect tears down a departed connection: it is dropped from
// every fanout group first, then the coordinator deactivates its durable
// memberships, then every affected room hears player-left.
func (h *Hub) handleDisconnect(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to unregister a nil client")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"user_id":  client.UserID(),
		"username": client.Username(),
	})

	h.roomsMu.Lock()
	for roomID, roomClients := range h.rooms {
		if _, ok := roomClients[client]; ok {
			delete(roomClients, client)
			if len(roomClients) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	h.roomsMu.Unlock()

	ctx := context.Background()
	leftRooms, err := h.coordinator.Disconnect(ctx, client.UserID(), client)
	if err != nil {
		logCtx.WithError(err).Error("Failed to deactivate memberships on disconnect")
	}

	for _, roomID := range leftRooms {
		h.broadcast(roomID, encodeEvent(EventPlayerLeft, PlayerPayload{
			UserID:   client.UserID(),
			Username: client.Username(),
		}), nil)
	}

	// Shut down the send queue so WritePump exits. closeSend is idempotent
	// and excludes concurrent broadcasts targeting this client.
	client.closeSend()

	logCtx.WithField("left_rooms", len(leftRooms)).Info("Client unregistered from Hub")
}

func (h *Hub) subscribe(roomID string, client *Client) {
	h.roomsMu.Lock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	h.roomsMu.Unlock()
}

func (h *Hub) unsubscribe(roomID string, client *Client) {
	h.roomsMu.Lock()
	if roomClients, ok := h.rooms[roomID]; ok {
		delete(roomClients, client)
		if len(roomClients) == 0 {
			delete(h.rooms, roomID)
		}
	}
	h.roomsMu.Unlock()
}

// broadcast sends a message to every client subscribed to the room,
// excluding sender when non-nil. A slow client never blocks the others.
func (h *Hub) broadcast(roomID string, message []byte, sender *Client) {
	if message == nil {
		return
	}

	h.roomsMu.RLock()
	roomClients, ok := h.rooms[roomID]
	clientsToSend := make([]*Client, 0, len(roomClients))
	if ok {
		for client := range roomClients {
			if client != sender {
				clientsToSend = append(clientsToSend, client)
			}
		}
	}
	h.roomsMu.RUnlock()

	if len(clientsToSend) == 0 {
		return
	}

	for _, client := range clientsToSend {
		if !client.Enqueue(message) {
			logrus.WithFields(logrus.Fields{
				"room_id":          roomID,
				"receiver_user_id": client.UserID(),
			}).Warn("Client send channel full during broadcast, skipping this client")
		}
	}
}

func (h *Hub) emitError(client *Client, message string) {
	client.Enqueue(encodeEvent(EventError, ErrorPayload{Message: message}))
}

// emitServiceError maps a service failure to the wire error payload.
// Known sentinels carry client-facing messages; anything else is masked.
func (h *Hub) emitServiceError(client *Client, err error) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrRoomFull),
		errors.Is(err, service.ErrNotInRoom),
		errors.Is(err, service.ErrPetNotFound),
		errors.Is(err, service.ErrNotYourPet),
		errors.Is(err, service.ErrValidation):
		h.emitError(client, err.Error())
	default:
		h.emitError(client, "Internal server error")
	}
}
