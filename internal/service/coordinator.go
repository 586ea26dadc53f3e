package service

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/xinzhang-hello/meet-your-dog/internal/domain"
	"github.com/xinzhang-hello/meet-your-dog/internal/repository"
	"github.com/xinzhang-hello/meet-your-dog/internal/session"
)

// RoomCoordinator serializes all membership-affecting operations per room,
// so the capacity check is always atomic with the membership write and the
// count recompute. Player counts are recomputed from the membership rows on
// every transition; they are never incremented or decremented in place,
// which keeps repeated or concurrent disconnects from double-counting.
type RoomCoordinator struct {
	roomRepo   repository.RoomRepository
	memberRepo repository.MemberRepository
	petRepo    repository.PetRepository
	registry   *session.Registry

	mu        sync.Mutex
	roomLocks map[string]*sync.Mutex
}

func NewRoomCoordinator(
	roomRepo repository.RoomRepository,
	memberRepo repository.MemberRepository,
	petRepo repository.PetRepository,
	registry *session.Registry,
) *RoomCoordinator {
	if roomRepo == nil || memberRepo == nil || petRepo == nil {
		panic("repositories cannot be nil for RoomCoordinator")
	}
	if registry == nil {
		panic("session registry cannot be nil for RoomCoordinator")
	}
	return &RoomCoordinator{
		roomRepo:   roomRepo,
		memberRepo: memberRepo,
		petRepo:    petRepo,
		registry:   registry,
		roomLocks:  make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding a room's membership transitions,
// creating it on first use. Locks are never released back; the per-room
// footprint is one mutex.
func (c *RoomCoordinator) lockFor(roomID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.roomLocks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		c.roomLocks[roomID] = lock
	}
	return lock
}

// Join admits a user into a room: capacity check against the durable count,
// membership upsert with count recompute, session registration, and finally
// the full room state for the caller to replay to the joining client.
func (c *RoomCoordinator) Join(ctx context.Context, roomID, userID string, conn session.Conn) (*domain.RoomState, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID})

	lock := c.lockFor(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		logCtx.WithError(err).Error("Join: failed to load room")
		return nil, ErrTransient
	}
	if !room.IsActive {
		return nil, ErrRoomNotFound
	}

	count, err := c.memberRepo.CountActive(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("Join: failed to count active members")
		return nil, ErrTransient
	}
	if count >= room.MaxPlayers {
		logCtx.WithFields(logrus.Fields{"count": count, "max": room.MaxPlayers}).Warn("Join rejected: room full")
		return nil, ErrRoomFull
	}

	newCount, err := c.memberRepo.ActivateAndRecount(ctx, roomID, userID)
	if err != nil {
		logCtx.WithError(err).Error("Join: failed to activate membership")
		return nil, ErrTransient
	}

	// The registry entry replaces any prior connection for this user; the
	// superseded connection's cleanup happens when it disconnects.
	c.registry.Set(userID, conn)

	state, err := c.buildRoomState(ctx, room, newCount)
	if err != nil {
		logCtx.WithError(err).Error("Join: failed to assemble room state")
		return nil, ErrTransient
	}

	logCtx.WithField("current_players", newCount).Info("User joined room")
	return state, nil
}

// Leave deactivates the user's membership and recomputes the count. Leaving
// a room one is not in is a no-op, not an error. The session entry is left
// alone: the user may still be connected and active in other rooms.
func (c *RoomCoordinator) Leave(ctx context.Context, roomID, userID string) error {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID})

	lock := c.lockFor(roomID)
	lock.Lock()
	defer lock.Unlock()

	count, err := c.memberRepo.DeactivateAndRecount(ctx, roomID, userID)
	if err != nil {
		logCtx.WithError(err).Error("Leave: failed to deactivate membership")
		return ErrTransient
	}

	logCtx.WithField("current_players", count).Info("User left room")
	return nil
}

// Disconnect treats a closed connection as a leave from every room the user
// is an active member of, then drops the session entry. It is idempotent:
// the second call finds no active memberships and recomputation cannot
// double-decrement. When conn is non-nil and no longer the registered
// session, the connection was superseded and nothing is torn down.
func (c *RoomCoordinator) Disconnect(ctx context.Context, userID string, conn session.Conn) ([]string, error) {
	logCtx := logrus.WithField("user_id", userID)

	if conn != nil {
		if !c.registry.RemoveConn(userID, conn) {
			logCtx.Debug("Disconnect: connection already superseded, skipping")
			return nil, nil
		}
	} else {
		c.registry.Remove(userID)
	}

	roomIDs, err := c.memberRepo.ActiveRoomIDs(ctx, userID)
	if err != nil {
		logCtx.WithError(err).Error("Disconnect: failed to list active rooms")
		return nil, ErrTransient
	}

	left := make([]string, 0, len(roomIDs))
	for _, roomID := range roomIDs {
		lock := c.lockFor(roomID)
		lock.Lock()
		_, err := c.memberRepo.DeactivateAndRecount(ctx, roomID, userID)
		lock.Unlock()
		if err != nil {
			logCtx.WithError(err).WithField("room_id", roomID).Error("Disconnect: failed to deactivate membership")
			return left, ErrTransient
		}
		left = append(left, roomID)
	}

	logCtx.WithField("rooms_left", len(left)).Info("User disconnected")
	return left, nil
}

// RoomState is the pure read: active members with display names plus every
// pet ever created in the room.
func (c *RoomCoordinator) RoomState(ctx context.Context, roomID string) (*domain.RoomState, error) {
	room, err := c.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, ErrTransient
	}
	state, err := c.buildRoomState(ctx, room, room.CurrentPlayers)
	if err != nil {
		return nil, ErrTransient
	}
	return state, nil
}

func (c *RoomCoordinator) buildRoomState(ctx context.Context, room *domain.Room, currentPlayers int) (*domain.RoomState, error) {
	members, err := c.memberRepo.ListActiveWithUsers(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	pets, err := c.petRepo.ListByRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	return &domain.RoomState{
		ID:             room.ID,
		Name:           room.Name,
		MaxPlayers:     room.MaxPlayers,
		CurrentPlayers: currentPlayers,
		IsActive:       room.IsActive,
		CreatedAt:      room.CreatedAt,
		RoomMembers:    members,
		Pets:           pets,
	}, nil
}
