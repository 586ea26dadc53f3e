package repository

import (
	"context"

	"github.com/xinzhang-hello/meet-your-dog/internal/domain"
)

// RoomRepository stores rooms and their cached player counts.
type RoomRepository interface {
	// FindByID returns ErrRoomNotFound when the room does not exist.
	FindByID(ctx context.Context, id string) (*domain.Room, error)

	// ListActive returns all rooms flagged active, newest first.
	ListActive(ctx context.Context) ([]domain.Room, error)

	// ListActiveIDs returns the ids of all active rooms (reconciliation sweep).
	ListActiveIDs(ctx context.Context) ([]string, error)

	// Save creates the room when its ID is empty, updates it otherwise.
	Save(ctx context.Context, room *domain.Room) error

	// SetPlayerCount persists a recomputed current_players value.
	SetPlayerCount(ctx context.Context, roomID string, count int) error
}
