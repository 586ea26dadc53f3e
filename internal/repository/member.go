package repository

import (
	"context"

	"github.com/xinzhang-hello/meet-your-dog/internal/domain"
)

// MemberRepository stores room-membership rows and owns the transactional
// membership transitions. Activate/Deactivate pair the row mutation with a
// recompute of the room's cached player count in a single transaction, so a
// failure never leaves the count out of step with the rows.
type MemberRepository interface {
	// ActivateAndRecount upserts the (roomID, userID) row to active with a
	// fresh joined-at timestamp, recomputes the room's active count, persists
	// it onto the room record, and returns the new count.
	ActivateAndRecount(ctx context.Context, roomID, userID string) (int, error)

	// DeactivateAndRecount flips the (roomID, userID) row inactive if it was
	// active (no-op otherwise), recomputes and persists the room's active
	// count, and returns the new count.
	DeactivateAndRecount(ctx context.Context, roomID, userID string) (int, error)

	// CountActive returns the number of active membership rows for a room.
	CountActive(ctx context.Context, roomID string) (int, error)

	// FindActive returns the active row for (roomID, userID), or ErrNotFound.
	FindActive(ctx context.Context, roomID, userID string) (*domain.RoomMember, error)

	// ActiveRoomIDs lists the rooms the user is currently an active member of.
	ActiveRoomIDs(ctx context.Context, userID string) ([]string, error)

	// ListActiveWithUsers returns a room's active members with the owning
	// user preloaded, oldest join first.
	ListActiveWithUsers(ctx context.Context, roomID string) ([]domain.RoomMember, error)
}
