package repository

import (
	"context"

	"github.com/xinzhang-hello/meet-your-dog/internal/domain"
)

// PetRepository stores drawn pets.
type PetRepository interface {
	// Create persists a new pet and reloads it with the owner preloaded.
	Create(ctx context.Context, pet *domain.Pet) error

	// FindByID returns ErrPetNotFound when the pet does not exist.
	FindByID(ctx context.Context, id string) (*domain.Pet, error)

	// ListByRoom returns every pet ever created in a room, oldest first,
	// with owners preloaded.
	ListByRoom(ctx context.Context, roomID string) ([]domain.Pet, error)

	// UpdatePosition persists a pet's durable position.
	UpdatePosition(ctx context.Context, petID string, pos domain.Position) error
}
