package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/xinzhang-hello/meet-your-dog/internal/domain"
	"github.com/xinzhang-hello/meet-your-dog/internal/repository"
)

// PetService is the admission gate for pet state: only active members of a
// room may create pets in it or relay movement through it. It never touches
// memberships or player counts.
type PetService struct {
	memberRepo repository.MemberRepository
	petRepo    repository.PetRepository
}

func NewPetService(memberRepo repository.MemberRepository, petRepo repository.PetRepository) *PetService {
	if memberRepo == nil {
		panic("MemberRepository cannot be nil for PetService")
	}
	if petRepo == nil {
		panic("PetRepository cannot be nil for PetService")
	}
	return &PetService{memberRepo: memberRepo, petRepo: petRepo}
}

// CreatePetInput carries a creation request from either the socket or the
// REST surface.
type CreatePetInput struct {
	DrawingData domain.JSONText  `json:"drawingData"`
	ImageData   *string          `json:"imageData,omitempty"`
	Type        domain.PetType   `json:"type"`
	Position    *domain.Position `json:"position,omitempty"`
}

// CreatePet validates the input, confirms the creator is an active member
// of the room, and persists the pet. Position defaults to the fixed spawn
// point when omitted.
func (s *PetService) CreatePet(ctx context.Context, roomID, userID string, input CreatePetInput) (*domain.Pet, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID})

	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: pet type must be dog or cat", ErrValidation)
	}
	if input.DrawingData.IsEmpty() {
		return nil, fmt.Errorf("%w: drawingData is required", ErrValidation)
	}

	if err := s.requireActiveMember(ctx, roomID, userID); err != nil {
		return nil, err
	}

	position := domain.DefaultPetPosition
	if input.Position != nil {
		position = *input.Position
	}

	pet := &domain.Pet{
		UserID:      userID,
		RoomID:      roomID,
		DrawingData: input.DrawingData,
		ImageData:   input.ImageData,
		Type:        input.Type,
		Position:    position,
	}
	if err := s.petRepo.Create(ctx, pet); err != nil {
		logCtx.WithError(err).Error("Failed to create pet")
		return nil, ErrTransient
	}

	logCtx.WithFields(logrus.Fields{"pet_id": pet.ID, "type": pet.Type}).Info("Pet created")
	return pet, nil
}

// AuthorizeMove checks that the mover is an active member of the room, so a
// non-member cannot inject spoofed positions into other clients' views.
// Movement itself is an ephemeral relay and is not persisted here.
func (s *PetService) AuthorizeMove(ctx context.Context, roomID, userID string) error {
	return s.requireActiveMember(ctx, roomID, userID)
}

// UpdatePosition durably moves a pet via the REST surface. Only the owner
// may do this.
func (s *PetService) UpdatePosition(ctx context.Context, petID, userID string, pos domain.Position) (*domain.Pet, error) {
	pet, err := s.petRepo.FindByID(ctx, petID)
	if err != nil {
		if errors.Is(err, repository.ErrPetNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, ErrTransient
	}
	if pet.UserID != userID {
		return nil, ErrNotYourPet
	}
	if err := s.petRepo.UpdatePosition(ctx, petID, pos); err != nil {
		logrus.WithError(err).WithField("pet_id", petID).Error("Failed to update pet position")
		return nil, ErrTransient
	}
	pet.Position = pos
	return pet, nil
}

// ListRoomPets returns every pet in a room, oldest first.
func (s *PetService) ListRoomPets(ctx context.Context, roomID string) ([]domain.Pet, error) {
	pets, err := s.petRepo.ListByRoom(ctx, roomID)
	if err != nil {
		logrus.WithError(err).WithField("room_id", roomID).Error("Failed to list pets")
		return nil, ErrTransient
	}
	return pets, nil
}

func (s *PetService) requireActiveMember(ctx context.Context, roomID, userID string) error {
	_, err := s.memberRepo.FindActive(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotInRoom
		}
		logrus.WithError(err).WithFields(logrus.Fields{"room_id": roomID, "user_id": userID}).
			Error("Failed to check membership")
		return ErrTransient
	}
	return nil
}
