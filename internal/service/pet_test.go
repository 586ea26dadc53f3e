package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xinzhang-hello/meet-your-dog/internal/domain"
	"github.com/xinzhang-hello/meet-your-dog/internal/repository"
	"github.com/xinzhang-hello/meet-your-dog/internal/repository/mocks"
	"github.com/xinzhang-hello/meet-your-dog/internal/service"
)

var validDrawing = domain.JSONText(`{"strokes":[{"points":[[0,0],[10,10]],"color":"#000"}]}`)

func TestPetService_CreatePet_Success(t *testing.T) {
	// Arrange
	memberRepo := new(mocks.MemberRepository)
	petRepo := new(mocks.PetRepository)
	petService := service.NewPetService(memberRepo, petRepo)
	ctx := context.Background()

	memberRepo.On("FindActive", ctx, "room-1", "user-1").
		Return(&domain.RoomMember{RoomID: "room-1", UserID: "user-1", IsActive: true}, nil).
		Once()
	petRepo.On("Create", ctx, mock.MatchedBy(func(pet *domain.Pet) bool {
		return pet.RoomID == "room-1" && pet.UserID == "user-1" && pet.Type == domain.PetTypeDog
	})).
		Run(func(args mock.Arguments) {
			petArg := args.Get(1).(*domain.Pet)
			petArg.ID = "pet-1"
			petArg.User = &domain.User{ID: "user-1", Username: "alice"}
		}).
		Return(nil).
		Once()

	// Act
	pet, err := petService.CreatePet(ctx, "room-1", "user-1", service.CreatePetInput{
		DrawingData: validDrawing,
		Type:        domain.PetTypeDog,
	})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, pet)
	assert.Equal(t, "pet-1", pet.ID)
	assert.Equal(t, domain.DefaultPetPosition, pet.Position, "position should default to the spawn point")
	require.NotNil(t, pet.User)
	assert.Equal(t, "alice", pet.User.Username)

	memberRepo.AssertExpectations(t)
	petRepo.AssertExpectations(t)
}

func TestPetService_CreatePet_ExplicitPosition(t *testing.T) {
	memberRepo := new(mocks.MemberRepository)
	petRepo := new(mocks.PetRepository)
	petService := service.NewPetService(memberRepo, petRepo)
	ctx := context.Background()
	pos := domain.Position{X: 250, Y: 40}

	memberRepo.On("FindActive", ctx, "room-1", "user-1").
		Return(&domain.RoomMember{RoomID: "room-1", UserID: "user-1", IsActive: true}, nil).Once()
	petRepo.On("Create", ctx, mock.MatchedBy(func(pet *domain.Pet) bool {
		return pet.Position == pos
	})).Return(nil).Once()

	pet, err := petService.CreatePet(ctx, "room-1", "user-1", service.CreatePetInput{
		DrawingData: validDrawing,
		Type:        domain.PetTypeCat,
		Position:    &pos,
	})

	require.NoError(t, err)
	assert.Equal(t, pos, pet.Position)
	petRepo.AssertExpectations(t)
}

func TestPetService_CreatePet_NonMemberForbidden(t *testing.T) {
	// Arrange: the caller has no active membership row
	memberRepo := new(mocks.MemberRepository)
	petRepo := new(mocks.PetRepository)
	petService := service.NewPetService(memberRepo, petRepo)
	ctx := context.Background()

	memberRepo.On("FindActive", ctx, "room-1", "outsider").
		Return(nil, repository.ErrNotFound).
		Once()

	// Act
	pet, err := petService.CreatePet(ctx, "room-1", "outsider", service.CreatePetInput{
		DrawingData: validDrawing,
		Type:        domain.PetTypeDog,
	})

	// Assert
	require.Error(t, err)
	assert.Nil(t, pet)
	assert.True(t, errors.Is(err, service.ErrNotInRoom))
	assert.Equal(t, "User not in room", err.Error())
	petRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPetService_CreatePet_ValidatesInput(t *testing.T) {
	memberRepo := new(mocks.MemberRepository)
	petRepo := new(mocks.PetRepository)
	petService := service.NewPetService(memberRepo, petRepo)
	ctx := context.Background()

	cases := []struct {
		name  string
		input service.CreatePetInput
	}{
		{"unknown type", service.CreatePetInput{DrawingData: validDrawing, Type: "dragon"}},
		{"empty type", service.CreatePetInput{DrawingData: validDrawing}},
		{"missing drawing", service.CreatePetInput{Type: domain.PetTypeDog}},
		{"null drawing", service.CreatePetInput{DrawingData: domain.JSONText("null"), Type: domain.PetTypeDog}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := petService.CreatePet(ctx, "room-1", "user-1", tc.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, service.ErrValidation))
		})
	}

	// Validation failures never reach the membership check or the store.
	memberRepo.AssertNotCalled(t, "FindActive", mock.Anything, mock.Anything, mock.Anything)
	petRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPetService_AuthorizeMove(t *testing.T) {
	memberRepo := new(mocks.MemberRepository)
	petRepo := new(mocks.PetRepository)
	petService := service.NewPetService(memberRepo, petRepo)
	ctx := context.Background()

	memberRepo.On("FindActive", ctx, "room-1", "member").
		Return(&domain.RoomMember{IsActive: true}, nil).Once()
	memberRepo.On("FindActive", ctx, "room-1", "outsider").
		Return(nil, repository.ErrNotFound).Once()

	assert.NoError(t, petService.AuthorizeMove(ctx, "room-1", "member"))
	assert.True(t, errors.Is(petService.AuthorizeMove(ctx, "room-1", "outsider"), service.ErrNotInRoom))
	memberRepo.AssertExpectations(t)
}

func TestPetService_UpdatePosition_OwnerOnly(t *testing.T) {
	// Arrange
	memberRepo := new(mocks.MemberRepository)
	petRepo := new(mocks.PetRepository)
	petService := service.NewPetService(memberRepo, petRepo)
	ctx := context.Background()
	pet := &domain.Pet{ID: "pet-1", UserID: "owner", RoomID: "room-1"}

	petRepo.On("FindByID", ctx, "pet-1").Return(pet, nil).Once()

	// Act
	updated, err := petService.UpdatePosition(ctx, "pet-1", "intruder", domain.Position{X: 1, Y: 2})

	// Assert
	require.Error(t, err)
	assert.Nil(t, updated)
	assert.True(t, errors.Is(err, service.ErrNotYourPet))
	assert.Equal(t, "Not your pet", err.Error())
	petRepo.AssertNotCalled(t, "UpdatePosition", mock.Anything, mock.Anything, mock.Anything)
}

func TestPetService_UpdatePosition_Success(t *testing.T) {
	memberRepo := new(mocks.MemberRepository)
	petRepo := new(mocks.PetRepository)
	petService := service.NewPetService(memberRepo, petRepo)
	ctx := context.Background()
	pet := &domain.Pet{ID: "pet-1", UserID: "owner", RoomID: "room-1", Position: domain.DefaultPetPosition}
	newPos := domain.Position{X: 320, Y: 87.5}

	petRepo.On("FindByID", ctx, "pet-1").Return(pet, nil).Once()
	petRepo.On("UpdatePosition", ctx, "pet-1", newPos).Return(nil).Once()

	updated, err := petService.UpdatePosition(ctx, "pet-1", "owner", newPos)

	require.NoError(t, err)
	assert.Equal(t, newPos, updated.Position)
	petRepo.AssertExpectations(t)
}

func TestPetService_UpdatePosition_PetNotFound(t *testing.T) {
	memberRepo := new(mocks.MemberRepository)
	petRepo := new(mocks.PetRepository)
	petService := service.NewPetService(memberRepo, petRepo)
	ctx := context.Background()

	petRepo.On("FindByID", ctx, "ghost").Return(nil, repository.ErrPetNotFound).Once()

	_, err := petService.UpdatePosition(ctx, "ghost", "user-1", domain.Position{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrPetNotFound))
}
