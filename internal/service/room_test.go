package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xinzhang-hello/meet-your-dog/internal/domain"
	"github.com/xinzhang-hello/meet-your-dog/internal/repository/mocks"
	"github.com/xinzhang-hello/meet-your-dog/internal/service"
)

func TestRoomService_CreateRoom_Defaults(t *testing.T) {
	// Arrange
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MemberRepository)
	roomService := service.NewRoomService(roomRepo, memberRepo)
	ctx := context.Background()

	roomRepo.On("Save", ctx, mock.MatchedBy(func(room *domain.Room) bool {
		return room.Name == "Sunny Park" && room.MaxPlayers == 10 && room.IsActive
	})).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Room).ID = "room-1"
		}).
		Return(nil).
		Once()

	// Act: zero maxPlayers picks the default capacity
	room, err := roomService.CreateRoom(ctx, "Sunny Park", 0)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "room-1", room.ID)
	assert.Equal(t, 10, room.MaxPlayers)
	assert.True(t, room.IsActive)
	roomRepo.AssertExpectations(t)
}

func TestRoomService_CreateRoom_Validation(t *testing.T) {
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MemberRepository)
	roomService := service.NewRoomService(roomRepo, memberRepo)
	ctx := context.Background()

	cases := []struct {
		name       string
		roomName   string
		maxPlayers int
	}{
		{"empty name", "", 10},
		{"blank name", "   ", 10},
		{"capacity too small", "Park", 1},
		{"capacity too large", "Park", 21},
		{"negative capacity", "Park", -3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := roomService.CreateRoom(ctx, tc.roomName, tc.maxPlayers)
			require.Error(t, err)
			assert.True(t, errors.Is(err, service.ErrValidation))
		})
	}

	roomRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRoomService_ListRooms_RecomputesCounts(t *testing.T) {
	// Arrange: the cached counts on the rooms are stale on purpose
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MemberRepository)
	roomService := service.NewRoomService(roomRepo, memberRepo)
	ctx := context.Background()

	roomRepo.On("ListActive", ctx).Return([]domain.Room{
		{ID: "room-1", Name: "Sunny Park", MaxPlayers: 10, CurrentPlayers: 99},
		{ID: "room-2", Name: "Night Park", MaxPlayers: 4, CurrentPlayers: 99},
	}, nil).Once()
	memberRepo.On("CountActive", ctx, "room-1").Return(3, nil).Once()
	memberRepo.On("CountActive", ctx, "room-2").Return(0, nil).Once()

	// Act
	summaries, err := roomService.ListRooms(ctx)

	// Assert: counts come from the membership rows, not the cache
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 3, summaries[0].CurrentPlayers)
	assert.Equal(t, 0, summaries[1].CurrentPlayers)
	roomRepo.AssertExpectations(t)
	memberRepo.AssertExpectations(t)
}
