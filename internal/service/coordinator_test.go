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
	"github.com/xinzhang-hello/meet-your-dog/internal/session"
)

// fakeConn satisfies session.Conn for coordinator tests. The padding field
// keeps it nonzero-size so distinct instances have distinct addresses and
// registry identity checks behave as they do for real connections.
type fakeConn struct{ _ byte }

func (f *fakeConn) Enqueue(message []byte) bool { return true }

func newCoordinator(t *testing.T) (*service.RoomCoordinator, *mocks.RoomRepository, *mocks.MemberRepository, *mocks.PetRepository, *session.Registry) {
	t.Helper()
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MemberRepository)
	petRepo := new(mocks.PetRepository)
	registry := session.NewRegistry()
	coordinator := service.NewRoomCoordinator(roomRepo, memberRepo, petRepo, registry)
	return coordinator, roomRepo, memberRepo, petRepo, registry
}

func TestRoomCoordinator_Join_Success(t *testing.T) {
	// Arrange
	coordinator, roomRepo, memberRepo, petRepo, registry := newCoordinator(t)
	ctx := context.Background()
	room := &domain.Room{ID: "room-1", Name: "Sunny Park", MaxPlayers: 10, IsActive: true}
	conn := &fakeConn{}

	roomRepo.On("FindByID", ctx, "room-1").Return(room, nil).Once()
	memberRepo.On("CountActive", ctx, "room-1").Return(0, nil).Once()
	memberRepo.On("ActivateAndRecount", ctx, "room-1", "user-1").Return(1, nil).Once()
	memberRepo.On("ListActiveWithUsers", ctx, "room-1").Return([]domain.RoomMember{
		{RoomID: "room-1", UserID: "user-1", IsActive: true, User: &domain.User{ID: "user-1", Username: "alice"}},
	}, nil).Once()
	petRepo.On("ListByRoom", ctx, "room-1").Return([]domain.Pet{}, nil).Once()

	// Act
	state, err := coordinator.Join(ctx, "room-1", "user-1", conn)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "room-1", state.ID)
	assert.Equal(t, 1, state.CurrentPlayers)
	require.Len(t, state.RoomMembers, 1)
	assert.Equal(t, "alice", state.RoomMembers[0].User.Username)
	assert.Empty(t, state.Pets)

	// The session registry now tracks the connection.
	got, ok := registry.Get("user-1")
	assert.True(t, ok)
	assert.Same(t, session.Conn(conn), got)

	roomRepo.AssertExpectations(t)
	memberRepo.AssertExpectations(t)
	petRepo.AssertExpectations(t)
}

func TestRoomCoordinator_Join_RoomFull(t *testing.T) {
	// Arrange: two seats, both taken
	coordinator, roomRepo, memberRepo, _, _ := newCoordinator(t)
	ctx := context.Background()
	room := &domain.Room{ID: "room-1", MaxPlayers: 2, IsActive: true}

	roomRepo.On("FindByID", ctx, "room-1").Return(room, nil).Once()
	memberRepo.On("CountActive", ctx, "room-1").Return(2, nil).Once()

	// Act
	state, err := coordinator.Join(ctx, "room-1", "user-3", &fakeConn{})

	// Assert
	require.Error(t, err)
	assert.Nil(t, state)
	assert.True(t, errors.Is(err, service.ErrRoomFull))
	assert.Equal(t, "Room is full", err.Error())
	memberRepo.AssertNotCalled(t, "ActivateAndRecount", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoomCoordinator_Join_CapacityCountsDurableMembers(t *testing.T) {
	// Arrange: a two-seat room filling up one join at a time
	coordinator, roomRepo, memberRepo, petRepo, _ := newCoordinator(t)
	ctx := context.Background()
	room := &domain.Room{ID: "room-1", MaxPlayers: 2, IsActive: true}

	roomRepo.On("FindByID", ctx, "room-1").Return(room, nil).Times(4)
	memberRepo.On("CountActive", ctx, "room-1").Return(0, nil).Once()
	memberRepo.On("ActivateAndRecount", ctx, "room-1", "user-1").Return(1, nil).Once()
	memberRepo.On("CountActive", ctx, "room-1").Return(1, nil).Once()
	memberRepo.On("ActivateAndRecount", ctx, "room-1", "user-2").Return(2, nil).Once()
	memberRepo.On("CountActive", ctx, "room-1").Return(2, nil).Once()
	memberRepo.On("ListActiveWithUsers", ctx, "room-1").Return([]domain.RoomMember{}, nil).Times(3)
	petRepo.On("ListByRoom", ctx, "room-1").Return([]domain.Pet{}, nil).Times(3)

	// Act
	_, err1 := coordinator.Join(ctx, "room-1", "user-1", &fakeConn{})
	_, err2 := coordinator.Join(ctx, "room-1", "user-2", &fakeConn{})
	_, err3 := coordinator.Join(ctx, "room-1", "user-3", &fakeConn{})

	// Assert: the third join bounces off the full room
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.True(t, errors.Is(err3, service.ErrRoomFull))

	// user-1 leaves, freeing a seat, and user-3's retry lands in it.
	memberRepo.On("DeactivateAndRecount", ctx, "room-1", "user-1").Return(1, nil).Once()
	memberRepo.On("CountActive", ctx, "room-1").Return(1, nil).Once()
	memberRepo.On("ActivateAndRecount", ctx, "room-1", "user-3").Return(2, nil).Once()

	require.NoError(t, coordinator.Leave(ctx, "room-1", "user-1"))
	state, err := coordinator.Join(ctx, "room-1", "user-3", &fakeConn{})
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentPlayers)

	memberRepo.AssertExpectations(t)
}

func TestRoomCoordinator_Join_RoomNotFound(t *testing.T) {
	coordinator, roomRepo, _, _, _ := newCoordinator(t)
	ctx := context.Background()

	roomRepo.On("FindByID", ctx, "ghost").Return(nil, repository.ErrRoomNotFound).Once()

	_, err := coordinator.Join(ctx, "ghost", "user-1", &fakeConn{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrRoomNotFound))
	assert.Equal(t, "Room not found", err.Error())
}

func TestRoomCoordinator_Join_InactiveRoomIsNotFound(t *testing.T) {
	coordinator, roomRepo, _, _, _ := newCoordinator(t)
	ctx := context.Background()
	room := &domain.Room{ID: "room-1", MaxPlayers: 10, IsActive: false}

	roomRepo.On("FindByID", ctx, "room-1").Return(room, nil).Once()

	_, err := coordinator.Join(ctx, "room-1", "user-1", &fakeConn{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrRoomNotFound))
}

func TestRoomCoordinator_Leave_IsIdempotent(t *testing.T) {
	// Arrange: leaving twice deactivates twice, both calls no-op safe
	coordinator, _, memberRepo, _, _ := newCoordinator(t)
	ctx := context.Background()

	memberRepo.On("DeactivateAndRecount", ctx, "room-1", "user-1").Return(0, nil).Times(2)

	// Act
	err1 := coordinator.Leave(ctx, "room-1", "user-1")
	err2 := coordinator.Leave(ctx, "room-1", "user-1")

	// Assert
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	memberRepo.AssertExpectations(t)
}

func TestRoomCoordinator_Disconnect_LeavesEveryActiveRoom(t *testing.T) {
	// Arrange
	coordinator, _, memberRepo, _, registry := newCoordinator(t)
	ctx := context.Background()
	conn := &fakeConn{}
	registry.Set("user-1", conn)

	memberRepo.On("ActiveRoomIDs", ctx, "user-1").Return([]string{"room-1", "room-2"}, nil).Once()
	memberRepo.On("DeactivateAndRecount", ctx, "room-1", "user-1").Return(0, nil).Once()
	memberRepo.On("DeactivateAndRecount", ctx, "room-2", "user-1").Return(3, nil).Once()

	// Act
	left, err := coordinator.Disconnect(ctx, "user-1", conn)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"room-1", "room-2"}, left)
	_, stillRegistered := registry.Get("user-1")
	assert.False(t, stillRegistered)
	memberRepo.AssertExpectations(t)
}

func TestRoomCoordinator_Disconnect_SupersededConnectionIsIgnored(t *testing.T) {
	// Arrange: a reconnect replaced the registry entry before the old
	// connection's teardown ran
	coordinator, _, memberRepo, _, registry := newCoordinator(t)
	ctx := context.Background()
	oldConn := &fakeConn{}
	newConn := &fakeConn{}
	registry.Set("user-1", oldConn)
	registry.Set("user-1", newConn)

	// Act
	left, err := coordinator.Disconnect(ctx, "user-1", oldConn)

	// Assert: nothing is torn down and the fresh session survives
	assert.NoError(t, err)
	assert.Empty(t, left)
	got, ok := registry.Get("user-1")
	assert.True(t, ok)
	assert.Same(t, session.Conn(newConn), got)
	memberRepo.AssertNotCalled(t, "ActiveRoomIDs", mock.Anything, mock.Anything)
	memberRepo.AssertNotCalled(t, "DeactivateAndRecount", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoomCoordinator_Disconnect_SecondCallFindsNothing(t *testing.T) {
	// Arrange
	coordinator, _, memberRepo, _, registry := newCoordinator(t)
	ctx := context.Background()
	registry.Set("user-1", &fakeConn{})

	memberRepo.On("ActiveRoomIDs", ctx, "user-1").Return([]string{"room-1"}, nil).Once()
	memberRepo.On("DeactivateAndRecount", ctx, "room-1", "user-1").Return(0, nil).Once()
	memberRepo.On("ActiveRoomIDs", ctx, "user-1").Return([]string{}, nil).Once()

	// Act
	left1, err1 := coordinator.Disconnect(ctx, "user-1", nil)
	left2, err2 := coordinator.Disconnect(ctx, "user-1", nil)

	// Assert
	assert.NoError(t, err1)
	assert.Equal(t, []string{"room-1"}, left1)
	assert.NoError(t, err2)
	assert.Empty(t, left2)
	memberRepo.AssertExpectations(t)
}

func TestRoomCoordinator_RoomState_NotFound(t *testing.T) {
	coordinator, roomRepo, _, _, _ := newCoordinator(t)
	ctx := context.Background()

	roomRepo.On("FindByID", ctx, "ghost").Return(nil, repository.ErrRoomNotFound).Once()

	_, err := coordinator.RoomState(ctx, "ghost")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrRoomNotFound))
}
