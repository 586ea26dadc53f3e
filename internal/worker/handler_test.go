package worker_test

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xinzhang-hello/meet-your-dog/internal/repository/mocks"
	"github.com/xinzhang-hello/meet-your-dog/internal/tasks"
	"github.com/xinzhang-hello/meet-your-dog/internal/worker"
)

func TestReconcileHandler_SweepsAllActiveRooms(t *testing.T) {
	// Arrange: two active rooms with drifted cached counts
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MemberRepository)
	handler := worker.NewReconcileHandler(roomRepo, memberRepo)
	ctx := context.Background()

	roomRepo.On("ListActiveIDs", ctx).Return([]string{"room-1", "room-2"}, nil).Once()
	memberRepo.On("CountActive", ctx, "room-1").Return(4, nil).Once()
	roomRepo.On("SetPlayerCount", ctx, "room-1", 4).Return(nil).Once()
	memberRepo.On("CountActive", ctx, "room-2").Return(0, nil).Once()
	roomRepo.On("SetPlayerCount", ctx, "room-2", 0).Return(nil).Once()

	payload, err := tasks.NewRoomReconcileTask("")
	require.NoError(t, err)
	task := asynq.NewTask(tasks.TypeRoomReconcile, payload)

	// Act
	err = handler.ProcessTask(ctx, task)

	// Assert
	assert.NoError(t, err)
	roomRepo.AssertExpectations(t)
	memberRepo.AssertExpectations(t)
}

func TestReconcileHandler_SingleRoom(t *testing.T) {
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MemberRepository)
	handler := worker.NewReconcileHandler(roomRepo, memberRepo)
	ctx := context.Background()

	memberRepo.On("CountActive", ctx, "room-7").Return(2, nil).Once()
	roomRepo.On("SetPlayerCount", ctx, "room-7", 2).Return(nil).Once()

	payload, err := tasks.NewRoomReconcileTask("room-7")
	require.NoError(t, err)

	err = handler.ProcessTask(ctx, asynq.NewTask(tasks.TypeRoomReconcile, payload))

	assert.NoError(t, err)
	roomRepo.AssertNotCalled(t, "ListActiveIDs", ctx)
	roomRepo.AssertExpectations(t)
}

func TestReconcileHandler_BadPayloadSkipsRetry(t *testing.T) {
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MemberRepository)
	handler := worker.NewReconcileHandler(roomRepo, memberRepo)

	err := handler.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeRoomReconcile, []byte("{not json")))

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
