package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/xinzhang-hello/meet-your-dog/internal/repository"
	"github.com/xinzhang-hello/meet-your-dog/internal/tasks"
)

// ReconcileHandler repairs rooms.current_players by recounting the
// active membership rows. Counts can drift when the process dies
// between a membership write and a count write.
type ReconcileHandler struct {
	roomRepo   repository.RoomRepository
	memberRepo repository.MemberRepository
}

func NewReconcileHandler(roomRepo repository.RoomRepository, memberRepo repository.MemberRepository) *ReconcileHandler {
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for ReconcileHandler")
	}
	if memberRepo == nil {
		panic("MemberRepository cannot be nil for ReconcileHandler")
	}
	return &ReconcileHandler{roomRepo: roomRepo, memberRepo: memberRepo}
}

// ProcessTask implements asynq.Handler.
func (h *ReconcileHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())
	logCtx.Info("Processing room reconcile task...")

	var payload tasks.RoomReconcilePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logCtx.WithError(err).Error("Failed to unmarshal task payload")
			return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	roomIDs := []string{payload.RoomID}
	if payload.RoomID == "" {
		ids, err := h.roomRepo.ListActiveIDs(ctx)
		if err != nil {
			logCtx.WithError(err).Error("Failed to list active rooms")
			return fmt.Errorf("failed to list active rooms: %w", err)
		}
		roomIDs = ids
	}

	repaired := 0
	for _, roomID := range roomIDs {
		count, err := h.memberRepo.CountActive(ctx, roomID)
		if err != nil {
			logCtx.WithField("room_id", roomID).WithError(err).Error("Failed to count active members")
			return fmt.Errorf("failed to count members for room %s: %w", roomID, err)
		}
		if err := h.roomRepo.SetPlayerCount(ctx, roomID, count); err != nil {
			logCtx.WithField("room_id", roomID).WithError(err).Error("Failed to store player count")
			return fmt.Errorf("failed to store count for room %s: %w", roomID, err)
		}
		repaired++
	}

	logCtx.WithField("rooms", repaired).Info("Room reconcile task processed successfully")
	return nil
}
