package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xinzhang-hello/meet-your-dog/internal/domain"
	"github.com/xinzhang-hello/meet-your-dog/internal/repository"
)

const (
	minRoomCapacity     = 2
	maxRoomCapacity     = 20
	defaultRoomCapacity = 10
)

// RoomService covers the room CRUD surface (create, list, detail). Live
// membership transitions belong to the RoomCoordinator.
type RoomService struct {
	roomRepo   repository.RoomRepository
	memberRepo repository.MemberRepository
}

func NewRoomService(roomRepo repository.RoomRepository, memberRepo repository.MemberRepository) *RoomService {
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for RoomService")
	}
	if memberRepo == nil {
		panic("MemberRepository cannot be nil for RoomService")
	}
	return &RoomService{roomRepo: roomRepo, memberRepo: memberRepo}
}

// CreateRoom creates a new active room. A zero maxPlayers selects the
// default capacity.
func (s *RoomService) CreateRoom(ctx context.Context, name string, maxPlayers int) (*domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 {
		return nil, fmt.Errorf("%w: room name must be 1-50 characters", ErrValidation)
	}
	if maxPlayers == 0 {
		maxPlayers = defaultRoomCapacity
	}
	if maxPlayers < minRoomCapacity || maxPlayers > maxRoomCapacity {
		return nil, fmt.Errorf("%w: maxPlayers must be between %d and %d",
			ErrValidation, minRoomCapacity, maxRoomCapacity)
	}

	room := &domain.Room{
		Name:       name,
		MaxPlayers: maxPlayers,
		IsActive:   true,
	}
	if err := s.roomRepo.Save(ctx, room); err != nil {
		logrus.WithError(err).WithField("name", name).Error("Failed to save new room")
		return nil, ErrTransient
	}

	logrus.WithFields(logrus.Fields{"room_id": room.ID, "name": name}).Info("Room created")
	return room, nil
}

// RoomSummary is the list-view projection of a room.
type RoomSummary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	MaxPlayers     int       `json:"maxPlayers"`
	CurrentPlayers int       `json:"currentPlayers"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ListRooms returns all active rooms, newest first, with player counts
// recomputed from the membership rows rather than read from the cache.
func (s *RoomService) ListRooms(ctx context.Context) ([]RoomSummary, error) {
	rooms, err := s.roomRepo.ListActive(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to list active rooms")
		return nil, ErrTransient
	}

	summaries := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		count, err := s.memberRepo.CountActive(ctx, room.ID)
		if err != nil {
			logrus.WithError(err).WithField("room_id", room.ID).Error("Failed to count members")
			return nil, ErrTransient
		}
		summaries = append(summaries, RoomSummary{
			ID:             room.ID,
			Name:           room.Name,
			MaxPlayers:     room.MaxPlayers,
			CurrentPlayers: count,
			CreatedAt:      room.CreatedAt,
		})
	}
	return summaries, nil
}
