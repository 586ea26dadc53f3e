// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xinzhang-hello/meet-your-dog/internal/domain"
)

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) Save(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type RoomRepository struct {
	mock.Mock
}

func (m *RoomRepository) FindByID(ctx context.Context, id string) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if room, ok := args.Get(0).(*domain.Room); ok {
		return room, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RoomRepository) ListActive(ctx context.Context) ([]domain.Room, error) {
	args := m.Called(ctx)
	if rooms, ok := args.Get(0).([]domain.Room); ok {
		return rooms, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RoomRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RoomRepository) Save(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *RoomRepository) SetPlayerCount(ctx context.Context, roomID string, count int) error {
	args := m.Called(ctx, roomID, count)
	return args.Error(0)
}

type MemberRepository struct {
	mock.Mock
}

func (m *MemberRepository) ActivateAndRecount(ctx context.Context, roomID, userID string) (int, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MemberRepository) DeactivateAndRecount(ctx context.Context, roomID, userID string) (int, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MemberRepository) CountActive(ctx context.Context, roomID string) (int, error) {
	args := m.Called(ctx, roomID)
	return args.Int(0), args.Error(1)
}

func (m *MemberRepository) FindActive(ctx context.Context, roomID, userID string) (*domain.RoomMember, error) {
	args := m.Called(ctx, roomID, userID)
	if member, ok := args.Get(0).(*domain.RoomMember); ok {
		return member, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MemberRepository) ActiveRoomIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MemberRepository) ListActiveWithUsers(ctx context.Context, roomID string) ([]domain.RoomMember, error) {
	args := m.Called(ctx, roomID)
	if members, ok := args.Get(0).([]domain.RoomMember); ok {
		return members, args.Error(1)
	}
	return nil, args.Error(1)
}

type PetRepository struct {
	mock.Mock
}

func (m *PetRepository) Create(ctx context.Context, pet *domain.Pet) error {
	args := m.Called(ctx, pet)
	return args.Error(0)
}

func (m *PetRepository) FindByID(ctx context.Context, id string) (*domain.Pet, error) {
	args := m.Called(ctx, id)
	if pet, ok := args.Get(0).(*domain.Pet); ok {
		return pet, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PetRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.Pet, error) {
	args := m.Called(ctx, roomID)
	if pets, ok := args.Get(0).([]domain.Pet); ok {
		return pets, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PetRepository) UpdatePosition(ctx context.Context, petID string, pos domain.Position) error {
	args := m.Called(ctx, petID, pos)
	return args.Error(0)
}
