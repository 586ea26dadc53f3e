package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/xinzhang-hello/meet-your-dog/internal/domain"
	"github.com/xinzhang-hello/meet-your-dog/internal/repository"
)

// GormRoomRepository is the GORM implementation of repository.RoomRepository.
type GormRoomRepository struct {
	db *gorm.DB
}

func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	if db == nil {
		panic("database connection cannot be nil for GormRoomRepository")
	}
	return &GormRoomRepository{db: db}
}

func (r *GormRoomRepository) FindByID(ctx context.Context, id string) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by id %s: %w", id, err)
	}
	return &room, nil
}

func (r *GormRoomRepository) ListActive(ctx context.Context) ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list active rooms: %w", err)
	}
	return rooms, nil
}

func (r *GormRoomRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("is_active = ?", true).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list active room ids: %w", err)
	}
	return ids, nil
}

func (r *GormRoomRepository) Save(ctx context.Context, room *domain.Room) error {
	err := r.db.WithContext(ctx).Save(room).Error
	if err != nil {
		if isDuplicateEntry(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save room (id: %s, name: %s): %w", room.ID, room.Name, err)
	}
	return nil
}

func (r *GormRoomRepository) SetPlayerCount(ctx context.Context, roomID string, count int) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("id = ?", roomID).
		Update("current_players", count).Error
	if err != nil {
		return fmt.Errorf("gorm: set player count for room %s: %w", roomID, err)
	}
	return nil
}
