package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/xinzhang-hello/meet-your-dog/internal/domain"
	"github.com/xinzhang-hello/meet-your-dog/internal/repository"
)

// GormMemberRepository is the GORM implementation of
// repository.MemberRepository. The membership transitions run inside a
// single transaction: the row mutation, the count recompute, and the room
// update either all commit or none do.
type GormMemberRepository struct {
	db *gorm.DB
}

func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMemberRepository")
	}
	return &GormMemberRepository{db: db}
}

func (r *GormMemberRepository) ActivateAndRecount(ctx context.Context, roomID, userID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member domain.RoomMember
		err := tx.Where("room_id = ? AND user_id = ?", roomID, userID).First(&member).Error
		switch {
		case err == nil:
			// Rejoin: reactivate with a fresh timestamp.
			updates := map[string]interface{}{"is_active": true, "joined_at": time.Now()}
			if err := tx.Model(&member).Updates(updates).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			member = domain.RoomMember{RoomID: roomID, UserID: userID, IsActive: true}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		default:
			return err
		}
		return recountAndStore(tx, roomID, &count)
	})
	if err != nil {
		return 0, fmt.Errorf("gorm: activate membership (room %s, user %s): %w", roomID, userID, err)
	}
	return int(count), nil
}

func (r *GormMemberRepository) DeactivateAndRecount(ctx context.Context, roomID, userID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// UpdateAll on zero matched rows is the idempotent no-op case.
		err := tx.Model(&domain.RoomMember{}).
			Where("room_id = ? AND user_id = ? AND is_active = ?", roomID, userID, true).
			Update("is_active", false).Error
		if err != nil {
			return err
		}
		return recountAndStore(tx, roomID, &count)
	})
	if err != nil {
		return 0, fmt.Errorf("gorm: deactivate membership (room %s, user %s): %w", roomID, userID, err)
	}
	return int(count), nil
}

func (r *GormMemberRepository) CountActive(ctx context.Context, roomID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.RoomMember{}).
		Where("room_id = ? AND is_active = ?", roomID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: count active members of room %s: %w", roomID, err)
	}
	return int(count), nil
}

func (r *GormMemberRepository) FindActive(ctx context.Context, roomID, userID string) (*domain.RoomMember, error) {
	var member domain.RoomMember
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ? AND is_active = ?", roomID, userID, true).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("gorm: find active membership (room %s, user %s): %w", roomID, userID, err)
	}
	return &member, nil
}

func (r *GormMemberRepository) ActiveRoomIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&domain.RoomMember{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Pluck("room_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list active rooms of user %s: %w", userID, err)
	}
	return ids, nil
}

func (r *GormMemberRepository) ListActiveWithUsers(ctx context.Context, roomID string) ([]domain.RoomMember, error) {
	var members []domain.RoomMember
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND is_active = ?", roomID, true).
		Order("joined_at ASC").
		Preload("User").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list active members of room %s: %w", roomID, err)
	}
	return members, nil
}

// recountAndStore recomputes the active count from the rows and writes it
// onto the room record, inside the caller's transaction.
func recountAndStore(tx *gorm.DB, roomID string, count *int64) error {
	err := tx.Model(&domain.RoomMember{}).
		Where("room_id = ? AND is_active = ?", roomID, true).
		Count(count).Error
	if err != nil {
		return err
	}
	return tx.Model(&domain.Room{}).
		Where("id = ?", roomID).
		Update("current_players", *count).Error
}
