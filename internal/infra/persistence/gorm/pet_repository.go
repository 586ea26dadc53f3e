package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/xinzhang-hello/meet-your-dog/internal/domain"
	"github.com/xinzhang-hello/meet-your-dog/internal/repository"
)

// GormPetRepository is the GORM implementation of repository.PetRepository.
type GormPetRepository struct {
	db *gorm.DB
}

func NewGormPetRepository(db *gorm.DB) *GormPetRepository {
	if db == nil {
		panic("database connection cannot be nil for GormPetRepository")
	}
	return &GormPetRepository{db: db}
}

func (r *GormPetRepository) Create(ctx context.Context, pet *domain.Pet) error {
	if err := r.db.WithContext(ctx).Create(pet).Error; err != nil {
		return fmt.Errorf("gorm: create pet (room %s, user %s): %w", pet.RoomID, pet.UserID, err)
	}
	// Reload with the owner so broadcasts carry {id, username}.
	err := r.db.WithContext(ctx).Preload("User").First(pet, "id = ?", pet.ID).Error
	if err != nil {
		return fmt.Errorf("gorm: reload pet %s: %w", pet.ID, err)
	}
	return nil
}

func (r *GormPetRepository) FindByID(ctx context.Context, id string) (*domain.Pet, error) {
	var pet domain.Pet
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&pet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPetNotFound
		}
		return nil, fmt.Errorf("gorm: find pet by id %s: %w", id, err)
	}
	return &pet, nil
}

func (r *GormPetRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.Pet, error) {
	var pets []domain.Pet
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Preload("User").
		Find(&pets).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list pets of room %s: %w", roomID, err)
	}
	return pets, nil
}

func (r *GormPetRepository) UpdatePosition(ctx context.Context, petID string, pos domain.Position) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Pet{}).
		Where("id = ?", petID).
		Update("position", pos).Error
	if err != nil {
		return fmt.Errorf("gorm: update position of pet %s: %w", petID, err)
	}
	return nil
}
