package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Room is a bounded multiplayer session. CurrentPlayers is a denormalized
// cache of the active membership count; it is recomputed from room_members
// on every membership transition, never incremented in place.
type Room struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Name           string    `gorm:"size:50;not null" json:"name"`
	MaxPlayers     int       `gorm:"not null;default:10" json:"maxPlayers"`
	CurrentPlayers int       `gorm:"not null;default:0" json:"currentPlayers"`
	IsActive       bool      `gorm:"index;not null;default:true" json:"isActive"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// RoomState is the full snapshot replayed to a joining client and served
// by GET /api/rooms/:id. Shapes mirror the wire contract exactly.
type RoomState struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	MaxPlayers     int          `json:"maxPlayers"`
	CurrentPlayers int          `json:"currentPlayers"`
	IsActive       bool         `json:"isActive"`
	CreatedAt      time.Time    `json:"createdAt"`
	RoomMembers    []RoomMember `json:"roomMembers"`
	Pets           []Pet        `json:"pets"`
}
