package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoomMember is the durable record of a user's participation in a room.
// There is at most one row per (room, user) pair; leaving or disconnecting
// flips IsActive off instead of deleting the row, so join history survives.
type RoomMember struct {
	ID       string    `gorm:"primaryKey;size:36" json:"id"`
	RoomID   string    `gorm:"size:36;not null;uniqueIndex:idx_room_user" json:"roomId"`
	UserID   string    `gorm:"size:36;not null;uniqueIndex:idx_room_user;index:idx_member_user" json:"userId"`
	IsActive bool      `gorm:"index;not null;default:true" json:"isActive"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joinedAt"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (m *RoomMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
