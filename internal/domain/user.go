// Package domain defines the persistent data structures shared by the
// repository, service, and handler layers.
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a player account. Accounts are created lazily on first login,
// keyed by username; there is no password.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Username  string    `gorm:"uniqueIndex:idx_username;size:50;not null" json:"username"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// PublicUser is the subset of User embedded in wire payloads
// (room members, pet owners).
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Public strips everything but id and username.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}
