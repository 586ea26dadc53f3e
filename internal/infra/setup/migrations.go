package setup

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/xinzhang-hello/meet-your-dog/internal/domain"
)

// MigrateDB creates or updates the schema for all persistent models.
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Room{},
		&domain.RoomMember{},
		&domain.Pet{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate tables: %w", err)
	}
	return nil
}
