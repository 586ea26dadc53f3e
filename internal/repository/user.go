// Package repository declares the durable-store contracts consumed by the
// service layer. Implementations live in internal/infra/persistence.
package repository

import (
	"context"

	"github.com/xinzhang-hello/meet-your-dog/internal/domain"
)

// UserRepository stores player accounts.
type UserRepository interface {
	// FindByUsername returns ErrUserNotFound when no account exists.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByID returns ErrUserNotFound when no account exists.
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// Save creates the user when its ID is empty, updates it otherwise.
	// Returns ErrDuplicateEntry on a username collision.
	Save(ctx context.Context, user *domain.User) error
}
