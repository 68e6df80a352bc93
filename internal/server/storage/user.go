package storage

import (
	"context"

	"github.com/iudanet/invoicekeeper/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user in the storage
	// Returns ErrUserAlreadyExists if username already exists
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername retrieves user by username
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// UpdateLastLogin stores the stamp of a new login
	UpdateLastLogin(ctx context.Context, userID string, lastLogin string) error

	// SetDisabled blocks or unblocks the user
	SetDisabled(ctx context.Context, username string, disabled bool) error
}
