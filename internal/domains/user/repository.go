package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the data access contract for users.
type Repository interface {
	// ========================================
	// BASIC CRUD
	// ========================================

	// Create inserts a new user.
	// Returns: ErrUsernameTaken or ErrEmailAlreadyExists on unique violations
	Create(ctx context.Context, user *User) error

	// FindByID returns ErrUserNotFound when missing
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByLogin matches the username, or the email case-insensitively.
	// Returns: ErrUserNotFound
	FindByLogin(ctx context.Context, login string) (*User, error)

	// UpdateProfile writes nickname, avatar and bio
	UpdateProfile(ctx context.Context, user *User) error

	// UpdateSettings writes newsletter, language and checkout defaults
	UpdateSettings(ctx context.Context, user *User) error

	// ========================================
	// ADMIN FUNCTIONS
	// ========================================

	List(ctx context.Context, req ListUsersRequest) ([]User, int, error)
	UpdateRole(ctx context.Context, userID uuid.UUID, role Role) error
}
