package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned by repository lookups that match no row.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned when creating a user with an existing email.
var ErrEmailTaken = errors.New("email already registered")

// UserRepository defines the persistence interface for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
}
