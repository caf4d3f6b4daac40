package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/whitecross/server/internal/platform/auth"
)

// User maps to the app_user table. PasswordHash never leaves the server.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         auth.Role `db:"role" json:"role"`
	Permissions  []string  `db:"permissions" json:"permissions"`
	FirstName    string    `db:"first_name" json:"firstName"`
	LastName     string    `db:"last_name" json:"lastName"`
	Active       bool      `db:"active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Profile returns the session snapshot for the user.
func (u *User) Profile() auth.Profile {
	perms := make([]string, len(u.Permissions))
	copy(perms, u.Permissions)
	return auth.Profile{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		Permissions: perms,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Active:      u.Active,
	}
}

// LoginRequest is the POST /auth/login payload. From carries the path the
// client was trying to reach when it got redirected to login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	From     string `json:"from,omitempty"`
}

// LoginResponse is returned on successful login. RedirectTo tells the client
// where to navigate: the originally requested path when one was preserved,
// the default landing page otherwise.
type LoginResponse struct {
	Token      string       `json:"token"`
	User       auth.Profile `json:"user"`
	RedirectTo string       `json:"redirect_to"`
	ExpiresAt  time.Time    `json:"expires_at"`
}

// CreateUserRequest is the admin payload for provisioning a user.
type CreateUserRequest struct {
	Email       string    `json:"email"`
	Password    string    `json:"password"`
	Role        auth.Role `json:"role"`
	Permissions []string  `json:"permissions,omitempty"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
}

// UpdateUserRequest carries mutable user fields. Nil means unchanged.
type UpdateUserRequest struct {
	Role        *auth.Role `json:"role,omitempty"`
	Permissions *[]string  `json:"permissions,omitempty"`
	FirstName   *string    `json:"firstName,omitempty"`
	LastName    *string    `json:"lastName,omitempty"`
	Active      *bool      `json:"isActive,omitempty"`
}
