package account

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/whitecross/server/internal/platform/auth"
)

// dummyHash is compared against when the email matches no user, so an
// unknown address costs the same wall-clock time as a wrong password.
// bcrypt hash of an unguessable value, cost 12.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Service implements authentication and user administration.
type Service struct {
	users       UserRepository
	hasher      *Hasher
	tokens      *auth.TokenIssuer
	sessions    auth.SessionStore
	revoked     *auth.RevocationList
	landingPath string
	logger      zerolog.Logger

	loginGroup singleflight.Group
}

func NewService(users UserRepository, hasher *Hasher, tokens *auth.TokenIssuer, sessions auth.SessionStore, revoked *auth.RevocationList, landingPath string, logger zerolog.Logger) *Service {
	if landingPath == "" {
		landingPath = "/dashboard"
	}
	return &Service{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		sessions:    sessions,
		revoked:     revoked,
		landingPath: landingPath,
		logger:      logger,
	}
}

// ValidateCredentials checks the login payload before any store access.
// Structurally invalid input never reaches the user table, so a malformed
// email cannot be used to probe which addresses exist.
func ValidateCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return auth.NewValidationError("email", "required")
	}
	// ParseAddress accepts RFC 5322 name-addr and quoted-local forms
	// ("Nurse Jane <nurse@x>", `"a b"@x`); a login email is the bare
	// address only, so the parsed address must round-trip the input.
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || strings.ContainsAny(email, " \t") {
		return auth.NewValidationError("email", "invalid format")
	}
	if password == "" {
		return auth.NewValidationError("password", "required")
	}
	return nil
}

// Login authenticates the credentials and establishes a session. Identical
// concurrent submissions (a double-clicked login button) are coalesced into
// one authentication attempt.
//
// All authentication failures return auth.ErrInvalidCredentials: an unknown
// email, a wrong password, and a deactivated account are indistinguishable
// to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := ValidateCredentials(req.Email, req.Password); err != nil {
		return nil, err
	}

	key := loginKey(req.Email, req.Password)
	v, err, _ := s.loginGroup.Do(key, func() (interface{}, error) {
		return s.login(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*LoginResponse), nil
}

func (s *Service) login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == ErrUserNotFound {
			// Burn a bcrypt comparison so response time does not reveal
			// whether the email exists.
			_ = s.hasher.Compare(dummyHash, req.Password)
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, auth.ErrInvalidCredentials
	}

	profile := user.Profile()
	token, claims, err := s.tokens.Issue(profile)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	sess := &auth.Session{
		Token:     token,
		User:      profile,
		CreatedAt: claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Msg("login")

	return &LoginResponse{
		Token:      token,
		User:       profile,
		RedirectTo: s.redirectAfterLogin(req.From),
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}

// Logout tears down the session for a token. Succeeds even when the token is
// already invalid so a client stuck with a stale token can always reset.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	// Revoke the jti when the token still verifies, so the token cannot be
	// replayed for its remaining lifetime.
	if claims, err := s.tokens.Verify(token); err == nil && s.revoked != nil {
		s.revoked.Revoke(claims.ID, claims.Subject, claims.ExpiresAt.Time)
	}

	if err := s.sessions.Clear(ctx, token); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// redirectAfterLogin returns the post-login destination. Only relative paths
// within the app are honored; anything else falls back to the landing page
// so the login flow cannot be used as an open redirect.
func (s *Service) redirectAfterLogin(from string) string {
	if from == "" {
		return s.landingPath
	}
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") {
		return s.landingPath
	}
	if from == "/login" {
		return s.landingPath
	}
	return from
}

// loginKey coalesces identical concurrent submissions without letting two
// different passwords for the same email share a result.
func loginKey(email, password string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email)) + "\x00" + password))
	return hex.EncodeToString(sum[:])
}

// -- User administration --

// CreateUser provisions a user. Permissions beyond the role's defaults may
// only be granted by an admin; the handler enforces that via the gate.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := ValidateCredentials(req.Email, req.Password); err != nil {
		return nil, err
	}
	if !validRole(req.Role) {
		return nil, auth.NewValidationError("role", "unknown role")
	}
	for _, p := range req.Permissions {
		if !validPermission(p) {
			return nil, auth.NewValidationError("permissions", fmt.Sprintf("malformed permission %q", p))
		}
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         req.Role,
		Permissions:  req.Permissions,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser applies the non-nil fields of req. Deactivating or changing the
// role of a user invalidates their current session.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	invalidateSession := false
	if req.Role != nil && *req.Role != user.Role {
		if !validRole(*req.Role) {
			return nil, auth.NewValidationError("role", "unknown role")
		}
		user.Role = *req.Role
		invalidateSession = true
	}
	if req.Permissions != nil {
		for _, p := range *req.Permissions {
			if !validPermission(p) {
				return nil, auth.NewValidationError("permissions", fmt.Sprintf("malformed permission %q", p))
			}
		}
		user.Permissions = *req.Permissions
		invalidateSession = true
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Active != nil && *req.Active != user.Active {
		user.Active = *req.Active
		if !user.Active {
			invalidateSession = true
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if invalidateSession {
		if err := s.sessions.ClearAllForUser(ctx, user.ID); err != nil {
			s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to clear sessions after user update")
		}
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

// DeleteUser removes the user and their session.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	return s.sessions.ClearAllForUser(ctx, id)
}

func validRole(r auth.Role) bool {
	switch r {
	case auth.RoleAdmin, auth.RoleNurse, auth.RoleCounselor, auth.RoleReadOnly:
		return true
	}
	return false
}

// validPermission accepts "<resource>.<action>" with "*" allowed on either
// side, plus the bare "*".
func validPermission(p string) bool {
	if p == "*" {
		return true
	}
	parts := strings.SplitN(p, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	return true
}
