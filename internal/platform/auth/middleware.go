package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey          contextKey = "user_id"
	UserRoleKey        contextKey = "user_role"
	UserPermissionsKey contextKey = "user_permissions"
	UserProfileKey     contextKey = "user_profile"
)

// DenialBody is the uniform JSON payload for 401/403 responses. Redirect
// tells the client where to navigate; From preserves the originally
// requested path for post-login redirect.
type DenialBody struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	From     string `json:"from,omitempty"`
}

// SessionGuard returns middleware that runs the route guard on every request
// whose path is not public. Protected handlers never execute before
// verification completes; there is no optimistic pass-through.
func SessionGuard(guard *Guard, skipper func(echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}

			token := BearerToken(c.Request().Header.Get("Authorization"))
			result, err := guard.Evaluate(c.Request().Context(), token, c.Request().URL.Path)
			if err != nil {
				// Transient verification failure: retryable, session intact.
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session verification unavailable")
			}

			if result.State != StateAllowed {
				msg := "authentication required"
				if result.Code == CodeSessionExpired {
					msg = "session expired, please sign in again"
				}
				return c.JSON(http.StatusUnauthorized, DenialBody{
					Error:    msg,
					Code:     result.Code,
					Redirect: result.Redirect,
					From:     result.From,
				})
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, result.User.ID)
			ctx = context.WithValue(ctx, UserRoleKey, result.User.Role)
			ctx = context.WithValue(ctx, UserPermissionsKey, result.User.Permissions)
			ctx = context.WithValue(ctx, UserProfileKey, *result.User)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// BearerToken extracts the token from an Authorization header value.
// Returns "" when the header is missing or not a bearer scheme.
func BearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func UserIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(UserIDKey).(uuid.UUID)
	return id
}

func RoleFromContext(ctx context.Context) Role {
	role, _ := ctx.Value(UserRoleKey).(Role)
	return role
}

func PermissionsFromContext(ctx context.Context) []string {
	perms, _ := ctx.Value(UserPermissionsKey).([]string)
	return perms
}

func ProfileFromContext(ctx context.Context) (Profile, bool) {
	p, ok := ctx.Value(UserProfileKey).(Profile)
	return p, ok
}
