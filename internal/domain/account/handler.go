package account

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/whitecross/server/internal/platform/auth"
	"github.com/whitecross/server/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the auth and user-administration endpoints. Login and
// logout are public (the session guard skips them); everything else runs
// behind the guard and the capability gate.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/verify", h.Verify)
	api.GET("/me", h.Me)

	// Settings and user administration are not in any role's default
	// bundle, so only ADMIN passes the gate.
	api.GET("/settings", h.GetSettings, auth.RequireCapability("settings.read"))

	users := api.Group("/users", auth.RequireCapability("users.manage"))
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.GET("/:id", h.GetUser)
	users.PATCH("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeleteUser)
}

// Login authenticates credentials and opens a session. Validation failures
// are 400 with the offending field; every authentication failure is 401 with
// the same generic body.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	resp, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		var vErr *auth.ValidationError
		if errors.As(err, &vErr) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": vErr.Reason,
				"field": vErr.Field,
			})
		}
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": auth.GenericAuthFailure,
			})
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, "login temporarily unavailable")
	}

	return c.JSON(http.StatusOK, resp)
}

// Logout clears the caller's session. Always returns 200: a client holding
// a stale or invalid token must still be able to reset its state.
func (h *Handler) Logout(c echo.Context) error {
	token := auth.BearerToken(c.Request().Header.Get("Authorization"))
	if err := h.svc.Logout(c.Request().Context(), token); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "logout temporarily unavailable")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
}

// Verify reports the session state. Reaching this handler at all means the
// guard already allowed the request, so it only echoes the profile back.
func (h *Handler) Verify(c echo.Context) error {
	p, ok := auth.ProfileFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user":          p,
	})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c echo.Context) error {
	p, ok := auth.ProfileFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, p)
}

// GetSettings serves the admin settings page payload.
func (h *Handler) GetSettings(c echo.Context) error {
	if err := auth.CheckCapability(c, "settings.read"); err != nil {
		return c.JSON(http.StatusForbidden, auth.DenialBody{
			Error:    "access denied",
			Code:     "forbidden",
			Redirect: "/access-denied",
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_ttl_minutes": int(h.svc.tokens.TTL().Minutes()),
		"roles":               []auth.Role{auth.RoleAdmin, auth.RoleNurse, auth.RoleCounselor, auth.RoleReadOnly},
	})
}

func (h *Handler) CreateUser(c echo.Context) error {
	if err := auth.CheckCapability(c, "users.manage"); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	user, err := h.svc.CreateUser(c.Request().Context(), req)
	if err != nil {
		var vErr *auth.ValidationError
		if errors.As(err, &vErr) {
			return echo.NewHTTPError(http.StatusBadRequest, vErr.Error())
		}
		if errors.Is(err, ErrEmailTaken) {
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create user")
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load user")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) ListUsers(c echo.Context) error {
	p := pagination.FromContext(c)
	users, total, err := h.svc.ListUsers(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list users")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, p.Limit, p.Offset))
}

func (h *Handler) UpdateUser(c echo.Context) error {
	if err := auth.CheckCapability(c, "users.manage"); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	user, err := h.svc.UpdateUser(c.Request().Context(), id, req)
	if err != nil {
		var vErr *auth.ValidationError
		if errors.As(err, &vErr) {
			return echo.NewHTTPError(http.StatusBadRequest, vErr.Error())
		}
		if errors.Is(err, ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update user")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	if err := auth.CheckCapability(c, "users.manage"); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteUser(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete user")
	}
	return c.NoContent(http.StatusNoContent)
}
