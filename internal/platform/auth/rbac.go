package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Role is a named bundle of default permissions. The set is open: unknown
// roles are accepted and simply carry no default bundle.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleNurse     Role = "NURSE"
	RoleCounselor Role = "COUNSELOR"
	RoleReadOnly  Role = "READ_ONLY"
)

// Decision is the outcome of a gate check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "ALLOW"
	}
	return "DENY"
}

// DefaultPermissions returns the permission bundle implied by a role. User
// records may carry additional explicit grants on top of these.
func DefaultPermissions(r Role) []string {
	switch r {
	case RoleNurse:
		return []string{
			"students.read", "students.write",
			"medications.read", "medications.write", "medications.administer",
			"health_records.read", "health_records.write",
		}
	case RoleCounselor:
		return []string{
			"students.read",
			"health_records.read", "health_records.write",
		}
	case RoleReadOnly:
		return []string{"*.read"}
	default:
		return nil
	}
}

// Gate is the single authorization decision point, consulted by both the
// route middleware and write handlers so that hiding a control and enforcing
// the denial can never drift apart. ADMIN implicitly allows everything;
// every other role needs the capability in its effective permission set.
func Gate(role Role, permissions []string, capability string) Decision {
	if role == RoleAdmin {
		return Allow
	}
	if capability == "" {
		return Deny
	}

	for _, granted := range DefaultPermissions(role) {
		if matchPermission(granted, capability) {
			return Allow
		}
	}
	for _, granted := range permissions {
		if matchPermission(granted, capability) {
			return Allow
		}
	}
	return Deny
}

// matchPermission checks whether a granted permission covers the required
// capability. Capabilities are "<resource>.<action>"; a granted "*" covers
// everything, "*.read" covers any read, "students.*" covers any student
// action.
func matchPermission(granted, required string) bool {
	if granted == required {
		return true
	}
	if granted == "*" {
		return true
	}

	gParts := strings.SplitN(granted, ".", 2)
	rParts := strings.SplitN(required, ".", 2)
	if len(gParts) != 2 || len(rParts) != 2 {
		return false
	}

	resMatch := gParts[0] == rParts[0] || gParts[0] == "*"
	actMatch := gParts[1] == rParts[1] || gParts[1] == "*"
	return resMatch && actMatch
}

// RequireCapability returns middleware that denies the request unless the
// authenticated user's role/permissions allow the capability. The denial
// payload is uniform: it never names the missing capability.
func RequireCapability(capability string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			role := RoleFromContext(ctx)
			perms := PermissionsFromContext(ctx)

			if Gate(role, perms, capability) == Deny {
				return c.JSON(http.StatusForbidden, DenialBody{
					Error:    "access denied",
					Code:     "forbidden",
					Redirect: "/access-denied",
				})
			}
			return next(c)
		}
	}
}

// CheckCapability re-runs the gate for the current request context. Write
// handlers call this before mutating anything, so a route that was wired
// without RequireCapability still cannot be driven directly past the gate.
func CheckCapability(c echo.Context, capability string) error {
	ctx := c.Request().Context()
	if Gate(RoleFromContext(ctx), PermissionsFromContext(ctx), capability) == Deny {
		return &AuthorizationError{Capability: capability}
	}
	return nil
}
