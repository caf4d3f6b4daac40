package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists URL paths that bypass the session guard: infrastructure
// endpoints and the login/logout endpoints themselves. Logout is public so a
// client holding an already-expired token can still clear its session.
var publicPaths = map[string]bool{
	"/health":             true,
	"/health/db":          true,
	"/api/v1/auth/login":  true,
	"/api/v1/auth/logout": true,
}

// GuardSkipper returns true for requests whose path should skip the session
// guard. Pass it as the Skipper on SessionGuard.
func GuardSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

// IsPublicPath reports whether the given path bypasses the session guard.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
