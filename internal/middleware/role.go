package middleware // middleware provides shared request processing for handlers

import (
    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/iliyamo/tourbook/internal/service"
)

// RequireRole returns a middleware function that enforces that the
// authenticated actor has one of the specified roles.  It must run after
// Authenticate.  A missing or disallowed role aborts the request with
// Unauthorized (401); this API has no separate Forbidden status.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    // Build a set of allowed roles for constant-time lookups.
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            a := ActorFrom(c)
            if !a.Authenticated() || !allowed[a.Role] {
                return service.ErrUnauthorized
            }
            return next(c)
        }
    }
}
