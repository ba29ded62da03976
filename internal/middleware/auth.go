package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tourbook/internal/model"
    "github.com/iliyamo/tourbook/internal/service"
)

// Authenticator resolves a raw bearer token to the calling actor.
// *service.AuthService satisfies it.
type Authenticator interface {
    Authenticate(ctx context.Context, raw string) (model.Actor, error)
}

// Authenticate returns an Echo middleware that requires a Bearer token in
// the Authorization header, resolves it through auth and stores the actor
// on the context for handlers to read with ActorFrom.  Failures are
// returned as errors so the central error handler renders them.
func Authenticate(auth Authenticator) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            header := c.Request().Header.Get(echo.HeaderAuthorization)
            scheme, raw, ok := strings.Cut(header, " ")
            if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
                return service.ErrUnauthorized
            }
            actor, err := auth.Authenticate(c.Request().Context(), strings.TrimSpace(raw))
            if err != nil {
                return err
            }
            SetActor(c, actor)
            return next(c)
        }
    }
}
