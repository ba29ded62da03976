package middleware

// identity.go holds the helpers shared across middleware files and handlers
// for reading the authenticated caller off the Echo context.  When no
// token was presented the zero Actor is returned, which fails every
// ownership and role check.

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tourbook/internal/model"
)

const actorKey = "actor"

// SetActor stores the resolved caller on the context.
func SetActor(c echo.Context, a model.Actor) { c.Set(actorKey, a) }

// ActorFrom returns the caller stored by Authenticate, or the zero Actor.
func ActorFrom(c echo.Context) model.Actor {
    if a, ok := c.Get(actorKey).(model.Actor); ok {
        return a
    }
    return model.Actor{}
}

// userID is used in request logs; anonymous callers are logged as "guest".
func userID(c echo.Context) string {
    if a := ActorFrom(c); a.Authenticated() {
        return a.UserID
    }
    return "guest"
}
