package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// defaultTimeout bounds the store work of a single request when the
// handler was built without an explicit timeout.
const defaultTimeout = 5 * time.Second

// ErrBadBody is returned when a request body is not valid JSON for the
// endpoint.
var ErrBadBody = echo.NewHTTPError(http.StatusBadRequest, "invalid request body")

func bind(c echo.Context, dst any) error {
    if err := c.Bind(dst); err != nil {
        return ErrBadBody
    }
    return nil
}

// reqCtx derives the per-request context every handler passes to services.
func reqCtx(c echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
    if timeout <= 0 {
        timeout = defaultTimeout
    }
    return context.WithTimeout(c.Request().Context(), timeout)
}

type idResp struct {
    ID string `json:"id"`
}
