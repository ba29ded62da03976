package middleware

import (
    "errors"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/tourbook/internal/service"
)

// StatusOf maps an error to its HTTP status: validation 400, authentication
// and ownership 401, unknown ids 404, conflicts 409, anything else 500.
func StatusOf(err error) int {
    var ve *service.ValidationError
    var he *echo.HTTPError
    switch {
    case errors.As(err, &ve):
        return http.StatusBadRequest
    case errors.Is(err, service.ErrUnauthorized),
        errors.Is(err, service.ErrInvalidCredentials),
        errors.Is(err, service.ErrInvalidToken):
        return http.StatusUnauthorized
    case errors.Is(err, service.ErrTourNotFound),
        errors.Is(err, service.ErrBookingNotFound),
        errors.Is(err, service.ErrCommentNotFound):
        return http.StatusNotFound
    case errors.Is(err, service.ErrEmailExists),
        errors.Is(err, service.ErrCapacityExceeded),
        errors.Is(err, service.ErrTourBusy):
        return http.StatusConflict
    case errors.As(err, &he):
        return he.Code
    }
    return http.StatusInternalServerError
}

// ErrorHandler renders every error as {"message": "..."}.  Internal errors
// are logged with the request and answered with a generic message.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
    return func(err error, c echo.Context) {
        if c.Response().Committed {
            return
        }

        code := StatusOf(err)
        msg := err.Error()
        var he *echo.HTTPError
        if errors.As(err, &he) && code == he.Code {
            msg = fmt.Sprint(he.Message)
            if m, ok := he.Message.(string); ok {
                msg = m
            }
        }
        if code >= http.StatusInternalServerError {
            log.Error("request failed",
                zap.String("method", c.Request().Method),
                zap.String("uri", c.Request().RequestURI),
                zap.String("user", userID(c)),
                zap.Error(err))
            msg = http.StatusText(code)
        }

        if c.Request().Method == http.MethodHead {
            _ = c.NoContent(code)
            return
        }
        _ = c.JSON(code, map[string]string{"message": msg})
    }
}
