package handler // declare the package name; contains HTTP handlers

import (
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Version is reported by the banner endpoint.
const Version = "1.0.0"

// SystemHandler serves the unauthenticated service endpoints.
type SystemHandler struct {
    Started time.Time
    now     func() time.Time
}

func NewSystemHandler(started time.Time) *SystemHandler {
    return &SystemHandler{Started: started, now: time.Now}
}

// Health is used by load balancers and monitoring systems to verify that
// the service is running.  Uptime is in seconds.
func (h *SystemHandler) Health(c echo.Context) error {
    now := h.now()
    return c.JSON(http.StatusOK, echo.Map{
        "status":    "healthy",
        "uptime":    now.Sub(h.Started).Seconds(),
        "timestamp": now.UTC().Format(time.RFC3339Nano),
    })
}

// Banner describes the API at the root path.
func (h *SystemHandler) Banner(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{
        "message":   "Welcome to Travel Booking API",
        "version":   Version,
        "status":    "running",
        "timestamp": h.now().UTC().Format(time.RFC3339Nano),
        "endpoints": echo.Map{
            "auth":     "/api/auth",
            "tours":    "/api/tours",
            "bookings": "/api/bookings",
            "comments": "/api/comments",
        },
    })
}

// NotFound answers unknown routes.
func NotFound(c echo.Context) error {
    return echo.NewHTTPError(http.StatusNotFound,
        fmt.Sprintf("Cannot %s %s", c.Request().Method, c.Request().URL.Path))
}
