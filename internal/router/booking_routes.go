package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tourbook/internal/handler"
    "github.com/iliyamo/tourbook/internal/middleware"
)

// RegisterBookings registers the booking endpoints under /api/bookings.  All
// routes require a valid token.  Listing every booking is limited to
// admins; cancelling is checked against ownership in the service.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, protect echo.MiddlewareFunc) {
    g := e.Group("/api/bookings", protect)
    g.POST("", h.Create)
    g.GET("/mybookings", h.Mine)
    g.GET("", h.All, middleware.RequireRole("admin"))
    g.DELETE("/:id", h.Cancel)
}

// RegisterComments registers review routes.  The :id segment names a tour
// for list and create, and a comment for update and delete.
func RegisterComments(e *echo.Echo, h *handler.CommentHandler, protect echo.MiddlewareFunc) {
    g := e.Group("/api/comments")
    g.GET("/:id", h.List)
    g.POST("/:id", h.Create, protect)
    g.PUT("/:id", h.Update, protect)
    g.DELETE("/:id", h.Delete, protect)
}
