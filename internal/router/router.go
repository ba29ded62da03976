package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/iliyamo/tourbook/internal/handler"
    "github.com/iliyamo/tourbook/internal/middleware"
)

// Handlers groups everything the router mounts.  Auth is also used as the
// token resolver for protected groups.
type Handlers struct {
    Auth     *handler.AuthHandler
    Tours    *handler.TourHandler
    Bookings *handler.BookingHandler
    Comments *handler.CommentHandler
    System   *handler.SystemHandler
    Tokens   middleware.Authenticator
}

// Register mounts every route on e.  Unknown paths answer with a JSON 404.
func Register(e *echo.Echo, h Handlers) {
    RegisterSystem(e, h.System)
    protect := middleware.Authenticate(h.Tokens)
    RegisterAuth(e, h.Auth, protect)
    RegisterTours(e, h.Tours, protect)
    RegisterBookings(e, h.Bookings, protect)
    RegisterComments(e, h.Comments, protect)
    e.RouteNotFound("/*", handler.NotFound)
}

// RegisterSystem exposes the banner and the health check.  Load balancers
// poll /health.
func RegisterSystem(e *echo.Echo, s *handler.SystemHandler) {
    e.GET("/", s.Banner)
    e.GET("/health", s.Health)
}

// RegisterAuth registers the account routes.  Register and login are open;
// everything else requires a bearer token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, protect echo.MiddlewareFunc) {
    g := e.Group("/api/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)

    g.GET("/me", a.Me, protect)
    g.POST("/wishlist/:tourId", a.ToggleWishlist, protect)
    g.PUT("/updatedetails", a.UpdateDetails, protect)
}

// RegisterTours exposes the catalog.  Reads are public; writes require
// the admin role.
func RegisterTours(e *echo.Echo, t *handler.TourHandler, protect echo.MiddlewareFunc) {
    g := e.Group("/api/tours")
    g.GET("", t.List)
    g.GET("/:id", t.Get)

    admin := middleware.RequireRole("admin")
    g.POST("", t.Create, protect, admin)
    g.PUT("/:id", t.Update, protect, admin)
    g.DELETE("/:id", t.Delete, protect, admin)
}
