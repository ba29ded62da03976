package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tourbook/internal/middleware"
    "github.com/iliyamo/tourbook/internal/model"
    "github.com/iliyamo/tourbook/internal/service"
)

// AuthAPI is the part of the auth service exposed over HTTP.
type AuthAPI interface {
    Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
    Login(ctx context.Context, in service.LoginInput) (*service.AuthResult, error)
    CurrentUser(ctx context.Context, actor model.Actor) (*model.Profile, error)
    ToggleWishlist(ctx context.Context, actor model.Actor, tourID string) ([]model.Tour, error)
    UpdateDetails(ctx context.Context, actor model.Actor, in service.UpdateDetailsInput) (*model.User, error)
}

// AuthHandler bundles dependencies for /api/auth endpoints.
type AuthHandler struct {
    Svc     AuthAPI
    Timeout time.Duration
}

func NewAuthHandler(svc AuthAPI, timeout time.Duration) *AuthHandler {
    return &AuthHandler{Svc: svc, Timeout: timeout}
}

// Register: create user and return it with a token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
    var req service.RegisterInput
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c, h.Timeout)
    defer cancel()

    res, err := h.Svc.Register(ctx, req)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusCreated, res)
}

// Login: verify credentials and return the user with a new token.
func (h *AuthHandler) Login(c echo.Context) error {
    var req service.LoginInput
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c, h.Timeout)
    defer cancel()

    res, err := h.Svc.Login(ctx, req)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, res)
}

// Me returns the caller with the wishlist resolved.
func (h *AuthHandler) Me(c echo.Context) error {
    ctx, cancel := reqCtx(c, h.Timeout)
    defer cancel()

    p, err := h.Svc.CurrentUser(ctx, middleware.ActorFrom(c))
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, p)
}

// ToggleWishlist flips :tourId on the caller's wishlist.
func (h *AuthHandler) ToggleWishlist(c echo.Context) error {
    ctx, cancel := reqCtx(c, h.Timeout)
    defer cancel()

    list, err := h.Svc.ToggleWishlist(ctx, middleware.ActorFrom(c), c.Param("tourId"))
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, list)
}

// UpdateDetails changes the caller's name, email and optionally password.
func (h *AuthHandler) UpdateDetails(c echo.Context) error {
    var req service.UpdateDetailsInput
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c, h.Timeout)
    defer cancel()

    u, err := h.Svc.UpdateDetails(ctx, middleware.ActorFrom(c), req)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, u)
}
