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

// BookingAPI is the part of the booking service exposed over HTTP.
type BookingAPI interface {
    CreateBooking(ctx context.Context, actor model.Actor, in service.BookingInput) (*model.Booking, error)
    ListMyBookings(ctx context.Context, actor model.Actor) ([]model.BookingView, error)
    ListAllBookings(ctx context.Context, actor model.Actor) ([]model.BookingView, error)
    CancelBooking(ctx context.Context, actor model.Actor, id string) error
}

// BookingHandler serves /api/bookings.  Every route requires a token.
type BookingHandler struct {
    Svc     BookingAPI
    Timeout time.Duration
}

func NewBookingHandler(svc BookingAPI, timeout time.Duration) *BookingHandler {
    return &BookingHandler{Svc: svc, Timeout: timeout}
}

func (h *BookingHandler) Create(c echo.Context) error {
    var req service.BookingInput
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c, h.Timeout)
    defer cancel()

    b, err := h.Svc.CreateBooking(ctx, middleware.ActorFrom(c), req)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) Mine(c echo.Context) error {
    ctx, cancel := reqCtx(c, h.Timeout)
    defer cancel()

    list, err := h.Svc.ListMyBookings(ctx, middleware.ActorFrom(c))
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, list)
}

// All lists every booking; the router restricts it to admins.
func (h *BookingHandler) All(c echo.Context) error {
    ctx, cancel := reqCtx(c, h.Timeout)
    defer cancel()

    list, err := h.Svc.ListAllBookings(ctx, middleware.ActorFrom(c))
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, list)
}

func (h *BookingHandler) Cancel(c echo.Context) error {
    ctx, cancel := reqCtx(c, h.Timeout)
    defer cancel()

    id := c.Param("id")
    if err := h.Svc.CancelBooking(ctx, middleware.ActorFrom(c), id); err != nil {
        return err
    }
    return c.JSON(http.StatusOK, idResp{ID: id})
}
