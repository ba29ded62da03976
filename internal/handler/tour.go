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

// TourAPI is the part of the catalog service exposed over HTTP.
type TourAPI interface {
    ListTours(ctx context.Context, f service.TourFilter) ([]model.TourView, error)
    GetTour(ctx context.Context, id string) (*model.TourView, error)
    CreateTour(ctx context.Context, actor model.Actor, in service.TourInput) (*model.TourView, error)
    UpdateTour(ctx context.Context, actor model.Actor, id string, p service.TourPatch) (*model.TourView, error)
    DeleteTour(ctx context.Context, actor model.Actor, id string) error
}

// TourHandler serves /api/tours.
type TourHandler struct {
    Svc     TourAPI
    Timeout time.Duration
}

func NewTourHandler(svc TourAPI, timeout time.Duration) *TourHandler {
    return &TourHandler{Svc: svc, Timeout: timeout}
}

// List returns every tour, optionally filtered by ?q= on name or location.
func (h *TourHandler) List(c echo.Context) error {
    ctx, cancel := reqCtx(c, h.Timeout)
    defer cancel()

    tours, err := h.Svc.ListTours(ctx, service.TourFilter{Query: c.QueryParam("q")})
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, tours)
}

func (h *TourHandler) Get(c echo.Context) error {
    ctx, cancel := reqCtx(c, h.Timeout)
    defer cancel()

    t, err := h.Svc.GetTour(ctx, c.Param("id"))
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, t)
}

func (h *TourHandler) Create(c echo.Context) error {
    var req service.TourInput
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c, h.Timeout)
    defer cancel()

    t, err := h.Svc.CreateTour(ctx, middleware.ActorFrom(c), req)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusCreated, t)
}

func (h *TourHandler) Update(c echo.Context) error {
    var req service.TourPatch
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c, h.Timeout)
    defer cancel()

    t, err := h.Svc.UpdateTour(ctx, middleware.ActorFrom(c), c.Param("id"), req)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, t)
}

func (h *TourHandler) Delete(c echo.Context) error {
    ctx, cancel := reqCtx(c, h.Timeout)
    defer cancel()

    id := c.Param("id")
    if err := h.Svc.DeleteTour(ctx, middleware.ActorFrom(c), id); err != nil {
        return err
    }
    return c.JSON(http.StatusOK, idResp{ID: id})
}
