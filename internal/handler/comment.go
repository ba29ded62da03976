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

// CommentAPI is the part of the review service exposed over HTTP.
type CommentAPI interface {
    ListComments(ctx context.Context, tourID string) ([]model.CommentView, error)
    CreateComment(ctx context.Context, actor model.Actor, tourID string, in service.CommentInput) (*model.CommentView, error)
    UpdateComment(ctx context.Context, actor model.Actor, id string, p service.CommentPatch) (*model.CommentView, error)
    DeleteComment(ctx context.Context, actor model.Actor, id string) error
}

// CommentHandler serves /api/comments/:id.  For GET and POST the id is a
// tour id; for PUT and DELETE it is a comment id.
type CommentHandler struct {
    Svc     CommentAPI
    Timeout time.Duration
}

func NewCommentHandler(svc CommentAPI, timeout time.Duration) *CommentHandler {
    return &CommentHandler{Svc: svc, Timeout: timeout}
}

func (h *CommentHandler) List(c echo.Context) error {
    ctx, cancel := reqCtx(c, h.Timeout)
    defer cancel()

    list, err := h.Svc.ListComments(ctx, c.Param("id"))
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, list)
}

func (h *CommentHandler) Create(c echo.Context) error {
    var req service.CommentInput
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c, h.Timeout)
    defer cancel()

    v, err := h.Svc.CreateComment(ctx, middleware.ActorFrom(c), c.Param("id"), req)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusCreated, v)
}

func (h *CommentHandler) Update(c echo.Context) error {
    var req service.CommentPatch
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c, h.Timeout)
    defer cancel()

    v, err := h.Svc.UpdateComment(ctx, middleware.ActorFrom(c), c.Param("id"), req)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, v)
}

func (h *CommentHandler) Delete(c echo.Context) error {
    ctx, cancel := reqCtx(c, h.Timeout)
    defer cancel()

    id := c.Param("id")
    if err := h.Svc.DeleteComment(ctx, middleware.ActorFrom(c), id); err != nil {
        return err
    }
    return c.JSON(http.StatusOK, idResp{ID: id})
}
