package handler

import (
    "context"
    "net/http"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/tourbook/internal/model"
    "github.com/iliyamo/tourbook/internal/service"
)

func commentRoutes(m *mockComments, actor model.Actor) http.Handler {
    h := NewCommentHandler(m, time.Second)
    e := newEcho(actor)
    e.GET("/api/comments/:id", h.List)
    e.POST("/api/comments/:id", h.Create)
    e.PUT("/api/comments/:id", h.Update)
    e.DELETE("/api/comments/:id", h.Delete)
    return e
}

func TestCommentList_ByTour(t *testing.T) {
    var gotTour string
    m := &mockComments{listFn: func(_ context.Context, tourID string) ([]model.CommentView, error) {
        gotTour = tourID
        return []model.CommentView{{
            Comment: model.Comment{ID: "c1", TourID: tourID, Text: "nice", Rating: 5},
            User:    model.UserSummary{ID: "u1", Name: "Ann"},
        }}, nil
    }}
    rec := serve(commentRoutes(m, model.Actor{}), http.MethodGet, "/api/comments/t1", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "t1", gotTour)
    assert.Contains(t, rec.Body.String(), `"user":{"id":"u1","name":"Ann"}`)
}

func TestCommentCreate(t *testing.T) {
    var gotTour string
    var got service.CommentInput
    m := &mockComments{createFn: func(_ context.Context, _ model.Actor, tourID string, in service.CommentInput) (*model.CommentView, error) {
        gotTour, got = tourID, in
        if in.Rating > 5 {
            return nil, &service.ValidationError{Message: "rating must be at most 5"}
        }
        return &model.CommentView{Comment: model.Comment{ID: "c1", TourID: tourID}}, nil
    }}
    h := commentRoutes(m, ann)

    rec := serve(h, http.MethodPost, "/api/comments/t1", `{"text":"great","rating":4}`)
    require.Equal(t, http.StatusCreated, rec.Code)
    assert.Equal(t, "t1", gotTour)
    assert.Equal(t, service.CommentInput{Text: "great", Rating: 4}, got)

    rec = serve(h, http.MethodPost, "/api/comments/t1", `{"text":"great","rating":7}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.JSONEq(t, `{"message":"rating must be at most 5"}`, rec.Body.String())
}

func TestCommentUpdateAndDelete(t *testing.T) {
    m := &mockComments{
        updateFn: func(_ context.Context, a model.Actor, id string, p service.CommentPatch) (*model.CommentView, error) {
            if a.UserID != "u-ann" {
                return nil, service.ErrUnauthorized
            }
            return &model.CommentView{Comment: model.Comment{ID: id, Text: *p.Text}}, nil
        },
        deleteFn: func(_ context.Context, _ model.Actor, id string) error {
            if id == "gone" {
                return service.ErrCommentNotFound
            }
            return nil
        },
    }

    rec := serve(commentRoutes(m, ann), http.MethodPut, "/api/comments/c1", `{"text":"edited"}`)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), `"text":"edited"`)

    rec = serve(commentRoutes(m, model.Actor{UserID: "u-bob", Role: model.RoleUser}), http.MethodPut, "/api/comments/c1", `{"text":"x"}`)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)

    rec = serve(commentRoutes(m, ann), http.MethodDelete, "/api/comments/c1", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"id":"c1"}`, rec.Body.String())

    rec = serve(commentRoutes(m, ann), http.MethodDelete, "/api/comments/gone", "")
    assert.Equal(t, http.StatusNotFound, rec.Code)
}
