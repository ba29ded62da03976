package handler

import (
    "context"
    "net/http"
    "net/http/httptest"
    "strings"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/tourbook/internal/middleware"
    "github.com/iliyamo/tourbook/internal/model"
    "github.com/iliyamo/tourbook/internal/service"
)

// --- Mock services ---

type mockAuth struct {
    registerFn func(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
    loginFn    func(ctx context.Context, in service.LoginInput) (*service.AuthResult, error)
    meFn       func(ctx context.Context, actor model.Actor) (*model.Profile, error)
    wishFn     func(ctx context.Context, actor model.Actor, tourID string) ([]model.Tour, error)
    updateFn   func(ctx context.Context, actor model.Actor, in service.UpdateDetailsInput) (*model.User, error)
}

func (m *mockAuth) Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error) {
    return m.registerFn(ctx, in)
}
func (m *mockAuth) Login(ctx context.Context, in service.LoginInput) (*service.AuthResult, error) {
    return m.loginFn(ctx, in)
}
func (m *mockAuth) CurrentUser(ctx context.Context, actor model.Actor) (*model.Profile, error) {
    return m.meFn(ctx, actor)
}
func (m *mockAuth) ToggleWishlist(ctx context.Context, actor model.Actor, tourID string) ([]model.Tour, error) {
    return m.wishFn(ctx, actor, tourID)
}
func (m *mockAuth) UpdateDetails(ctx context.Context, actor model.Actor, in service.UpdateDetailsInput) (*model.User, error) {
    return m.updateFn(ctx, actor, in)
}

type mockTours struct {
    listFn   func(ctx context.Context, f service.TourFilter) ([]model.TourView, error)
    getFn    func(ctx context.Context, id string) (*model.TourView, error)
    createFn func(ctx context.Context, actor model.Actor, in service.TourInput) (*model.TourView, error)
    updateFn func(ctx context.Context, actor model.Actor, id string, p service.TourPatch) (*model.TourView, error)
    deleteFn func(ctx context.Context, actor model.Actor, id string) error
}

func (m *mockTours) ListTours(ctx context.Context, f service.TourFilter) ([]model.TourView, error) {
    return m.listFn(ctx, f)
}
func (m *mockTours) GetTour(ctx context.Context, id string) (*model.TourView, error) {
    return m.getFn(ctx, id)
}
func (m *mockTours) CreateTour(ctx context.Context, actor model.Actor, in service.TourInput) (*model.TourView, error) {
    return m.createFn(ctx, actor, in)
}
func (m *mockTours) UpdateTour(ctx context.Context, actor model.Actor, id string, p service.TourPatch) (*model.TourView, error) {
    return m.updateFn(ctx, actor, id, p)
}
func (m *mockTours) DeleteTour(ctx context.Context, actor model.Actor, id string) error {
    return m.deleteFn(ctx, actor, id)
}

type mockBookings struct {
    createFn func(ctx context.Context, actor model.Actor, in service.BookingInput) (*model.Booking, error)
    mineFn   func(ctx context.Context, actor model.Actor) ([]model.BookingView, error)
    allFn    func(ctx context.Context, actor model.Actor) ([]model.BookingView, error)
    cancelFn func(ctx context.Context, actor model.Actor, id string) error
}

func (m *mockBookings) CreateBooking(ctx context.Context, actor model.Actor, in service.BookingInput) (*model.Booking, error) {
    return m.createFn(ctx, actor, in)
}
func (m *mockBookings) ListMyBookings(ctx context.Context, actor model.Actor) ([]model.BookingView, error) {
    return m.mineFn(ctx, actor)
}
func (m *mockBookings) ListAllBookings(ctx context.Context, actor model.Actor) ([]model.BookingView, error) {
    return m.allFn(ctx, actor)
}
func (m *mockBookings) CancelBooking(ctx context.Context, actor model.Actor, id string) error {
    return m.cancelFn(ctx, actor, id)
}

type mockComments struct {
    listFn   func(ctx context.Context, tourID string) ([]model.CommentView, error)
    createFn func(ctx context.Context, actor model.Actor, tourID string, in service.CommentInput) (*model.CommentView, error)
    updateFn func(ctx context.Context, actor model.Actor, id string, p service.CommentPatch) (*model.CommentView, error)
    deleteFn func(ctx context.Context, actor model.Actor, id string) error
}

func (m *mockComments) ListComments(ctx context.Context, tourID string) ([]model.CommentView, error) {
    return m.listFn(ctx, tourID)
}
func (m *mockComments) CreateComment(ctx context.Context, actor model.Actor, tourID string, in service.CommentInput) (*model.CommentView, error) {
    return m.createFn(ctx, actor, tourID, in)
}
func (m *mockComments) UpdateComment(ctx context.Context, actor model.Actor, id string, p service.CommentPatch) (*model.CommentView, error) {
    return m.updateFn(ctx, actor, id, p)
}
func (m *mockComments) DeleteComment(ctx context.Context, actor model.Actor, id string) error {
    return m.deleteFn(ctx, actor, id)
}

// --- helpers ---

var (
    ann   = model.Actor{UserID: "u-ann", Role: model.RoleUser}
    admin = model.Actor{UserID: "u-root", Role: model.RoleAdmin}
)

// newEcho returns an Echo wired with the production error handler and a
// middleware that installs actor as the caller.
func newEcho(actor model.Actor) *echo.Echo {
    e := echo.New()
    e.HTTPErrorHandler = middleware.ErrorHandler(zap.NewNop())
    e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            middleware.SetActor(c, actor)
            return next(c)
        }
    })
    return e
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(method, path, strings.NewReader(body))
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    rec := httptest.NewRecorder()
    h.ServeHTTP(rec, req)
    return rec
}

