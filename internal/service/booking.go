package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/tourbook/internal/lock"
	"github.com/iliyamo/tourbook/internal/model"
	"github.com/iliyamo/tourbook/internal/queue"
	"github.com/iliyamo/tourbook/internal/repository"
)

// BookingService creates, lists and cancels bookings.
//
// With EnforceCapacity set, bookings for one tour are serialised through
// the locker and the store refuses any booking that would take the tour
// past its capacity.  Without it bookings are accepted regardless of
// capacity, and spotsLeft may go negative.
type BookingService struct {
	bookings        BookingStore
	tours           TourStore
	users           UserStore
	locker          lock.Locker
	events          EventPublisher
	log             *zap.Logger
	enforceCapacity bool
}

// BookingDeps groups the collaborators of a BookingService.  Locker is
// required when EnforceCapacity is true; Events may be nil.
type BookingDeps struct {
	Bookings        BookingStore
	Tours           TourStore
	Users           UserStore
	Locker          lock.Locker
	Events          EventPublisher
	Log             *zap.Logger
	EnforceCapacity bool
}

// fallbackLockWait bounds the in-process lock used when enforcement is on
// but no Locker was supplied.
const fallbackLockWait = 3 * time.Second

func NewBookingService(d BookingDeps) *BookingService {
	s := &BookingService{
		bookings:        d.Bookings,
		tours:           d.Tours,
		users:           d.Users,
		locker:          d.Locker,
		events:          d.Events,
		log:             orNop(d.Log),
		enforceCapacity: d.EnforceCapacity,
	}
	if s.enforceCapacity && s.locker == nil {
		s.log.Warn("no booking locker configured, capacity is serialised in process only")
		s.locker = lock.NewLocalLocker(fallbackLockWait)
	}
	return s
}

// MaxHeadCount caps a single booking; it keeps the stored count and the
// total price well inside their column ranges.
const MaxHeadCount = 1000

type BookingInput struct {
	TourID    string `json:"tourId" validate:"required"`
	HeadCount int    `json:"headCount" validate:"gte=1,lte=1000"`
}

// tourKey namespaces lock keys per tour.
func tourKey(id string) string { return "tour:" + id }

// CreateBooking books HeadCount places on a tour for the caller.  The total
// price is the tour price at this moment times the head count.
func (s *BookingService) CreateBooking(ctx context.Context, actor model.Actor, in BookingInput) (*model.Booking, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if s.enforceCapacity {
		release, err := s.locker.Acquire(ctx, tourKey(in.TourID))
		if err != nil {
			if errors.Is(err, lock.ErrTimeout) {
				return nil, ErrTourBusy
			}
			return nil, fmt.Errorf("lock tour: %w", err)
		}
		defer release()
	}

	// Loaded under the lock so the capacity checked is the current one.
	t, err := s.tours.GetByID(ctx, in.TourID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("load tour: %w", err)
	}

	b := &model.Booking{
		UserID:     actor.UserID,
		TourID:     t.ID,
		HeadCount:  in.HeadCount,
		TotalPrice: t.Price * float64(in.HeadCount),
	}
	if s.enforceCapacity {
		err = s.bookings.CreateWithinCapacity(ctx, b, t.MaxCapacity)
	} else {
		err = s.bookings.Create(ctx, b)
	}
	if err != nil {
		if errors.Is(err, repository.ErrCapacity) {
			return nil, ErrCapacityExceeded
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("tour_id", t.ID),
		zap.String("user_id", actor.UserID),
		zap.Int("head_count", b.HeadCount))
	publish(ctx, s.events, s.log, queue.KeyBookingCreated, queue.BookingCreatedEvent{
		BookingID:  b.ID,
		UserID:     b.UserID,
		TourID:     b.TourID,
		TourName:   t.Name,
		HeadCount:  b.HeadCount,
		TotalPrice: b.TotalPrice,
		BookedAt:   b.BookingDate,
	})
	return b, nil
}

func (s *BookingService) withTours(ctx context.Context, list []model.Booking) ([]model.BookingView, error) {
	ids := make([]string, len(list))
	for i, b := range list {
		ids[i] = b.TourID
	}
	tours, err := tourIndex(ctx, s.tours, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve tours: %w", err)
	}
	out := make([]model.BookingView, len(list))
	for i, b := range list {
		out[i] = model.BookingView{Booking: b}
		if t, ok := tours[b.TourID]; ok {
			out[i].Tour = &t
		}
	}
	return out, nil
}

// ListMyBookings returns the caller's bookings with their tours.
func (s *BookingService) ListMyBookings(ctx context.Context, actor model.Actor) ([]model.BookingView, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	list, err := s.bookings.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return s.withTours(ctx, list)
}

// ListAllBookings returns every booking with its user and tour.  Admin only.
func (s *BookingService) ListAllBookings(ctx context.Context, actor model.Actor) ([]model.BookingView, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	list, err := s.bookings.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	views, err := s.withTours(ctx, list)
	if err != nil {
		return nil, err
	}
	userIDs := make([]string, len(list))
	for i, b := range list {
		userIDs[i] = b.UserID
	}
	users, err := s.users.Summaries(ctx, uniq(userIDs))
	if err != nil {
		return nil, fmt.Errorf("resolve users: %w", err)
	}
	for i := range views {
		if u, ok := users[views[i].UserID]; ok {
			views[i].User = &u
		}
	}
	return views, nil
}

// CancelBooking deletes a booking.  Only its owner or an admin may do so.
func (s *BookingService) CancelBooking(ctx context.Context, actor model.Actor, id string) error {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookingNotFound
		}
		return fmt.Errorf("load booking: %w", err)
	}
	if !actor.CanModify(b.UserID) {
		return ErrUnauthorized
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookingNotFound
		}
		return fmt.Errorf("delete booking: %w", err)
	}
	s.log.Info("booking cancelled", zap.String("booking_id", id), zap.String("by", actor.UserID))
	publish(ctx, s.events, s.log, queue.KeyBookingCancelled, queue.BookingCancelledEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		TourID:      b.TourID,
		HeadCount:   b.HeadCount,
		CancelledBy: actor.UserID,
		CancelledAt: time.Now().UTC(),
	})
	return nil
}
