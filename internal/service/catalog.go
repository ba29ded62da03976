package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/tourbook/internal/model"
	"github.com/iliyamo/tourbook/internal/queue"
	"github.com/iliyamo/tourbook/internal/repository"
)

// DefaultMaxCapacity is used when a tour is created without a capacity.
const DefaultMaxCapacity = 20

// CatalogService manages tours and decorates them with figures derived
// from their comments and bookings.
type CatalogService struct {
	tours    TourStore
	bookings BookingStore
	comments CommentStore
	events   EventPublisher
	log      *zap.Logger
}

func NewCatalogService(tours TourStore, bookings BookingStore, comments CommentStore, events EventPublisher, log *zap.Logger) *CatalogService {
	return &CatalogService{tours: tours, bookings: bookings, comments: comments, events: events, log: orNop(log)}
}

// TourFilter narrows ListTours.  An empty Query lists everything.
type TourFilter struct {
	Query string
}

// TourInput is the body of a tour creation.
type TourInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       *float64   `json:"price" validate:"required"`
	Location    string     `json:"location"`
	ImageURL    string     `json:"imageUrl"`
	MaxCapacity *int       `json:"maxCapacity"`
	StartDate   *time.Time `json:"startDate"`
}

// TourPatch is a partial tour update; nil fields are left unchanged.  A
// null startDate clears the date.
type TourPatch struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Price       *float64     `json:"price"`
	Location    *string      `json:"location"`
	ImageURL    *string      `json:"imageUrl"`
	MaxCapacity *int         `json:"maxCapacity"`
	StartDate   OptionalTime `json:"startDate"`
}

// OptionalTime tells an absent JSON field from an explicit null.  Set is
// true whenever the field appeared; a null leaves Time nil.
type OptionalTime struct {
	Set  bool
	Time *time.Time
}

func (o *OptionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Time = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	o.Time = &t
	return nil
}

// tourRules are the constraints every stored tour satisfies.
type tourRules struct {
	Name        string  `json:"name" validate:"required,max=50"`
	Description string  `json:"description" validate:"required,max=500"`
	Price       float64 `json:"price" validate:"gte=0"`
	Location    string  `json:"location" validate:"required"`
	MaxCapacity int     `json:"maxCapacity" validate:"gte=1"`
}

func validateTour(t *model.Tour) error {
	t.Name = strings.TrimSpace(t.Name)
	t.Description = strings.TrimSpace(t.Description)
	t.Location = strings.TrimSpace(t.Location)
	t.ImageURL = strings.TrimSpace(t.ImageURL)
	if t.ImageURL == "" {
		t.ImageURL = model.DefaultImageURL
	}
	return validateStruct(tourRules{
		Name:        t.Name,
		Description: t.Description,
		Price:       t.Price,
		Location:    t.Location,
		MaxCapacity: t.MaxCapacity,
	})
}

// decorate attaches rating and capacity figures to each tour using one
// grouped query per store.
func (s *CatalogService) decorate(ctx context.Context, tours []model.Tour) ([]model.TourView, error) {
	ids := make([]string, len(tours))
	for i, t := range tours {
		ids[i] = t.ID
	}
	booked, err := s.bookings.HeadCounts(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("sum head counts: %w", err)
	}
	ratings, err := s.comments.RatingStats(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("aggregate ratings: %w", err)
	}
	out := make([]model.TourView, len(tours))
	for i, t := range tours {
		out[i] = model.TourView{Tour: t, TourStats: tourStats(t, booked[t.ID], ratings[t.ID])}
	}
	return out, nil
}

func tourStats(t model.Tour, booked int, r repository.RatingStat) model.TourStats {
	st := model.TourStats{
		ReviewCount:     r.Count,
		CurrentBookings: booked,
		SpotsLeft:       t.MaxCapacity - booked,
	}
	if r.Count > 0 {
		st.AverageRating = math.Round(float64(r.Sum)/float64(r.Count)*10) / 10
	}
	return st
}

// ListTours returns every tour matching the filter with derived figures.
func (s *CatalogService) ListTours(ctx context.Context, f TourFilter) ([]model.TourView, error) {
	tours, err := s.tours.List(ctx, f.Query)
	if err != nil {
		return nil, fmt.Errorf("list tours: %w", err)
	}
	return s.decorate(ctx, tours)
}

func (s *CatalogService) getTour(ctx context.Context, id string) (*model.Tour, error) {
	t, err := s.tours.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("load tour: %w", err)
	}
	return t, nil
}

func (s *CatalogService) view(ctx context.Context, t *model.Tour) (*model.TourView, error) {
	views, err := s.decorate(ctx, []model.Tour{*t})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// GetTour returns one tour with derived figures.
func (s *CatalogService) GetTour(ctx context.Context, id string) (*model.TourView, error) {
	t, err := s.getTour(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, t)
}

// CreateTour stores a new tour.  Admin only.
func (s *CatalogService) CreateTour(ctx context.Context, actor model.Actor, in TourInput) (*model.TourView, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	t := &model.Tour{
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		Location:    in.Location,
		ImageURL:    in.ImageURL,
		MaxCapacity: DefaultMaxCapacity,
		StartDate:   in.StartDate,
	}
	if in.MaxCapacity != nil {
		t.MaxCapacity = *in.MaxCapacity
	}
	if err := validateTour(t); err != nil {
		return nil, err
	}
	if err := s.tours.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create tour: %w", err)
	}
	s.log.Info("tour created", zap.String("tour_id", t.ID), zap.String("by", actor.UserID))
	return s.view(ctx, t)
}

// UpdateTour applies a partial update.  Admin only.
func (s *CatalogService) UpdateTour(ctx context.Context, actor model.Actor, id string, p TourPatch) (*model.TourView, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	t, err := s.getTour(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	if p.Location != nil {
		t.Location = *p.Location
	}
	if p.ImageURL != nil {
		t.ImageURL = *p.ImageURL
	}
	if p.MaxCapacity != nil {
		t.MaxCapacity = *p.MaxCapacity
	}
	if p.StartDate.Set {
		t.StartDate = p.StartDate.Time // null clears the date
	}
	if err := validateTour(t); err != nil {
		return nil, err
	}
	if err := s.tours.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("update tour: %w", err)
	}
	return s.view(ctx, t)
}

// DeleteTour removes the tour with its bookings, comments and wishlist
// entries in one transaction.  Admin only.
func (s *CatalogService) DeleteTour(ctx context.Context, actor model.Actor, id string) error {
	if !actor.IsAdmin() {
		return ErrUnauthorized
	}
	t, err := s.getTour(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tours.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTourNotFound
		}
		return fmt.Errorf("delete tour: %w", err)
	}
	s.log.Info("tour deleted", zap.String("tour_id", id), zap.String("by", actor.UserID))
	publish(ctx, s.events, s.log, queue.KeyTourDeleted, queue.TourDeletedEvent{
		TourID:    id,
		TourName:  t.Name,
		DeletedBy: actor.UserID,
		DeletedAt: time.Now().UTC(),
	})
	return nil
}
