// Package queue defines message payloads exchanged over the message broker,
// the publisher used by the API and the audit consumer.
package queue

import "time"

// ExchangeName is the durable topic exchange every domain event goes to.
const ExchangeName = "tourbook.events"

// Routing keys, one per event type.
const (
    KeyBookingCreated   = "booking.created"
    KeyBookingCancelled = "booking.cancelled"
    KeyTourDeleted      = "tour.deleted"
)

// BookingCreatedEvent is published after a booking is stored.  It carries
// enough for downstream consumers to log or notify without querying the
// primary database.
type BookingCreatedEvent struct {
    BookingID  string    `json:"booking_id"`
    UserID     string    `json:"user_id"`
    TourID     string    `json:"tour_id"`
    TourName   string    `json:"tour_name"`
    HeadCount  int       `json:"head_count"`
    TotalPrice float64   `json:"total_price"`
    BookedAt   time.Time `json:"booked_at"`
}

// BookingCancelledEvent is published after a booking is deleted.
// CancelledBy differs from UserID when an admin cancelled it.
type BookingCancelledEvent struct {
    BookingID   string    `json:"booking_id"`
    UserID      string    `json:"user_id"`
    TourID      string    `json:"tour_id"`
    HeadCount   int       `json:"head_count"`
    CancelledBy string    `json:"cancelled_by"`
    CancelledAt time.Time `json:"cancelled_at"`
}

// TourDeletedEvent is published after a tour and everything referencing it
// has been removed.
type TourDeletedEvent struct {
    TourID    string    `json:"tour_id"`
    TourName  string    `json:"tour_name"`
    DeletedBy string    `json:"deleted_by"`
    DeletedAt time.Time `json:"deleted_at"`
}
