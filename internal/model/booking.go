package model

import "time"

// Booking records a user's reservation of HeadCount places on a tour.
// TotalPrice is computed once, at creation, from the tour price of that
// moment; later price changes do not touch existing bookings.  Bookings are
// never updated in place, only created and cancelled (deleted).
//
// Fields:
//  ID          – UUID primary key.
//  UserID      – user who made the booking.
//  TourID      – tour being booked.
//  HeadCount   – number of places, at least one.
//  TotalPrice  – tour price × head count, frozen.
//  BookingDate – creation timestamp.
type Booking struct {
    ID          string    `json:"id"`
    UserID      string    `json:"userId"`
    TourID      string    `json:"tourId"`
    HeadCount   int       `json:"headCount"`
    TotalPrice  float64   `json:"totalPrice"`
    BookingDate time.Time `json:"bookingDate"`
}

// BookingView is a booking with its references resolved.  Tour is set for
// the caller's own bookings; admins additionally get User.  A reference that
// no longer resolves is left nil.
type BookingView struct {
    Booking
    Tour *Tour        `json:"tour,omitempty"`
    User *UserSummary `json:"user,omitempty"`
}
