package model

import "time"

// DefaultImageURL is stored when a tour is created without an image.
const DefaultImageURL = "no-photo.jpg"

// Tour mirrors the `tours` table.  Price is currency-agnostic.
type Tour struct {
    ID          string     `json:"id"`
    Name        string     `json:"name"`
    Description string     `json:"description"`
    Price       float64    `json:"price"`
    Location    string     `json:"location"`
    ImageURL    string     `json:"imageUrl"`
    MaxCapacity int        `json:"maxCapacity"`
    StartDate   *time.Time `json:"startDate,omitempty"`
    CreatedAt   time.Time  `json:"createdAt"`
}

// TourStats carries the values derived from comments and bookings at read
// time.  Nothing here is persisted.
type TourStats struct {
    AverageRating   float64 `json:"averageRating"`
    ReviewCount     int     `json:"reviewCount"`
    CurrentBookings int     `json:"currentBookings"`
    SpotsLeft       int     `json:"spotsLeft"`
}

// TourView is a tour decorated with its derived statistics.
type TourView struct {
    Tour
    TourStats
}
