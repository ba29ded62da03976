package model

import "time"

// Rating bounds for comments.
const (
    MinRating = 1
    MaxRating = 5
)

// Comment is a review left on a tour.  A user may comment on the same tour
// more than once.
type Comment struct {
    ID        string    `json:"id"`
    UserID    string    `json:"userId"`
    TourID    string    `json:"tourId"`
    Text      string    `json:"text"`
    Rating    int       `json:"rating"`
    CreatedAt time.Time `json:"createdAt"`
}

// CommentView is a comment with its author resolved.
type CommentView struct {
    Comment
    User UserSummary `json:"user"`
}
