package model

import "time"

// Roles a user can hold.
const (
    RoleUser  = "user"
    RoleAdmin = "admin"
)

// User represents an application user record as stored in the `users`
// table.  PasswordHash is tagged out of JSON so that a user can never be
// echoed back with its credential, whichever handler serialises it.
//
// Fields:
//  ID           – UUID primary key.
//  Name         – display name, shown as the author of comments.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password (write-only).
//  Role         – RoleUser or RoleAdmin.
//  CreatedAt    – timestamp of creation.
type User struct {
    ID           string    `json:"id"`
    Name         string    `json:"name"`
    Email        string    `json:"email"`
    PasswordHash string    `json:"-"`
    Role         string    `json:"role"`
    CreatedAt    time.Time `json:"createdAt"`
}

// UserSummary is the public projection of a user embedded in bookings
// listed for admins and in comments.
type UserSummary struct {
    ID    string `json:"id"`
    Name  string `json:"name"`
    Email string `json:"email,omitempty"`
}

// Profile is the current user with the wishlist resolved to full tours,
// in the order the tours were added.
type Profile struct {
    User
    Wishlist []Tour `json:"wishlist"`
}
