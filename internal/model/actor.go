package model

// Actor is the authenticated caller of a service operation.  It is resolved
// from the bearer token once per request and passed explicitly to every
// service call that depends on identity.
type Actor struct {
    UserID string
    Role   string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Authenticated reports whether the actor carries a user identity.
func (a Actor) Authenticated() bool { return a.UserID != "" }

// CanModify is the single "owner or admin" rule shared by booking
// cancellation and comment editing.
func (a Actor) CanModify(ownerID string) bool {
    if !a.Authenticated() {
        return false
    }
    return a.IsAdmin() || a.UserID == ownerID
}
