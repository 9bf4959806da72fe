package shared

import "github.com/google/uuid"

// Actor is the authenticated user a use case runs on behalf of
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// CanAccess reports whether the actor may see an aggregate owned by owner.
// Admins see everything; other users only what they created.
func (a Actor) CanAccess(owner uuid.UUID) bool {
	return a.IsAdmin || (a.UserID != uuid.Nil && a.UserID == owner)
}

// Scope returns the owner filter for listings: nil for admins, the actor's
// own ID otherwise
func (a Actor) Scope() *uuid.UUID {
	if a.IsAdmin {
		return nil
	}
	id := a.UserID
	return &id
}
