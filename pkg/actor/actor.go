// Package actor identifies the user or system performing an action.
package actor

import (
	"context"
	"fmt"

	"github.com/medflow/payroll-backend/pkg/auth"
)

// SystemID is the actor id recorded for event-driven and scheduled work
const SystemID = "00000000-0000-0000-0000-000000000000"

// Actor represents the entity performing an action in the system.
type Actor struct {
	// ID is the subject of the bearer token
	ID string `json:"id"`

	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`

	Role auth.Role `json:"role"`
}

// FullName returns the actor's full name (first + last)
func (a *Actor) FullName() string {
	if a == nil {
		return ""
	}
	return a.FirstName + " " + a.LastName
}

// String returns a string representation of the actor for logging
func (a *Actor) String() string {
	if a == nil {
		return "system"
	}
	return fmt.Sprintf("%s (%s)", a.ID, a.Role)
}

// Can reports whether the actor's role grants permission
func (a *Actor) Can(permission string) bool {
	if a == nil {
		return false
	}
	return auth.Authorize(a.Role, permission)
}

type contextKey string

const actorContextKey contextKey = "actor"

// FromContext retrieves the Actor from the context.
// Returns nil if no actor is present.
func FromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	a, ok := ctx.Value(actorContextKey).(*Actor)
	if !ok {
		return nil
	}
	return a
}

// WithActor returns a new context with the Actor attached.
func WithActor(ctx context.Context, a *Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey, a)
}

// IDFromContext returns the acting user's id, or SystemID when there is none
func IDFromContext(ctx context.Context) string {
	if a := FromContext(ctx); a != nil && a.ID != "" {
		return a.ID
	}
	return SystemID
}

// SystemActor returns an Actor representing the system itself.
// Used by the attendance consumer when it triggers a recalculation.
func SystemActor() *Actor {
	return &Actor{
		ID:        SystemID,
		FirstName: "System",
		Email:     "system@payroll.local",
		Role:      auth.RoleAdmin,
	}
}

// IsSystem returns true if the actor represents the system.
func (a *Actor) IsSystem() bool {
	if a == nil {
		return true
	}
	return a.ID == SystemID
}
