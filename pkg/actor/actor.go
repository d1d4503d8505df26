// Package actor identifies the user performing an action. The auth
// middleware attaches an Actor to every authenticated request; the
// ingestion workflow and usage logging read it to stamp added_by and
// used_by.
package actor

import (
	"context"
	"fmt"
	"strings"
)

// Actor represents the user performing an action
type Actor struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
}

// FullName returns the actor's full name (first + last)
func (a *Actor) FullName() string {
	if a == nil {
		return ""
	}
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// String returns a string representation of the actor for logging
func (a *Actor) String() string {
	if a == nil {
		return "anonymous"
	}
	if name := a.FullName(); name != "" {
		return fmt.Sprintf("%s (%s)", name, a.Email)
	}
	return a.Email
}

type contextKey string

const actorContextKey contextKey = "actor"

// FromContext retrieves the Actor from the context.
// Returns nil for unauthenticated requests.
func FromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	actor, ok := ctx.Value(actorContextKey).(*Actor)
	if !ok {
		return nil
	}
	return actor
}

// WithActor returns a new context with the Actor attached.
func WithActor(ctx context.Context, a *Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey, a)
}

// Present reports whether ctx carries an actor with an ID
func Present(ctx context.Context) bool {
	a := FromContext(ctx)
	return a != nil && a.ID != ""
}
