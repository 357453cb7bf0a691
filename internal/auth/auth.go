// Package auth resolves the caller's identity from an incoming request.
//
// The service never authenticates users itself: an external identity
// provider (or the API gateway in front of it) issues the identity, and a
// Resolver only reads it. Middleware short-circuits with 401 before any
// handler runs.
package auth

import (
	"context"
	"errors"
	"log"
	"net/http"

	"jobtracker/internal/httpx"
)

// Identity is the resolved caller.
type Identity struct {
	UserID string
	Name   string
	Email  string
}

// ErrUnauthenticated is returned when a request carries no usable identity.
var ErrUnauthenticated = errors.New("not authorized, login required")

// Resolver extracts an Identity from a request.
type Resolver interface {
	Resolve(r *http.Request) (Identity, error)
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the Identity stored by Middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && id.UserID != ""
}

// Middleware rejects requests the resolver cannot identify.
func Middleware(res Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := res.Resolve(r)
			if err != nil || id.UserID == "" {
				if err != nil && !errors.Is(err, ErrUnauthenticated) {
					log.Printf("[auth] resolve failed: %v", err)
				}
				httpx.Error(w, "Not authorized, login required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
