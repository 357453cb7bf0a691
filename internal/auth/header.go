package auth

import (
	"net/http"
	"strings"
)

// Headers forwarded by the gateway after it has verified the session.
const (
	HeaderUserID    = "x-user-id"
	HeaderUserName  = "x-user-name"
	HeaderUserEmail = "x-user-email"
)

// HeaderResolver trusts identity headers set by an upstream gateway.
type HeaderResolver struct{}

// Resolve implements Resolver.
func (HeaderResolver) Resolve(r *http.Request) (Identity, error) {
	userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if userID == "" {
		return Identity{}, ErrUnauthenticated
	}
	return Identity{
		UserID: userID,
		Name:   strings.TrimSpace(r.Header.Get(HeaderUserName)),
		Email:  strings.TrimSpace(r.Header.Get(HeaderUserEmail)),
	}, nil
}
