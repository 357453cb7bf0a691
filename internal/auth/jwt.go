package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	jose "github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
)

const clockLeeway = time.Minute

// JWTResolver verifies HS256 tokens issued by the identity provider. The token
// is read from "Authorization: Bearer <jwt>" or the legacy "token" header.
type JWTResolver struct {
	secret []byte
	now    func() time.Time
}

// NewJWTResolver returns a resolver verifying with the shared secret.
func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret), now: time.Now}
}

type profileClaims struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Resolve implements Resolver.
func (j *JWTResolver) Resolve(r *http.Request) (Identity, error) {
	raw := bearerToken(r)
	if raw == "" {
		return Identity{}, ErrUnauthenticated
	}

	tok, err := jwt.ParseSigned(raw)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: malformed token", ErrUnauthenticated)
	}
	if len(tok.Headers) != 1 || tok.Headers[0].Algorithm != string(jose.HS256) {
		return Identity{}, fmt.Errorf("%w: unexpected signing algorithm", ErrUnauthenticated)
	}

	var std jwt.Claims
	var profile profileClaims
	if err := tok.Claims(j.secret, &std, &profile); err != nil {
		return Identity{}, fmt.Errorf("%w: bad signature", ErrUnauthenticated)
	}
	if err := std.ValidateWithLeeway(jwt.Expected{Time: j.now()}, clockLeeway); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if std.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}

	name := profile.Name
	if name == "" {
		name = strings.TrimSpace(profile.FirstName + " " + profile.LastName)
	}
	return Identity{UserID: std.Subject, Name: name, Email: profile.Email}, nil
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
	}
	return strings.TrimSpace(r.Header.Get("token"))
}
