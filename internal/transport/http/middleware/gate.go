package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/security"
	"github.com/baechuer/church-service/internal/transport/http/response"
)

// Capability names a protected operation. Routes ask the Gate for a
// capability; which roles hold it lives only in the capability table.
type Capability string

type TokenVerifier interface {
	Verify(token string) (security.Claims, error)
}

type ctxKey struct{}

func withClaims(ctx context.Context, c security.Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// ClaimsFrom returns the identity the Gate attached to the request.
func ClaimsFrom(ctx context.Context) (security.Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(security.Claims)
	return c, ok
}

type Gate struct {
	verifier TokenVerifier
	table    map[Capability]map[domain.Role]struct{}
}

func NewGate(v TokenVerifier, table map[Capability][]domain.Role) *Gate {
	t := make(map[Capability]map[domain.Role]struct{}, len(table))
	for c, roles := range table {
		set := make(map[domain.Role]struct{}, len(roles))
		for _, r := range roles {
			set[r] = struct{}{}
		}
		t[c] = set
	}
	return &Gate{verifier: v, table: t}
}

// Allowed reports whether role holds c. Unknown capabilities are held by nobody.
func (g *Gate) Allowed(c Capability, role domain.Role) bool {
	_, ok := g.table[c][role]
	return ok
}

// Require authenticates the bearer token, then checks the role against c.
//
//	no bearer token          -> 401 unauthorized
//	invalid or expired token -> 403 forbidden (meta.reason token_invalid / token_expired)
//	role lacks c             -> 403 forbidden (meta.reason insufficient_role)
func (g *Gate) Require(c Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				response.Err(w, r, domain.ErrUnauthorized("missing bearer token"))
				return
			}

			claims, err := g.verifier.Verify(raw)
			if err != nil {
				reason := "token_invalid"
				if errors.Is(err, security.ErrTokenExpired) {
					reason = "token_expired"
				}
				response.Err(w, r, &domain.AppError{
					Code:    domain.CodeForbidden,
					Message: "invalid or expired token",
					Meta:    map[string]string{"reason": reason},
				})
				return
			}

			if !g.Allowed(c, domain.Role(claims.Role)) {
				response.Err(w, r, &domain.AppError{
					Code:    domain.CodeForbidden,
					Message: "insufficient role",
					Meta:    map[string]string{"reason": "insufficient_role"},
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(h[len(prefix):])
	return tok, tok != ""
}
