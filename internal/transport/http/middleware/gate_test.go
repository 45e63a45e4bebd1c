package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/security"
	"github.com/baechuer/church-service/internal/transport/http/response"
)

const testSecret = "gate-test-secret"

var testTable = map[Capability][]domain.Role{
	"dashboard:read": {domain.RoleAdmin, domain.RolePastor},
	"self":           domain.AllRoles(),
}

func tokenFor(t *testing.T, secret, role string, ttl time.Duration) string {
	t.Helper()
	tok, _, err := security.NewJWTSigner(secret, "church-service", ttl).Issue(security.Claims{
		UserID: "u-1",
		Email:  "someone@church.org",
		Role:   role,
	})
	require.NoError(t, err)
	return tok
}

func serveGate(t *testing.T, c Capability, authz string) (*httptest.ResponseRecorder, *security.Claims) {
	t.Helper()
	g := NewGate(security.NewJWTSigner(testSecret, "church-service", time.Hour), testTable)

	var seen *security.Claims
	h := g.Require(c)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cl, ok := ClaimsFrom(r.Context())
		require.True(t, ok)
		seen = &cl
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr, seen
}

func errBody(t *testing.T, rr *httptest.ResponseRecorder) response.ErrorPayload {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

func TestGate(t *testing.T) {
	t.Run("no_token_is_401", func(t *testing.T) {
		rr, seen := serveGate(t, "dashboard:read", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "unauthorized", errBody(t, rr).Code)
		assert.Nil(t, seen)
	})

	t.Run("non_bearer_scheme_is_401", func(t *testing.T) {
		rr, _ := serveGate(t, "dashboard:read", "Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("other_secret_is_403", func(t *testing.T) {
		tok := tokenFor(t, "another-secret", "admin", time.Hour)
		rr, seen := serveGate(t, "dashboard:read", "Bearer "+tok)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "token_invalid", errBody(t, rr).Meta["reason"])
		assert.Nil(t, seen)
	})

	t.Run("expired_token_is_403", func(t *testing.T) {
		tok := tokenFor(t, testSecret, "admin", -time.Minute)
		rr, _ := serveGate(t, "dashboard:read", "Bearer "+tok)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "token_expired", errBody(t, rr).Meta["reason"])
	})

	t.Run("volunteer_on_admin_route_is_403", func(t *testing.T) {
		tok := tokenFor(t, testSecret, "volunteer", time.Hour)
		rr, seen := serveGate(t, "dashboard:read", "Bearer "+tok)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "insufficient_role", errBody(t, rr).Meta["reason"])
		assert.Nil(t, seen)
	})

	t.Run("admin_passes_with_claims", func(t *testing.T) {
		tok := tokenFor(t, testSecret, "admin", time.Hour)
		rr, seen := serveGate(t, "dashboard:read", "Bearer "+tok)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "u-1", seen.UserID)
		assert.Equal(t, "admin", seen.Role)
	})

	t.Run("staff_holds_self", func(t *testing.T) {
		tok := tokenFor(t, testSecret, "staff", time.Hour)
		rr, _ := serveGate(t, "self", "Bearer "+tok)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("unknown_capability_denies_everyone", func(t *testing.T) {
		tok := tokenFor(t, testSecret, "admin", time.Hour)
		rr, _ := serveGate(t, "nonexistent", "Bearer "+tok)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
