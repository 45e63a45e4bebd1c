package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/church-service/internal/application/auth"
	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/infrastructure/db/memory"
	"github.com/baechuer/church-service/internal/security"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newSvc(t *testing.T) (*auth.Service, *memory.UserRepo, *security.JWTSigner) {
	t.Helper()
	users := memory.New().Users
	signer := security.NewJWTSigner("auth-test-secret", "church-service", time.Hour)
	clock := fixedClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	return auth.NewService(users, security.NewBcryptHasher(4), signer, clock), users, signer
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("default_role_is_volunteer", func(t *testing.T) {
		svc, _, _ := newSvc(t)
		u, err := svc.Register(ctx, auth.RegisterCmd{Name: " Ann ", Email: "Ann@Church.org", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleVolunteer, u.Role)
		assert.Equal(t, "ann@church.org", u.Email)
		assert.Equal(t, "Ann", u.Name)
		assert.True(t, u.IsActive)
		assert.NotEqual(t, "secret123", u.PasswordHash)
	})

	t.Run("invalid_role", func(t *testing.T) {
		svc, _, _ := newSvc(t)
		_, err := svc.Register(ctx, auth.RegisterCmd{Email: "a@b.org", Password: "secret123", Role: "bishop"})
		assert.True(t, domain.HasCode(err, domain.CodeValidation))
	})

	t.Run("duplicate_email", func(t *testing.T) {
		svc, _, _ := newSvc(t)
		_, err := svc.Register(ctx, auth.RegisterCmd{Email: "a@b.org", Password: "secret123"})
		require.NoError(t, err)
		_, err = svc.Register(ctx, auth.RegisterCmd{Email: "A@B.org", Password: "other123"})
		assert.True(t, domain.HasCode(err, domain.CodeConflict))
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("ok_issues_verifiable_token", func(t *testing.T) {
		svc, users, signer := newSvc(t)
		u, err := svc.Register(ctx, auth.RegisterCmd{Email: "pastor@church.org", Password: "secret123", Role: "pastor"})
		require.NoError(t, err)

		res, err := svc.Login(ctx, " PASTOR@church.org", "secret123")
		require.NoError(t, err)
		require.NotEmpty(t, res.Token)
		assert.True(t, res.ExpiresAt.After(time.Now()))

		claims, err := signer.Verify(res.Token)
		require.NoError(t, err)
		assert.Equal(t, u.ID, claims.UserID)
		assert.Equal(t, "pastor", claims.Role)

		stored, err := users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.LastLoginAt)
	})

	t.Run("unknown_email_and_wrong_password_look_the_same", func(t *testing.T) {
		svc, _, _ := newSvc(t)
		_, err := svc.Register(ctx, auth.RegisterCmd{Email: "a@b.org", Password: "secret123"})
		require.NoError(t, err)

		_, err = svc.Login(ctx, "a@b.org", "wrong")
		assert.True(t, domain.HasCode(err, domain.CodeInvalidCredentials))
		_, err = svc.Login(ctx, "nobody@b.org", "secret123")
		assert.True(t, domain.HasCode(err, domain.CodeInvalidCredentials))
	})

	t.Run("inactive_account", func(t *testing.T) {
		svc, _, _ := newSvc(t)
		admin, err := svc.Register(ctx, auth.RegisterCmd{Email: "admin@b.org", Password: "secret123", Role: "admin"})
		require.NoError(t, err)
		u, err := svc.Register(ctx, auth.RegisterCmd{Email: "a@b.org", Password: "secret123"})
		require.NoError(t, err)

		got, err := svc.Deactivate(ctx, admin.ID, u.ID)
		require.NoError(t, err)
		assert.False(t, got.IsActive)

		_, err = svc.Login(ctx, "a@b.org", "secret123")
		assert.True(t, domain.HasCode(err, domain.CodeAccountInactive))

		// the password is checked first, so a wrong one still reads as bad credentials
		_, err = svc.Login(ctx, "a@b.org", "wrong")
		assert.True(t, domain.HasCode(err, domain.CodeInvalidCredentials))
	})
}

func TestDeactivate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSvc(t)
	admin, err := svc.Register(ctx, auth.RegisterCmd{Email: "admin@b.org", Password: "secret123", Role: "admin"})
	require.NoError(t, err)

	_, err = svc.Deactivate(ctx, admin.ID, admin.ID)
	assert.True(t, domain.HasCode(err, domain.CodeValidation))

	_, err = svc.Deactivate(ctx, admin.ID, "missing")
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
}
