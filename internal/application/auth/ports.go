package auth

import (
	"context"
	"time"

	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/security"
)

type Clock interface {
	Now() time.Time
}

// UserRepo is the credential store. Create returns a conflict error on a
// duplicate email; lookups return a not_found error when nothing matches.
type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetActive(ctx context.Context, id string, active bool, at time.Time) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type TokenIssuer interface {
	Issue(c security.Claims) (string, time.Time, error)
}
