package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/security"
)

type Service struct {
	users  UserRepo
	hasher PasswordHasher
	tokens TokenIssuer
	clock  Clock
}

func NewService(users UserRepo, hasher PasswordHasher, tokens TokenIssuer, clock Clock) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens, clock: clock}
}

type RegisterCmd struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Register creates an active user. An empty role means volunteer.
func (s *Service) Register(ctx context.Context, cmd RegisterCmd) (*domain.User, error) {
	role := domain.RoleVolunteer
	if strings.TrimSpace(cmd.Role) != "" {
		r, ok := domain.ParseRole(cmd.Role)
		if !ok {
			return nil, domain.ErrValidationMeta("invalid role", map[string]string{"invalid": "role"})
		}
		role = r
	}

	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	u := &domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(cmd.Name),
		Email:        domain.NormalizeEmail(cmd.Email),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if domain.HasCode(err, domain.CodeNotFound) {
			return nil, domain.ErrInvalidCredentials()
		}
		return nil, err
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials()
	}
	if !u.IsActive {
		return nil, domain.ErrAccountInactive()
	}

	token, exp, err := s.tokens.Issue(security.Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LastLoginAt = &now

	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Deactivate turns off a user's access. Users are never hard-deleted.
func (s *Service) Deactivate(ctx context.Context, actorID, targetID string) (*domain.User, error) {
	if actorID == targetID {
		return nil, domain.ErrValidation("cannot deactivate your own account")
	}
	if err := s.users.SetActive(ctx, targetID, false, s.clock.Now()); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, targetID)
}
