package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/baechuer/church-service/internal/domain"
)

type SubscriptionRepo struct {
	db *sql.DB
}

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo {
	return &SubscriptionRepo{db: db}
}

func (r *SubscriptionRepo) Create(ctx context.Context, s *domain.Subscription) error {
	const q = `
INSERT INTO newsletter_subscriptions (id, email, name, is_active, subscribed_at, unsubscribed_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, q, s.ID, domain.NormalizeEmail(s.Email), s.Name, s.IsActive, s.SubscribedAt, nullTime(s.UnsubscribedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict("email is already subscribed")
		}
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepo) GetByEmail(ctx context.Context, email string) (*domain.Subscription, error) {
	const q = `
SELECT id, email, name, is_active, subscribed_at, unsubscribed_at
FROM newsletter_subscriptions WHERE lower(email) = $1`
	var (
		s     domain.Subscription
		unsub sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, domain.NormalizeEmail(email)).
		Scan(&s.ID, &s.Email, &s.Name, &s.IsActive, &s.SubscribedAt, &unsub)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound("subscription not found")
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	s.UnsubscribedAt = timePtr(unsub)
	return &s, nil
}

func (r *SubscriptionRepo) Update(ctx context.Context, s *domain.Subscription) error {
	return execOne(ctx, r.db, "subscription",
		`UPDATE newsletter_subscriptions SET name = $2, is_active = $3, subscribed_at = $4, unsubscribed_at = $5 WHERE id = $1`,
		s.ID, s.Name, s.IsActive, s.SubscribedAt, nullTime(s.UnsubscribedAt))
}

func (r *SubscriptionRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM newsletter_subscriptions WHERE is_active`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}
	return n, nil
}
