package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/baechuer/church-service/internal/domain"
)

type PrayerRepo struct {
	db *sql.DB
}

func NewPrayerRepo(db *sql.DB) *PrayerRepo {
	return &PrayerRepo{db: db}
}

const prayerColumns = `id, name, email, request, category, is_public, is_answered, answered_at, created_at`

func scanPrayer(row interface{ Scan(...any) error }) (*domain.PrayerRequest, error) {
	var (
		p          domain.PrayerRequest
		category   string
		answeredAt sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Request, &category, &p.IsPublic, &p.IsAnswered, &answeredAt, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Category = domain.PrayerCategory(category)
	p.AnsweredAt = timePtr(answeredAt)
	return &p, nil
}

func (r *PrayerRepo) Create(ctx context.Context, p *domain.PrayerRequest) error {
	const q = `
INSERT INTO prayer_requests (id, name, email, request, category, is_public, is_answered, answered_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, q, p.ID, p.Name, p.Email, p.Request, string(p.Category),
		p.IsPublic, p.IsAnswered, nullTime(p.AnsweredAt), p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert prayer request: %w", err)
	}
	return nil
}

func (r *PrayerRepo) GetByID(ctx context.Context, id string) (*domain.PrayerRequest, error) {
	p, err := scanPrayer(r.db.QueryRowContext(ctx, `SELECT `+prayerColumns+` FROM prayer_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound("prayer request not found")
		}
		return nil, fmt.Errorf("get prayer request: %w", err)
	}
	return p, nil
}

func prayerWhere(f domain.PrayerFilter) *whereClause {
	w := &whereClause{}
	if f.Category != "" {
		w.add("category = ?", string(f.Category))
	}
	if f.Answered != nil {
		w.add("is_answered = ?", *f.Answered)
	}
	return w
}

func (r *PrayerRepo) Count(ctx context.Context, f domain.PrayerFilter) (int, error) {
	w := prayerWhere(f)
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM prayer_requests`+w.String(), w.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count prayer requests: %w", err)
	}
	return n, nil
}

func (r *PrayerRepo) List(ctx context.Context, f domain.PrayerFilter, page domain.PageRequest) (domain.Page[domain.PrayerRequest], error) {
	page = page.Normalize()
	out := domain.Page[domain.PrayerRequest]{Page: page.Page, Limit: page.Limit}

	total, err := r.Count(ctx, f)
	if err != nil {
		return out, err
	}
	out.Total = total

	w := prayerWhere(f)
	limit, args := w.limitOffset(page)
	items, err := r.query(ctx, `SELECT `+prayerColumns+` FROM prayer_requests`+w.String()+` ORDER BY created_at DESC, id DESC`+limit, args...)
	if err != nil {
		return out, err
	}
	out.Items = items
	return out, nil
}

func (r *PrayerRepo) Recent(ctx context.Context, limit int) ([]domain.PrayerRequest, error) {
	return r.query(ctx, `SELECT `+prayerColumns+` FROM prayer_requests ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
}

func (r *PrayerRepo) query(ctx context.Context, q string, args ...any) ([]domain.PrayerRequest, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query prayer requests: %w", err)
	}
	defer rows.Close()

	out := []domain.PrayerRequest{}
	for rows.Next() {
		p, err := scanPrayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prayer request: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PrayerRepo) SetAnswered(ctx context.Context, id string, answered bool, at *time.Time) error {
	return execOne(ctx, r.db, "prayer request",
		`UPDATE prayer_requests SET is_answered = $2, answered_at = $3 WHERE id = $1`,
		id, answered, nullTime(at))
}
