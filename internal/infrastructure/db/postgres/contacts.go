package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/baechuer/church-service/internal/domain"
)

type ContactRepo struct {
	db *sql.DB
}

func NewContactRepo(db *sql.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

const contactColumns = `id, name, email, phone, subject, message, status, created_at`

func scanContact(row interface{ Scan(...any) error }) (*domain.ContactMessage, error) {
	var (
		m      domain.ContactMessage
		status string
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message, &status, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Status = domain.ContactStatus(status)
	return &m, nil
}

func (r *ContactRepo) Create(ctx context.Context, m *domain.ContactMessage) error {
	const q = `
INSERT INTO contact_messages (id, name, email, phone, subject, message, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, q, m.ID, m.Name, m.Email, m.Phone, m.Subject, m.Message, string(m.Status), m.CreatedAt); err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	return nil
}

func (r *ContactRepo) GetByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	m, err := scanContact(r.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contact_messages WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound("contact message not found")
		}
		return nil, fmt.Errorf("get contact message: %w", err)
	}
	return m, nil
}

func (r *ContactRepo) List(ctx context.Context, f domain.ContactFilter, page domain.PageRequest) (domain.Page[domain.ContactMessage], error) {
	page = page.Normalize()
	out := domain.Page[domain.ContactMessage]{Page: page.Page, Limit: page.Limit}

	w := &whereClause{}
	if f.Status != "" {
		w.add("status = ?", string(f.Status))
	}
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM contact_messages`+w.String(), w.args...).Scan(&out.Total); err != nil {
		return out, fmt.Errorf("count contact messages: %w", err)
	}

	limit, args := w.limitOffset(page)
	items, err := r.query(ctx, `SELECT `+contactColumns+` FROM contact_messages`+w.String()+` ORDER BY created_at DESC, id DESC`+limit, args...)
	if err != nil {
		return out, err
	}
	out.Items = items
	return out, nil
}

func (r *ContactRepo) Recent(ctx context.Context, limit int) ([]domain.ContactMessage, error) {
	return r.query(ctx, `SELECT `+contactColumns+` FROM contact_messages ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
}

func (r *ContactRepo) query(ctx context.Context, q string, args ...any) ([]domain.ContactMessage, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query contact messages: %w", err)
	}
	defer rows.Close()

	out := []domain.ContactMessage{}
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact message: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *ContactRepo) SetStatus(ctx context.Context, id string, status domain.ContactStatus) error {
	return execOne(ctx, r.db, "contact message", `UPDATE contact_messages SET status = $2 WHERE id = $1`, id, string(status))
}
