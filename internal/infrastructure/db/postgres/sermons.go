package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/baechuer/church-service/internal/domain"
)

type SermonRepo struct {
	db *sql.DB
}

func NewSermonRepo(db *sql.DB) *SermonRepo {
	return &SermonRepo{db: db}
}

const sermonColumns = `id, title, speaker, date, scripture, description, series, video_url, audio_url, created_at`

func scanSermon(row interface{ Scan(...any) error }) (*domain.Sermon, error) {
	var s domain.Sermon
	err := row.Scan(&s.ID, &s.Title, &s.Speaker, &s.Date, &s.Scripture, &s.Description, &s.Series, &s.VideoURL, &s.AudioURL, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SermonRepo) Create(ctx context.Context, s *domain.Sermon) error {
	const q = `
INSERT INTO sermons (id, title, speaker, date, scripture, description, series, video_url, audio_url, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.Title, s.Speaker, s.Date, s.Scripture, s.Description, s.Series, s.VideoURL, s.AudioURL, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sermon: %w", err)
	}
	return nil
}

func (r *SermonRepo) GetByID(ctx context.Context, id string) (*domain.Sermon, error) {
	s, err := scanSermon(r.db.QueryRowContext(ctx, `SELECT `+sermonColumns+` FROM sermons WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound("sermon not found")
		}
		return nil, fmt.Errorf("get sermon: %w", err)
	}
	return s, nil
}

func (r *SermonRepo) List(ctx context.Context, f domain.SermonFilter, page domain.PageRequest) (domain.Page[domain.Sermon], error) {
	page = page.Normalize()
	out := domain.Page[domain.Sermon]{Page: page.Page, Limit: page.Limit}

	w := &whereClause{}
	if f.Speaker != "" {
		w.add("lower(speaker) = lower(?)", f.Speaker)
	}
	if f.Series != "" {
		w.add("lower(series) = lower(?)", f.Series)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM sermons`+w.String(), w.args...).Scan(&out.Total); err != nil {
		return out, fmt.Errorf("count sermons: %w", err)
	}

	limit, args := w.limitOffset(page)
	rows, err := r.db.QueryContext(ctx, `SELECT `+sermonColumns+` FROM sermons`+w.String()+` ORDER BY date DESC, id DESC`+limit, args...)
	if err != nil {
		return out, fmt.Errorf("list sermons: %w", err)
	}
	defer rows.Close()

	out.Items = []domain.Sermon{}
	for rows.Next() {
		s, err := scanSermon(rows)
		if err != nil {
			return out, fmt.Errorf("scan sermon: %w", err)
		}
		out.Items = append(out.Items, *s)
	}
	return out, rows.Err()
}

func (r *SermonRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM sermons`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sermons: %w", err)
	}
	return n, nil
}
