package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/baechuer/church-service/internal/domain"
)

type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

const eventColumns = `id, title, description, date, end_date, location, category, max_attendees, image_url, is_published, created_by, created_at, updated_at`

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanEvent(row interface{ Scan(...any) error }, extra ...any) (*domain.Event, error) {
	var (
		e         domain.Event
		endDate   sql.NullTime
		category  string
		maxAtt    sql.NullInt64
		createdBy sql.NullString
	)
	dest := []any{&e.ID, &e.Title, &e.Description, &e.Date, &endDate, &e.Location, &category, &maxAtt,
		&e.ImageURL, &e.IsPublished, &createdBy, &e.CreatedAt, &e.UpdatedAt}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	e.EndDate = timePtr(endDate)
	e.Category = domain.EventCategory(category)
	e.MaxAttendees = intPtr(maxAtt)
	e.CreatedBy = createdBy.String
	return &e, nil
}

func (r *EventRepo) Create(ctx context.Context, e *domain.Event) error {
	const q = `
INSERT INTO events (id, title, description, date, end_date, location, category, max_attendees, image_url, is_published, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	var createdBy sql.NullString
	if e.CreatedBy != "" {
		createdBy = sql.NullString{String: e.CreatedBy, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.Title, e.Description, e.Date, nullTime(e.EndDate), e.Location, string(e.Category),
		nullInt(e.MaxAttendees), e.ImageURL, e.IsPublished, createdBy, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound("event not found")
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if e.Attendees, err = loadAttendees(ctx, r.db, id); err != nil {
		return nil, err
	}
	e.AttendeeCount = len(e.Attendees)
	return e, nil
}

func loadAttendees(ctx context.Context, q queryer, eventID string) ([]domain.Attendee, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT name, email, phone, registered_at FROM event_attendees WHERE event_id = $1 ORDER BY registered_at`, eventID)
	if err != nil {
		return nil, fmt.Errorf("load attendees: %w", err)
	}
	defer rows.Close()

	var out []domain.Attendee
	for rows.Next() {
		var a domain.Attendee
		if err := rows.Scan(&a.Name, &a.Email, &a.Phone, &a.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func eventWhere(f domain.EventFilter) *whereClause {
	w := &whereClause{}
	if f.OnlyPublished {
		w.raw("is_published = TRUE")
	}
	if f.Category != "" {
		w.add("category = ?", string(f.Category))
	}
	if f.UpcomingFrom != nil {
		w.add("date >= ?", *f.UpcomingFrom)
	}
	return w
}

func (r *EventRepo) Count(ctx context.Context, f domain.EventFilter) (int, error) {
	w := eventWhere(f)
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM events`+w.String(), w.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func (r *EventRepo) List(ctx context.Context, f domain.EventFilter, page domain.PageRequest) (domain.Page[domain.Event], error) {
	page = page.Normalize()
	out := domain.Page[domain.Event]{Page: page.Page, Limit: page.Limit}

	total, err := r.Count(ctx, f)
	if err != nil {
		return out, err
	}
	out.Total = total

	w := eventWhere(f)
	limit, args := w.limitOffset(page)
	q := `SELECT ` + eventColumns + `,
       (SELECT count(*) FROM event_attendees a WHERE a.event_id = events.id)
FROM events` + w.String() + `
ORDER BY date ASC, id ASC` + limit

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return out, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out.Items = []domain.Event{}
	for rows.Next() {
		var count int
		e, err := scanEvent(rows, &count)
		if err != nil {
			return out, fmt.Errorf("scan event: %w", err)
		}
		e.AttendeeCount = count
		out.Items = append(out.Items, *e)
	}
	return out, rows.Err()
}

func (r *EventRepo) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, "event", `DELETE FROM events WHERE id = $1`, id)
}

// AddAttendee locks the event row so the duplicate and capacity checks and
// the insert see a stable attendee list.
func (r *EventRepo) AddAttendee(ctx context.Context, eventID string, a domain.Attendee) (*domain.Event, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	e, err := scanEvent(tx.QueryRowContext(ctx, q, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound("event not found")
		}
		return nil, fmt.Errorf("lock event: %w", err)
	}

	if e.Attendees, err = loadAttendees(ctx, tx, eventID); err != nil {
		return nil, err
	}
	if err := e.CheckRegistration(a.Email); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO event_attendees (event_id, name, email, phone, registered_at) VALUES ($1, $2, $3, $4, $5)`,
		eventID, a.Name, a.Email, a.Phone, a.RegisteredAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict(domain.MsgAlreadyRegistered)
		}
		return nil, fmt.Errorf("insert attendee: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	e.Attendees = append(e.Attendees, a)
	e.AttendeeCount = len(e.Attendees)
	return e, nil
}
