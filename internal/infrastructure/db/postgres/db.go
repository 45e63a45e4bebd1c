package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/baechuer/church-service/internal/config"
	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/infrastructure/db/postgres/migrations"
)

// Open connects through the pgx stdlib driver and pings before returning.
func Open(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("empty DB DSN")
	}
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdle)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded goose migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

type Repos struct {
	Users         *UserRepo
	Events        *EventRepo
	Prayers       *PrayerRepo
	Contacts      *ContactRepo
	Subscriptions *SubscriptionRepo
	Sermons       *SermonRepo
}

func New(db *sql.DB) *Repos {
	return &Repos{
		Users:         NewUserRepo(db),
		Events:        NewEventRepo(db),
		Prayers:       NewPrayerRepo(db),
		Contacts:      NewContactRepo(db),
		Subscriptions: NewSubscriptionRepo(db),
		Sermons:       NewSermonRepo(db),
	}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

// whereClause collects AND-ed conditions; "?" in each condition is rewritten
// to the next positional placeholder.
type whereClause struct {
	conds []string
	args  []any
}

func (w *whereClause) add(cond string, v any) {
	w.args = append(w.args, v)
	w.conds = append(w.conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(w.args)), 1))
}

func (w *whereClause) raw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// limitOffset appends LIMIT/OFFSET placeholders for page and returns the clause and args.
func (w *whereClause) limitOffset(page domain.PageRequest) (string, []any) {
	args := append(append([]any(nil), w.args...), page.Limit, page.Offset())
	n := len(args)
	return " LIMIT $" + strconv.Itoa(n-1) + " OFFSET $" + strconv.Itoa(n), args
}

// execOne runs a single-row write and maps zero affected rows to not_found.
func execOne(ctx context.Context, db *sql.DB, entity, q string, args ...any) error {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", entity, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound(entity + " not found")
	}
	return nil
}
