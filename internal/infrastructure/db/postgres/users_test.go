package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/church-service/internal/domain"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var userCols = []string{"id", "name", "email", "password_hash", "role", "is_active", "last_login_at", "created_at", "updated_at"}

func TestUserRepo_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("normalizes_email", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewUserRepo(db)

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs("u-1", "Ann", "ann@example.org", "hash", "pastor", true, now, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(ctx, &domain.User{
			ID: "u-1", Name: "Ann", Email: " Ann@Example.org ", PasswordHash: "hash",
			Role: domain.RolePastor, IsActive: true, CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate_email_is_conflict", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewUserRepo(db)

		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.Create(ctx, &domain.User{ID: "u-1", Email: "a@b.c", Role: domain.RoleStaff})
		require.Error(t, err)
		assert.True(t, domain.HasCode(err, domain.CodeConflict))
	})
}

func TestUserRepo_GetByEmail(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewUserRepo(db)

		mock.ExpectQuery(`SELECT .+ FROM users WHERE lower\(email\) = \$1`).
			WithArgs("ann@example.org").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("u-1", "Ann", "ann@example.org", "hash", "admin", true, nil, now, now))

		u, err := repo.GetByEmail(ctx, "ANN@example.org")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, u.Role)
		assert.Nil(t, u.LastLoginAt)
	})

	t.Run("missing_is_not_found", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewUserRepo(db)

		mock.ExpectQuery(`SELECT .+ FROM users`).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByEmail(ctx, "ghost@example.org")
		assert.True(t, domain.HasCode(err, domain.CodeNotFound))
	})
}

func TestUserRepo_SetActive_NoRows(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(`UPDATE users SET is_active`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetActive(context.Background(), "missing", false, time.Now())
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
}
