// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/kurakampus-api/internal/core"
)

func newMockRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close() //nolint:errcheck // test cleanup
	})

	return NewRepository(sqlx.NewDb(db, "pgx")), mock
}

var userRowColumns = []string{
	"id", "email", "username", "password_hash", "first_name", "last_name",
	"role", "status", "email_verified", "last_login_at", "created_at",
	"updated_at",
}

func newTestUser() *User {
	return &User{
		ID:           "55555555-5555-5555-5555-555555555555",
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		FirstName:    "Alice",
		LastName:     "Wanjiru",
		Role:         RoleUser,
		Status:       StatusActive,
	}
}

func TestCreateScansDefaults(t *testing.T) {
	repo, mock := newMockRepository(t)
	u := newTestUser()
	now := time.Now().UTC().Truncate(time.Second)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(u.ID, u.Email, u.Username, u.PasswordHash,
			u.FirstName, u.LastName, u.Role, u.Status).
		WillReturnRows(sqlmock.NewRows([]string{
			"email_verified", "created_at", "updated_at",
		}).AddRow(false, now, now))

	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, now, u.CreatedAt)
	assert.False(t, u.EmailVerified)
}

func TestCreateMapsUniqueViolations(t *testing.T) {
	tests := []struct {
		constraint string
		wantField  string
	}{
		{constraint: "users_email_key", wantField: "email"},
		{constraint: "users_username_key", wantField: "username"},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			repo, mock := newMockRepository(t)

			mock.ExpectQuery(`INSERT INTO users`).
				WillReturnError(&pgconn.PgError{
					Code:           "23505",
					ConstraintName: tt.constraint,
				})

			err := repo.Create(context.Background(), newTestUser())
			require.ErrorIs(t, err, core.ErrDuplicateKey)

			var dup *core.DuplicateKeyError
			require.ErrorAs(t, err, &dup)
			assert.Equal(t, tt.wantField, dup.Field)
		})
	}
}

func TestCreatePassesThroughOtherErrors(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23502", ColumnName: "email"})

	err := repo.Create(context.Background(), newTestUser())
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrDuplicateKey)
}

func TestGetByEmail(t *testing.T) {
	repo, mock := newMockRepository(t)
	u := newTestUser()
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM users\s+WHERE email = \$1`).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			u.ID, u.Email, u.Username, u.PasswordHash, u.FirstName,
			u.LastName, u.Role, u.Status, true, nil, now, now,
		))

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.Username, got.Username)
	assert.True(t, got.EmailVerified)
	assert.Nil(t, got.LastLoginAt)
}

func TestGetByUsernameNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := repo.GetByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateLastLoginMissingUser(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`SET last_login_at = NOW\(\)`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateLastLogin(context.Background(), "missing")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestListBuildsFilters(t *testing.T) {
	repo, mock := newMockRepository(t)
	u := newTestUser()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE TRUE AND \(email ILIKE \$1 .*\) AND role = \$2`).
		WithArgs(`%50\%%`, RoleAdmin).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))
	mock.ExpectQuery(`ORDER BY created_at DESC\s+LIMIT \$3 OFFSET \$4`).
		WithArgs(`%50\%%`, RoleAdmin, 10, 10).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			u.ID, u.Email, u.Username, u.PasswordHash, u.FirstName,
			u.LastName, RoleAdmin, u.Status, false, now, now, now,
		))

	users, total, err := repo.List(context.Background(), ListUsersParams{
		Page:     2,
		PageSize: 10,
		Search:   "50%",
		Role:     RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, 21, total)
	require.Len(t, users, 1)
	assert.NotNil(t, users[0].LastLoginAt)
}
