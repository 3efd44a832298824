package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easylaw/auth-service/users"
)

var userCols = []string{
	"id", "email", "password_hash", "role", "status",
	"created_at", "updated_at", "last_login", "login_count",
}

func userRow(id, email string) *pgxmock.Rows {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return pgxmock.NewRows(userCols).
		AddRow(id, email, "hash", "user", "active", now, now, nil, 0)
}

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewStore(mock)
}

func TestStoreCreate(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice@example.com", "hash", "user", "active").
		WillReturnRows(userRow("11111111-1111-1111-1111-111111111111", "alice@example.com"))

	user, err := store.Create(context.Background(), "alice@example.com", "hash", users.RoleUser, users.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, users.RoleUser, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreCreateDuplicateEmail(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice@example.com", "hash", "user", "active").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	_, err := store.Create(context.Background(), "alice@example.com", "hash", users.RoleUser, users.StatusActive)
	assert.ErrorIs(t, err, users.ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreGetByEmail(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("Alice@Example.com").
		WillReturnRows(userRow("11111111-1111-1111-1111-111111111111", "alice@example.com"))

	user, err := store.GetByEmail(context.Background(), "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreGetByEmailNotFound(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE LOWER\(email\)`).
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := store.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, users.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreGetByIDMalformedIdentifier(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs("not-a-uuid").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation})

	_, err := store.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, users.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreRecordLogin(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectExec(`UPDATE users SET`).
		WithArgs("11111111-1111-1111-1111-111111111111").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := store.RecordLogin(context.Background(), "11111111-1111-1111-1111-111111111111")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreRecordLoginNotFound(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectExec(`UPDATE users SET`).
		WithArgs("22222222-2222-2222-2222-222222222222").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.RecordLogin(context.Background(), "22222222-2222-2222-2222-222222222222")
	assert.ErrorIs(t, err, users.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreUpdateNotFound(t *testing.T) {
	mock, store := newMockStore(t)

	status := users.StatusInactive
	statusStr := "inactive"
	mock.ExpectQuery(`UPDATE users SET`).
		WithArgs("11111111-1111-1111-1111-111111111111", (*string)(nil), (*string)(nil), &statusStr).
		WillReturnError(pgx.ErrNoRows)

	_, err := store.Update(context.Background(), "11111111-1111-1111-1111-111111111111", users.Update{Status: &status})
	assert.ErrorIs(t, err, users.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreEnsureAdmin(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("admin@example.com", "hash", "admin", "active").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	row := pgxmock.NewRows(userCols).
		AddRow("33333333-3333-3333-3333-333333333333", "admin@example.com", "old-hash",
			"admin", "active", time.Now(), time.Now(), nil, 5)
	mock.ExpectQuery(`SELECT .+ FROM users WHERE LOWER\(email\)`).
		WithArgs("admin@example.com").
		WillReturnRows(row)

	user, err := store.EnsureAdmin(context.Background(), "admin@example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, "old-hash", user.PasswordHash, "conflict leaves the existing record intact")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreList(t *testing.T) {
	mock, store := newMockStore(t)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(userCols).
		AddRow("1", "b@example.com", "hash", "user", "active", now.Add(time.Minute), now, nil, 0).
		AddRow("2", "a@example.com", "hash", "user", "active", now, now, nil, 0)
	mock.ExpectQuery(`SELECT .+ FROM users`).
		WithArgs(0, 10, (*string)(nil)).
		WillReturnRows(rows)

	list, err := store.List(context.Background(), 0, 10, nil)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b@example.com", list[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreCount(t *testing.T) {
	mock, store := newMockStore(t)

	active := users.StatusActive
	activeStr := "active"
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WithArgs(&activeStr).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	n, err := store.Count(context.Background(), &active)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreDelete(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectExec(`DELETE FROM users`).
		WithArgs("11111111-1111-1111-1111-111111111111").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM users`).
		WithArgs("11111111-1111-1111-1111-111111111111").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, store.Delete(context.Background(), "11111111-1111-1111-1111-111111111111"))
	assert.ErrorIs(t, store.Delete(context.Background(), "11111111-1111-1111-1111-111111111111"), users.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreWrapsUnexpectedErrors(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WithArgs((*string)(nil)).
		WillReturnError(errors.New("connection refused"))

	_, err := store.Count(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}
