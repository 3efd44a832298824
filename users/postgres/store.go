// Package postgres implements users.Store on PostgreSQL via pgx. Email
// uniqueness is enforced by a unique index on LOWER(email), so duplicate
// detection happens atomically with the insert.
package postgres

import (
	"context"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"github.com/easylaw/auth-service/users"
)

// poolIface is the subset of *pgxpool.Pool the store needs. pgxmock's
// PgxPoolIface satisfies it too, so tests run without a database.
type poolIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ users.Store = (*Store)(nil)

type Store struct {
	pool poolIface
}

func NewStore(pool poolIface) *Store {
	return &Store{pool: pool}
}

const userColumns = `id, email, password_hash, role, status, created_at, updated_at, last_login, login_count`

func (s *Store) Create(ctx context.Context, email, passwordHash string, role users.Role, status users.Status) (*users.User, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, role, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		email, passwordHash, string(role), string(status))

	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, users.ErrDuplicateEmail
		}
		return nil, errors.Wrap(err, "[postgres.Store.Create]")
	}
	return user, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*users.User, error) {
	// id is a uuid column; a malformed identifier fails the cast, which is
	// indistinguishable from absence to callers.
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, users.ErrNotFound
		}
		return nil, errors.Wrap(err, "[postgres.Store.GetByID]")
	}
	return user, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, errors.Wrap(err, "[postgres.Store.GetByEmail]")
	}
	return user, nil
}

func (s *Store) Update(ctx context.Context, id string, update users.Update) (*users.User, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE users SET
		   password_hash = COALESCE($2, password_hash),
		   role          = COALESCE($3, role),
		   status        = COALESCE($4, status),
		   updated_at    = now()
		 WHERE id = $1::uuid
		 RETURNING `+userColumns,
		id, update.PasswordHash, roleArg(update.Role), statusArg(update.Status))

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, users.ErrNotFound
		}
		return nil, errors.Wrap(err, "[postgres.Store.Update]")
	}
	return user, nil
}

func (s *Store) RecordLogin(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET
		   last_login  = now(),
		   login_count = login_count + 1,
		   updated_at  = now()
		 WHERE id = $1::uuid`, id)
	if err != nil {
		if isInvalidText(err) {
			return users.ErrNotFound
		}
		return errors.Wrap(err, "[postgres.Store.RecordLogin]")
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (s *Store) SetStatus(ctx context.Context, id string, status users.Status) error {
	_, err := s.Update(ctx, id, users.Update{Status: &status})
	return err
}

func (s *Store) SetPasswordHash(ctx context.Context, id, passwordHash string) error {
	_, err := s.Update(ctx, id, users.Update{PasswordHash: &passwordHash})
	return err
}

func (s *Store) EnsureAdmin(ctx context.Context, email, passwordHash string) (*users.User, error) {
	// ON CONFLICT DO NOTHING keeps an existing account untouched; the
	// follow-up read returns whichever record survived.
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (email, password_hash, role, status)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT ((LOWER(email))) DO NOTHING`,
		email, passwordHash, string(users.RoleAdmin), string(users.StatusActive))
	if err != nil {
		return nil, errors.Wrap(err, "[postgres.Store.EnsureAdmin]")
	}
	return s.GetByEmail(ctx, email)
}

func (s *Store) List(ctx context.Context, offset, limit int, status *users.Status) ([]*users.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE ($3::text IS NULL OR status = $3)
		 ORDER BY created_at DESC, id
		 OFFSET $1 LIMIT $2`,
		offset, limit, statusArg(status))
	if err != nil {
		return nil, errors.Wrap(err, "[postgres.Store.List]")
	}
	defer rows.Close()

	list := make([]*users.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, errors.Wrap(err, "[postgres.Store.List] scan")
		}
		list = append(list, user)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "[postgres.Store.List] rows")
	}
	return list, nil
}

func (s *Store) Count(ctx context.Context, status *users.Status) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE ($1::text IS NULL OR status = $1)`,
		statusArg(status)).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "[postgres.Store.Count]")
	}
	return n, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1::uuid`, id)
	if err != nil {
		if isInvalidText(err) {
			return users.ErrNotFound
		}
		return errors.Wrap(err, "[postgres.Store.Delete]")
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	var (
		u            users.User
		role, status string
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &status,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLogin, &u.LoginCount)
	if err != nil {
		return nil, err
	}
	u.Role = users.Role(role)
	u.Status = users.Status(status)
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// A malformed identifier fails the uuid cast with invalid_text_representation.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation
}

// COALESCE needs typed NULLs for the enum-ish text columns.
func roleArg(r *users.Role) *string {
	if r == nil {
		return nil
	}
	s := string(*r)
	return &s
}

func statusArg(st *users.Status) *string {
	if st == nil {
		return nil
	}
	s := string(*st)
	return &s
}
