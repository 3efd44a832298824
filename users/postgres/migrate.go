package postgres

import (
	"context"
	"database/sql"
	"embed"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate brings the schema up to date using the embedded migrations. It
// opens its own database/sql connection because goose drives *sql.DB, not
// the pgx pool.
func Migrate(ctx context.Context, databaseURI string) error {
	db, err := sql.Open("pgx", databaseURI)
	if err != nil {
		return errors.Wrap(err, "[postgres.Migrate] open")
	}
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("pgx"); err != nil {
		return errors.Wrap(err, "[postgres.Migrate] dialect")
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Wrap(err, "[postgres.Migrate] up")
	}
	return nil
}
