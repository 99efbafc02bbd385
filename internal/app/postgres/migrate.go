package postgres

import (
	"embed"
	"github.com/beldeveloper/go-errors-context"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies all pending migrations through the pool connection settings.
func Migrate(conn *pgxpool.Pool) error {
	db := stdlib.OpenDB(*conn.Config().ConnConfig)
	defer db.Close()
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.WrapContext(err, errors.Context{Path: "postgres.Migrate.SetDialect"})
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return errors.WrapContext(err, errors.Context{Path: "postgres.Migrate.Up"})
	}
	return nil
}
