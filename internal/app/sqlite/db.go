package sqlite

import (
	"database/sql"
	"embed"
	"github.com/beldeveloper/go-errors-context"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open opens a SQLite database at the given path and runs all pending migrations.
// Use ":memory:" for an in-memory database.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "sqlite.Open", Params: errors.Params{"dsn": dsn}})
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, errors.WrapContext(err, errors.Context{Path: "sqlite.Open.journalMode"})
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, errors.WrapContext(err, errors.Context{Path: "sqlite.Open.SetDialect"})
	}
	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, errors.WrapContext(err, errors.Context{Path: "sqlite.Open.Up"})
	}
	return db, nil
}
