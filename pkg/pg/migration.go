package pg

import (
	"database/sql"

	"github.com/khatapp/udhaar/pkg/logger"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// Migrate runs the goose migrations in dir against the postgres server.
func Migrate(cfg Config, dir string) error {
	db, err := newSqlConnection(cfg)
	if err != nil {
		return err
	}
	return migrateUp(db, "postgres", dir)
}

// MigrateSqlite runs the goose migrations in dir against the sqlite file.
func MigrateSqlite(path string, dir string) error {
	db, err := newSqliteConnection(path)
	if err != nil {
		return err
	}
	return migrateUp(db, "sqlite3", dir)
}

func migrateUp(db *sql.DB, dialect string, dir string) error {
	if err := goose.SetDialect(dialect); err != nil {
		logger.Fatal(err)
	}
	if err := goose.Up(db, dir); err != nil {
		logger.Fatal(err)
	}
	return nil
}
