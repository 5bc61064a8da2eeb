package repository

import (
	"database/sql"
	"fmt"

	"address-api/migrations"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies all pending migrations to the database at dsn.
func RunMigrations(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("repository: failed to open database: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.MigrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("repository: failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("repository: failed to run migrations: %w", err)
	}

	return nil
}
