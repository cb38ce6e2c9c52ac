package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsTable = "schema_migrations"

// Migrator runs the embedded goose migrations over the pgx stdlib driver.
type Migrator struct {
	db *sql.DB
}

func NewMigrator(dsn string) (*Migrator, error) {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("goose: failed to open DB: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetTableName(migrationsTable)
	if err := goose.SetDialect("postgres"); err != nil {
		db.Close()
		return nil, fmt.Errorf("goose: set dialect: %w", err)
	}

	return &Migrator{db: db}, nil
}

// Run executes a goose command: up, down, status, redo, version.
func (m *Migrator) Run(ctx context.Context, command string, args ...string) error {
	if err := goose.RunContext(ctx, command, m.db, "migrations", args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

func (m *Migrator) Close() error {
	return m.db.Close()
}
