package migration

import (
	"context"
	"time"

	"goeda/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// step is one schema change. Versions are applied in ascending order and
// recorded in schema_migrations so each runs once.
type step struct {
	version    int
	name       string
	statements []string
}

// MigrationRunner handles database schema migrations. The statements use
// types understood by both postgres and sqlite.
type MigrationRunner struct {
	version string
	steps   []step
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
		steps: []step{
			{version: 1, name: "create_datasets", statements: []string{`
				CREATE TABLE IF NOT EXISTS datasets (
					id VARCHAR(36) PRIMARY KEY,
					original_filename TEXT NOT NULL,
					content_hash VARCHAR(64) NOT NULL,
					format VARCHAR(8) NOT NULL,
					file_path TEXT NOT NULL DEFAULT '',
					file_size BIGINT NOT NULL DEFAULT 0,
					row_count INTEGER NOT NULL DEFAULT 0,
					column_count INTEGER NOT NULL DEFAULT 0,
					skipped_rows INTEGER NOT NULL DEFAULT 0,
					created_at TIMESTAMP NOT NULL
				)`,
			}},
			{version: 2, name: "index_datasets", statements: []string{
				`CREATE INDEX IF NOT EXISTS idx_datasets_content_hash ON datasets(content_hash)`,
				`CREATE INDEX IF NOT EXISTS idx_datasets_created_at ON datasets(created_at)`,
			}},
		},
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run applies every step not yet recorded in schema_migrations.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL
		)
	`); err != nil {
		return errors.Wrap(err, "failed to create schema_migrations table")
	}

	applied, err := Applied(ctx, db)
	if err != nil {
		return err
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, s := range r.steps {
		if done[s.version] {
			continue
		}
		if err := r.apply(ctx, db, s); err != nil {
			return errors.Wrapf(err, "migration %d (%s) failed", s.version, s.name)
		}
	}
	return nil
}

func (r *MigrationRunner) apply(ctx context.Context, db *sqlx.DB, s step) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range s.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	insert := tx.Rebind(`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, insert, s.version, s.name, time.Now().UTC()); err != nil {
		return err
	}
	return tx.Commit()
}

// Applied lists the recorded migration versions in ascending order.
func Applied(ctx context.Context, db *sqlx.DB) ([]int, error) {
	var versions []int
	if err := db.SelectContext(ctx, &versions, `SELECT version FROM schema_migrations ORDER BY version`); err != nil {
		return nil, errors.Wrap(err, "failed to read schema_migrations")
	}
	return versions, nil
}
