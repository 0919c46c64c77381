// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and schema bootstrap.
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/cohorttools/cohort-api/internal/dbx"
	"github.com/cohorttools/cohort-api/internal/server/repositories/cohorts"
	"github.com/cohorttools/cohort-api/internal/server/repositories/students"
	"github.com/cohorttools/cohort-api/internal/server/repositories/users"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema bootstrap hook.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Cohorts returns a cohorts.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Cohorts(db dbx.DBTX) cohorts.Repository {
	return cohorts.NewPostgresRepository(db)
}

// Students returns a students.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Students(db dbx.DBTX) students.Repository {
	return students.NewPostgresRepository(db)
}

// schema creates the tables on first start. The unique constraint on
// users.email is the authoritative guard against duplicate signups racing
// past the service-level existence check.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id text PRIMARY KEY,
		username text NOT NULL,
		email text NOT NULL UNIQUE,
		password_hash text NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cohorts (
		id text PRIMARY KEY,
		cohort_slug text NOT NULL,
		cohort_name text NOT NULL,
		program text NOT NULL DEFAULT '',
		campus text NOT NULL DEFAULT '',
		start_date text NOT NULL DEFAULT '',
		end_date text NOT NULL DEFAULT '',
		in_progress boolean NOT NULL DEFAULT false,
		program_manager text NOT NULL DEFAULT '',
		lead_teacher text NOT NULL DEFAULT '',
		total_hours integer NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id text PRIMARY KEY,
		first_name text NOT NULL,
		last_name text NOT NULL,
		email text NOT NULL DEFAULT '',
		phone text NOT NULL DEFAULT '',
		linkedin_url text NOT NULL DEFAULT '',
		languages jsonb NOT NULL DEFAULT '[]',
		program text NOT NULL DEFAULT '',
		background text NOT NULL DEFAULT '',
		image text NOT NULL DEFAULT '',
		cohort_id text REFERENCES cohorts(id) ON DELETE SET NULL,
		projects jsonb NOT NULL DEFAULT '[]'
	)`,
}

// EnsureSchema creates any missing tables against the provided database
// connection.
func (m *PostgresRepositoryManager) EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
