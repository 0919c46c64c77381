package repomanager

import (
	"context"
	"database/sql"

	"github.com/cohorttools/cohort-api/internal/dbx"
	"github.com/cohorttools/cohort-api/internal/server/repositories/cohorts"
	"github.com/cohorttools/cohort-api/internal/server/repositories/students"
	"github.com/cohorttools/cohort-api/internal/server/repositories/users"
)

type RepositoryManager interface {
	EnsureSchema(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Cohorts(db dbx.DBTX) cohorts.Repository
	Students(db dbx.DBTX) students.Repository
}
