package cohorts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cohorttools/cohort-api/internal/common"
	"github.com/cohorttools/cohort-api/internal/dbx"
	"github.com/cohorttools/cohort-api/internal/server/models"
)

const cohortColumns = `id, cohort_slug, cohort_name, program, campus, start_date, end_date, in_progress, program_manager, lead_teacher, total_hours`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, filter Filter) ([]*models.Cohort, error) {
	query := `SELECT ` + cohortColumns + ` FROM cohorts WHERE ($1 = '' OR campus = $1) AND ($2 = '' OR program = $2) ORDER BY cohort_slug`

	rows, err := r.db.QueryContext(ctx, query, filter.Campus, filter.Program)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	cohorts := []*models.Cohort{}
	for rows.Next() {
		c := &models.Cohort{}
		if err := scanCohort(rows.Scan, c); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		cohorts = append(cohorts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cohorts, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Cohort, error) {
	query := `SELECT ` + cohortColumns + ` FROM cohorts WHERE id = $1`

	c := &models.Cohort{}
	err := scanCohort(r.db.QueryRowContext(ctx, query, id).Scan, c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, cohort *models.Cohort) (*models.Cohort, error) {
	query :=
		`INSERT INTO cohorts (id, cohort_slug, cohort_name, program, campus, start_date, end_date, in_progress, program_manager, lead_teacher, total_hours)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 `

	cohort.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, query,
		cohort.ID, cohort.CohortSlug, cohort.CohortName, cohort.Program, cohort.Campus,
		cohort.StartDate, cohort.EndDate, cohort.InProgress, cohort.ProgramManager,
		cohort.LeadTeacher, cohort.TotalHours)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cohort, nil
}

func (r *PostgresRepository) Update(ctx context.Context, cohort *models.Cohort) (*models.Cohort, error) {
	query :=
		`UPDATE cohorts
		 SET cohort_slug = $2, cohort_name = $3, program = $4, campus = $5, start_date = $6, end_date = $7, in_progress = $8, program_manager = $9, lead_teacher = $10, total_hours = $11
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		cohort.ID, cohort.CohortSlug, cohort.CohortName, cohort.Program, cohort.Campus,
		cohort.StartDate, cohort.EndDate, cohort.InProgress, cohort.ProgramManager,
		cohort.LeadTeacher, cohort.TotalHours)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, common.ErrorNotFound
	}

	return cohort, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cohorts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func scanCohort(scan func(dest ...any) error, c *models.Cohort) error {
	return scan(&c.ID, &c.CohortSlug, &c.CohortName, &c.Program, &c.Campus,
		&c.StartDate, &c.EndDate, &c.InProgress, &c.ProgramManager,
		&c.LeadTeacher, &c.TotalHours)
}
