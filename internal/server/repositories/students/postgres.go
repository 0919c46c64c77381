package students

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cohorttools/cohort-api/internal/common"
	"github.com/cohorttools/cohort-api/internal/dbx"
	"github.com/cohorttools/cohort-api/internal/server/models"
)

// Students keep languages and projects as jsonb columns; the cohort reference
// is resolved with a LEFT JOIN so list/get responses carry the embedded cohort
// the way the API has always returned it.
const selectStudents = `
	SELECT s.id, s.first_name, s.last_name, s.email, s.phone, s.linkedin_url,
	       s.languages, s.program, s.background, s.image, s.projects,
	       c.id, c.cohort_slug, c.cohort_name, c.program, c.campus, c.start_date,
	       c.end_date, c.in_progress, c.program_manager, c.lead_teacher, c.total_hours
	FROM students s
	LEFT JOIN cohorts c ON c.id = s.cohort_id`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Student, error) {
	rows, err := r.db.QueryContext(ctx, selectStudents+` ORDER BY s.last_name, s.first_name`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

func (r *PostgresRepository) ListByCohort(ctx context.Context, cohortID string) ([]*models.Student, error) {
	rows, err := r.db.QueryContext(ctx, selectStudents+` WHERE s.cohort_id = $1 ORDER BY s.last_name, s.first_name`, cohortID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	row := r.db.QueryRowContext(ctx, selectStudents+` WHERE s.id = $1`, id)

	s, err := scanStudent(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, student *models.Student) (*models.Student, error) {
	query :=
		`INSERT INTO students (id, first_name, last_name, email, phone, linkedin_url, languages, program, background, image, cohort_id, projects)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 `

	languages, projects, err := encodeLists(student)
	if err != nil {
		return nil, err
	}

	student.ID = uuid.NewString()
	_, err = r.db.ExecContext(ctx, query,
		student.ID, student.FirstName, student.LastName, student.Email, student.Phone,
		student.LinkedinURL, languages, student.Program, student.Background,
		student.Image, nullable(student.CohortID), projects)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return student, nil
}

func (r *PostgresRepository) Update(ctx context.Context, student *models.Student) (*models.Student, error) {
	query :=
		`UPDATE students
		 SET first_name = $2, last_name = $3, email = $4, phone = $5, linkedin_url = $6, languages = $7, program = $8, background = $9, image = $10, cohort_id = $11, projects = $12
		 WHERE id = $1
		 `

	languages, projects, err := encodeLists(student)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, query,
		student.ID, student.FirstName, student.LastName, student.Email, student.Phone,
		student.LinkedinURL, languages, student.Program, student.Background,
		student.Image, nullable(student.CohortID), projects)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, common.ErrorNotFound
	}

	return student, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func collect(rows *sql.Rows) ([]*models.Student, error) {
	students := []*models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return students, nil
}

func scanStudent(scan func(dest ...any) error) (*models.Student, error) {
	s := &models.Student{}

	var languages, projects []byte
	var cID, cSlug, cName, cProgram, cCampus, cStart, cEnd, cManager, cTeacher sql.NullString
	var cInProgress sql.NullBool
	var cHours sql.NullInt64

	err := scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.LinkedinURL,
		&languages, &s.Program, &s.Background, &s.Image, &projects,
		&cID, &cSlug, &cName, &cProgram, &cCampus, &cStart,
		&cEnd, &cInProgress, &cManager, &cTeacher, &cHours)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(languages, &s.Languages); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(projects, &s.Projects); err != nil {
		return nil, err
	}

	if cID.Valid {
		s.CohortID = cID.String
		s.Cohort = &models.Cohort{
			ID:             cID.String,
			CohortSlug:     cSlug.String,
			CohortName:     cName.String,
			Program:        cProgram.String,
			Campus:         cCampus.String,
			StartDate:      cStart.String,
			EndDate:        cEnd.String,
			InProgress:     cInProgress.Bool,
			ProgramManager: cManager.String,
			LeadTeacher:    cTeacher.String,
			TotalHours:     int(cHours.Int64),
		}
	}

	return s, nil
}

func encodeLists(student *models.Student) ([]byte, []byte, error) {
	if student.Languages == nil {
		student.Languages = []string{}
	}
	if student.Projects == nil {
		student.Projects = []string{}
	}
	languages, err := json.Marshal(student.Languages)
	if err != nil {
		return nil, nil, err
	}
	projects, err := json.Marshal(student.Projects)
	if err != nil {
		return nil, nil, err
	}
	return languages, projects, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
