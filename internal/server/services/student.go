package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cohorttools/cohort-api/internal/common"
	"github.com/cohorttools/cohort-api/internal/logging"
	"github.com/cohorttools/cohort-api/internal/server/models"
	"github.com/cohorttools/cohort-api/internal/server/repositories/repomanager"
)

// StudentService provides CRUD operations over students.
type StudentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewStudentService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *StudentService {
	return &StudentService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "student_service"),
	}
}

func (s *StudentService) List(ctx context.Context) ([]*models.Student, error) {
	list, err := s.repomanager.Students(s.db).List(ctx)
	if err != nil {
		s.logger.Error(ctx, "student list failed", "error", err.Error())
		return nil, common.ErrorInternal
	}
	return list, nil
}

func (s *StudentService) ListByCohort(ctx context.Context, cohortID string) ([]*models.Student, error) {
	list, err := s.repomanager.Students(s.db).ListByCohort(ctx, cohortID)
	if err != nil {
		s.logger.Error(ctx, "student list by cohort failed", "error", err.Error())
		return nil, common.ErrorInternal
	}
	return list, nil
}

func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repomanager.Students(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(ctx, "student fetch failed", err)
	}
	return student, nil
}

func (s *StudentService) Create(ctx context.Context, student *models.Student) (*models.Student, error) {
	created, err := s.repomanager.Students(s.db).Create(ctx, student)
	if err != nil {
		s.logger.Error(ctx, "student creation failed", "error", err.Error())
		return nil, common.ErrorInternal
	}
	return created, nil
}

func (s *StudentService) Update(ctx context.Context, student *models.Student) (*models.Student, error) {
	updated, err := s.repomanager.Students(s.db).Update(ctx, student)
	if err != nil {
		return nil, s.mapError(ctx, "student update failed", err)
	}
	return updated, nil
}

func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repomanager.Students(s.db).Delete(ctx, id); err != nil {
		return s.mapError(ctx, "student deletion failed", err)
	}
	return nil
}

func (s *StudentService) mapError(ctx context.Context, msg string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	s.logger.Error(ctx, msg, "error", err.Error())
	return common.ErrorInternal
}
