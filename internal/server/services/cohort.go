package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cohorttools/cohort-api/internal/common"
	"github.com/cohorttools/cohort-api/internal/logging"
	"github.com/cohorttools/cohort-api/internal/server/models"
	"github.com/cohorttools/cohort-api/internal/server/repositories/cohorts"
	"github.com/cohorttools/cohort-api/internal/server/repositories/repomanager"
)

// CohortService provides CRUD operations over cohorts.
type CohortService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewCohortService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *CohortService {
	return &CohortService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "cohort_service"),
	}
}

func (s *CohortService) List(ctx context.Context, filter cohorts.Filter) ([]*models.Cohort, error) {
	list, err := s.repomanager.Cohorts(s.db).List(ctx, filter)
	if err != nil {
		s.logger.Error(ctx, "cohort list failed", "error", err.Error())
		return nil, common.ErrorInternal
	}
	return list, nil
}

func (s *CohortService) Get(ctx context.Context, id string) (*models.Cohort, error) {
	cohort, err := s.repomanager.Cohorts(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(ctx, "cohort fetch failed", err)
	}
	return cohort, nil
}

func (s *CohortService) Create(ctx context.Context, cohort *models.Cohort) (*models.Cohort, error) {
	created, err := s.repomanager.Cohorts(s.db).Create(ctx, cohort)
	if err != nil {
		s.logger.Error(ctx, "cohort creation failed", "error", err.Error())
		return nil, common.ErrorInternal
	}
	return created, nil
}

func (s *CohortService) Update(ctx context.Context, cohort *models.Cohort) (*models.Cohort, error) {
	updated, err := s.repomanager.Cohorts(s.db).Update(ctx, cohort)
	if err != nil {
		return nil, s.mapError(ctx, "cohort update failed", err)
	}
	return updated, nil
}

func (s *CohortService) Delete(ctx context.Context, id string) error {
	if err := s.repomanager.Cohorts(s.db).Delete(ctx, id); err != nil {
		return s.mapError(ctx, "cohort deletion failed", err)
	}
	return nil
}

func (s *CohortService) mapError(ctx context.Context, msg string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	s.logger.Error(ctx, msg, "error", err.Error())
	return common.ErrorInternal
}
