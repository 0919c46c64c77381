package cohorts

import (
	"context"

	"github.com/cohorttools/cohort-api/internal/server/models"
)

// Filter narrows List results. Empty fields match everything.
type Filter struct {
	Campus  string
	Program string
}

type Repository interface {
	List(ctx context.Context, filter Filter) ([]*models.Cohort, error)
	GetByID(ctx context.Context, id string) (*models.Cohort, error)
	Create(ctx context.Context, cohort *models.Cohort) (*models.Cohort, error)
	Update(ctx context.Context, cohort *models.Cohort) (*models.Cohort, error)
	Delete(ctx context.Context, id string) error
}
