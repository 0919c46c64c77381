package students

import (
	"context"

	"github.com/cohorttools/cohort-api/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.Student, error)
	ListByCohort(ctx context.Context, cohortID string) ([]*models.Student, error)
	GetByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) (*models.Student, error)
	Delete(ctx context.Context, id string) error
}
