package repository

import (
	"context"

	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
)

// JobRepository define el puerto de persistencia para Job.
type JobRepository interface {
	// ListActive trabajos activos, más recientes primero.
	ListActive(ctx context.Context, limit, offset int) ([]*entity.JobListing, error)
	// Create inserta el trabajo y completa ID, Status y CreatedAt.
	Create(ctx context.Context, job *entity.Job) error
	// ListByEmployer trabajos del empleador con su conteo de postulaciones, más recientes primero.
	ListByEmployer(ctx context.Context, employerID int64, limit int) ([]*entity.EmployerJobSummary, error)
}
