package repository

import (
	"context"

	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
)

// ApplicationRepository define el puerto de persistencia para Application.
type ApplicationRepository interface {
	// CreateIfAbsent inserta la postulación (job, worker) si no existe.
	// created=false indica que ya existía y se devuelve la original.
	CreateIfAbsent(ctx context.Context, jobID, workerID int64) (app *entity.Application, created bool, err error)
	ListByWorker(ctx context.Context, workerID int64, limit, offset int) ([]*entity.WorkerApplicationView, error)
	// ListByJob postulaciones de un trabajo con los datos del postulante, más recientes primero.
	ListByJob(ctx context.Context, jobID int64) ([]*entity.JobApplicationView, error)
}
