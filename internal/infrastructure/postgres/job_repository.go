package postgres

import (
	"context"

	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
	"github.com/jowa-zm/jowa-ussd/internal/domain/repository"
)

var _ repository.JobRepository = (*JobRepo)(nil)

// JobRepo implementación de JobRepository (usable con pool o tx).
type JobRepo struct {
	q Querier
}

// NewJobRepository construye el adaptador. Pasar pool o tx (Querier).
func NewJobRepository(q Querier) *JobRepo {
	return &JobRepo{q: q}
}

// ListActive trabajos activos con el nombre y teléfono del empleador, más recientes primero.
func (r *JobRepo) ListActive(ctx context.Context, limit, offset int) ([]*entity.JobListing, error) {
	query := `
		SELECT j.id, j.employer_id, j.title, COALESCE(j.description, ''), COALESCE(j.location, ''),
		       j.payment_amount, j.payment_type, j.status, j.created_at,
		       COALESCE(e.company_name, ''), e.phone_number
		FROM jobs j
		JOIN employers e ON e.id = j.employer_id
		WHERE j.status = 'active'
		ORDER BY j.created_at DESC, j.id DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fault("list active jobs", err)
	}
	defer rows.Close()

	var list []*entity.JobListing
	for rows.Next() {
		var j entity.JobListing
		if err := rows.Scan(
			&j.ID, &j.EmployerID, &j.Title, &j.Description, &j.Location,
			&j.PaymentAmount, &j.PaymentType, &j.Status, &j.CreatedAt,
			&j.CompanyName, &j.EmployerPhone,
		); err != nil {
			return nil, fault("scan job", err)
		}
		list = append(list, &j)
	}
	if err := rows.Err(); err != nil {
		return nil, fault("list active jobs", err)
	}
	return list, nil
}

// Create inserta el trabajo y completa ID y CreatedAt.
func (r *JobRepo) Create(ctx context.Context, job *entity.Job) error {
	if job.Status == "" {
		job.Status = entity.JobStatusActive
	}
	query := `
		INSERT INTO jobs (employer_id, title, description, location, payment_amount, payment_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		job.EmployerID, job.Title, job.Description, job.Location, job.PaymentAmount, job.PaymentType, job.Status,
	).Scan(&job.ID, &job.CreatedAt)
	if err != nil {
		return fault("insert job", err)
	}
	return nil
}

// ListByEmployer trabajos del empleador con su número de postulaciones.
func (r *JobRepo) ListByEmployer(ctx context.Context, employerID int64, limit int) ([]*entity.EmployerJobSummary, error) {
	query := `
		SELECT j.id, j.employer_id, j.title, COALESCE(j.description, ''), COALESCE(j.location, ''),
		       j.payment_amount, j.payment_type, j.status, j.created_at,
		       COUNT(a.id)
		FROM jobs j
		LEFT JOIN applications a ON a.job_id = j.id
		WHERE j.employer_id = $1
		GROUP BY j.id
		ORDER BY j.created_at DESC, j.id DESC
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, employerID, limit)
	if err != nil {
		return nil, fault("list employer jobs", err)
	}
	defer rows.Close()

	var list []*entity.EmployerJobSummary
	for rows.Next() {
		var j entity.EmployerJobSummary
		if err := rows.Scan(
			&j.ID, &j.EmployerID, &j.Title, &j.Description, &j.Location,
			&j.PaymentAmount, &j.PaymentType, &j.Status, &j.CreatedAt,
			&j.ApplicationCount,
		); err != nil {
			return nil, fault("scan employer job", err)
		}
		list = append(list, &j)
	}
	if err := rows.Err(); err != nil {
		return nil, fault("list employer jobs", err)
	}
	return list, nil
}
