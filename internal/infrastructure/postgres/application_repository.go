package postgres

import (
	"context"

	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
	"github.com/jowa-zm/jowa-ussd/internal/domain/repository"
)

var _ repository.ApplicationRepository = (*ApplicationRepo)(nil)

// ApplicationRepo implementación de ApplicationRepository (usable con pool o tx).
type ApplicationRepo struct {
	q Querier
}

// NewApplicationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewApplicationRepository(q Querier) *ApplicationRepo {
	return &ApplicationRepo{q: q}
}

// CreateIfAbsent inserta la postulación salvo que ya exista para (job, user).
// created es false cuando se devuelve la existente.
func (r *ApplicationRepo) CreateIfAbsent(ctx context.Context, jobID, workerID int64) (*entity.Application, bool, error) {
	var a entity.Application
	err := r.q.QueryRow(ctx, `
		INSERT INTO applications (job_id, user_id, status)
		VALUES ($1, $2, 'pending')
		ON CONFLICT (job_id, user_id) DO NOTHING
		RETURNING id, job_id, user_id, status, applied_at`, jobID, workerID,
	).Scan(&a.ID, &a.JobID, &a.WorkerID, &a.Status, &a.AppliedAt)
	if err == nil {
		return &a, true, nil
	}
	if !isNoRows(err) {
		return nil, false, fault("insert application", err)
	}

	err = r.q.QueryRow(ctx, `
		SELECT id, job_id, user_id, status, applied_at
		FROM applications WHERE job_id = $1 AND user_id = $2`, jobID, workerID,
	).Scan(&a.ID, &a.JobID, &a.WorkerID, &a.Status, &a.AppliedAt)
	if err != nil {
		return nil, false, fault("get application", err)
	}
	return &a, false, nil
}

// ListByWorker postulaciones del trabajador con título y empresa, más recientes primero.
func (r *ApplicationRepo) ListByWorker(ctx context.Context, workerID int64, limit, offset int) ([]*entity.WorkerApplicationView, error) {
	query := `
		SELECT a.id, j.title, COALESCE(e.company_name, ''), a.status, a.applied_at
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN employers e ON e.id = j.employer_id
		WHERE a.user_id = $1
		ORDER BY a.applied_at DESC, a.id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, workerID, limit, offset)
	if err != nil {
		return nil, fault("list worker applications", err)
	}
	defer rows.Close()

	var list []*entity.WorkerApplicationView
	for rows.Next() {
		var v entity.WorkerApplicationView
		if err := rows.Scan(&v.ApplicationID, &v.JobTitle, &v.CompanyName, &v.Status, &v.AppliedAt); err != nil {
			return nil, fault("scan worker application", err)
		}
		list = append(list, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fault("list worker applications", err)
	}
	return list, nil
}

// ListByJob postulaciones de un trabajo con nombre y teléfono del postulante.
func (r *ApplicationRepo) ListByJob(ctx context.Context, jobID int64) ([]*entity.JobApplicationView, error) {
	query := `
		SELECT a.id, j.id, j.title, COALESCE(u.full_name, ''), u.phone_number, a.status, a.applied_at
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN users u ON u.id = a.user_id
		WHERE a.job_id = $1
		ORDER BY a.applied_at DESC, a.id DESC`
	rows, err := r.q.Query(ctx, query, jobID)
	if err != nil {
		return nil, fault("list job applications", err)
	}
	defer rows.Close()

	var list []*entity.JobApplicationView
	for rows.Next() {
		var v entity.JobApplicationView
		if err := rows.Scan(&v.ApplicationID, &v.JobID, &v.JobTitle, &v.ApplicantName, &v.ApplicantPhone, &v.Status, &v.AppliedAt); err != nil {
			return nil, fault("scan job application", err)
		}
		list = append(list, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fault("list job applications", err)
	}
	return list, nil
}
