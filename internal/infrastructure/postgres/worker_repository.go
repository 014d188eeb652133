package postgres

import (
	"context"

	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
	"github.com/jowa-zm/jowa-ussd/internal/domain/repository"
)

var _ repository.WorkerRepository = (*WorkerRepo)(nil)

// WorkerRepo trabajadores en la tabla users (usable con pool o tx).
type WorkerRepo struct {
	q Querier
}

// NewWorkerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWorkerRepository(q Querier) *WorkerRepo {
	return &WorkerRepo{q: q}
}

const workerColumns = `id, phone_number, COALESCE(full_name, ''), COALESCE(skills, ''), COALESCE(location, ''), created_at`

// GetByPhone obtiene un trabajador por teléfono; (nil, nil) si no existe.
func (r *WorkerRepo) GetByPhone(ctx context.Context, phone string) (*entity.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM users WHERE phone_number = $1`
	var w entity.Worker
	err := r.q.QueryRow(ctx, query, phone).Scan(&w.ID, &w.PhoneNumber, &w.FullName, &w.Skills, &w.Location, &w.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fault("get worker", err)
	}
	return &w, nil
}

// EnsureExists crea el registro vacío del primer contacto; no toca uno existente.
func (r *WorkerRepo) EnsureExists(ctx context.Context, phone string) error {
	_, err := r.q.Exec(ctx, `INSERT INTO users (phone_number) VALUES ($1) ON CONFLICT (phone_number) DO NOTHING`, phone)
	if err != nil {
		return fault("ensure worker", err)
	}
	return nil
}

// Upsert completa o reemplaza el perfil del trabajador.
func (r *WorkerRepo) Upsert(ctx context.Context, phone, fullName, skills, location string) (*entity.Worker, error) {
	query := `
		INSERT INTO users (phone_number, full_name, skills, location)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (phone_number) DO UPDATE
		SET full_name = EXCLUDED.full_name, skills = EXCLUDED.skills, location = EXCLUDED.location
		RETURNING ` + workerColumns
	var w entity.Worker
	err := r.q.QueryRow(ctx, query, phone, fullName, skills, location).
		Scan(&w.ID, &w.PhoneNumber, &w.FullName, &w.Skills, &w.Location, &w.CreatedAt)
	if err != nil {
		return nil, fault("upsert worker", err)
	}
	return &w, nil
}
