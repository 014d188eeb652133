package postgres

import (
	"context"

	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
	"github.com/jowa-zm/jowa-ussd/internal/domain/repository"
)

var _ repository.EmployerRepository = (*EmployerRepo)(nil)

// EmployerRepo implementación de EmployerRepository (usable con pool o tx).
type EmployerRepo struct {
	q Querier
}

// NewEmployerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEmployerRepository(q Querier) *EmployerRepo {
	return &EmployerRepo{q: q}
}

const employerColumns = `id, phone_number, COALESCE(company_name, ''), COALESCE(business_type, ''), created_at`

// GetByPhone obtiene un empleador por teléfono; (nil, nil) si no existe.
func (r *EmployerRepo) GetByPhone(ctx context.Context, phone string) (*entity.Employer, error) {
	var e entity.Employer
	err := r.q.QueryRow(ctx, `SELECT `+employerColumns+` FROM employers WHERE phone_number = $1`, phone).
		Scan(&e.ID, &e.PhoneNumber, &e.CompanyName, &e.BusinessType, &e.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fault("get employer", err)
	}
	return &e, nil
}

// Upsert crea el empleador o actualiza sus datos si el teléfono ya existe.
func (r *EmployerRepo) Upsert(ctx context.Context, phone, companyName, businessType string) (*entity.Employer, error) {
	query := `
		INSERT INTO employers (phone_number, company_name, business_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (phone_number) DO UPDATE
		SET company_name = EXCLUDED.company_name, business_type = EXCLUDED.business_type
		RETURNING ` + employerColumns
	var e entity.Employer
	err := r.q.QueryRow(ctx, query, phone, companyName, businessType).
		Scan(&e.ID, &e.PhoneNumber, &e.CompanyName, &e.BusinessType, &e.CreatedAt)
	if err != nil {
		return nil, fault("upsert employer", err)
	}
	return &e, nil
}
