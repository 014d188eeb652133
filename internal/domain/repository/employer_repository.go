package repository

import (
	"context"

	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
)

// EmployerRepository define el puerto de persistencia para Employer.
type EmployerRepository interface {
	// GetByPhone devuelve (nil, nil) si no existe.
	GetByPhone(ctx context.Context, phone string) (*entity.Employer, error)
	Upsert(ctx context.Context, phone, companyName, businessType string) (*entity.Employer, error)
}
