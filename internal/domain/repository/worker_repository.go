package repository

import (
	"context"

	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
)

// WorkerRepository define el puerto de persistencia para Worker (tabla users).
type WorkerRepository interface {
	// GetByPhone devuelve (nil, nil) si no existe.
	GetByPhone(ctx context.Context, phone string) (*entity.Worker, error)
	// EnsureExists crea el registro vacío del primer contacto; no toca uno existente.
	EnsureExists(ctx context.Context, phone string) error
	// Upsert reemplaza nombre, habilidades y ubicación (sin actualización parcial).
	Upsert(ctx context.Context, phone, fullName, skills, location string) (*entity.Worker, error)
}
