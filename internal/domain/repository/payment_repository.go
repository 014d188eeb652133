package repository

import (
	"context"

	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
)

// PaymentRepository define el puerto de persistencia para Payment.
type PaymentRepository interface {
	// GetBySession devuelve el pago ya registrado para (sesión, concepto) o (nil, nil).
	GetBySession(ctx context.Context, sessionID string, purpose entity.PaymentPurpose) (*entity.Payment, error)
	// Create inserta el pago; domain.ErrDuplicate si ya existe uno para (sesión, concepto).
	Create(ctx context.Context, payment *entity.Payment) error
	ListByPhone(ctx context.Context, phone string, limit, offset int) ([]*entity.Payment, error)
}
