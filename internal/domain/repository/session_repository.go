package repository

import (
	"context"
	"time"

	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
)

// SessionRepository define el puerto del Session Store.
type SessionRepository interface {
	// GetForUpdate lee la sesión bloqueando la fila hasta el fin de la transacción
	// (serializa reenvíos simultáneos del mismo diálogo). (nil, nil) si no existe.
	GetForUpdate(ctx context.Context, sessionID string) (*entity.Session, error)
	// Save hace upsert de estado y payload.
	Save(ctx context.Context, session *entity.Session) error
	// DeleteStale borra sesiones sin actividad desde before; devuelve cuántas.
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}
