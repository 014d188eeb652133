package postgres

import (
	"context"
	"time"

	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
	"github.com/jowa-zm/jowa-ussd/internal/domain/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo sesiones USSD en ussd_sessions (usable con pool o tx).
type SessionRepo struct {
	q Querier
}

// NewSessionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSessionRepository(q Querier) *SessionRepo {
	return &SessionRepo{q: q}
}

// GetForUpdate lee y bloquea la fila de la sesión hasta el fin de la transacción,
// serializando interacciones concurrentes del mismo session_id. (nil, nil) si no existe.
func (r *SessionRepo) GetForUpdate(ctx context.Context, sessionID string) (*entity.Session, error) {
	var s entity.Session
	var payload []byte
	err := r.q.QueryRow(ctx, `
		SELECT session_id, phone_number, COALESCE(menu_level, 'main_menu'), data, created_at, updated_at
		FROM ussd_sessions WHERE session_id = $1
		FOR UPDATE`, sessionID,
	).Scan(&s.ID, &s.PhoneNumber, &s.State, &payload, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fault("get session", err)
	}
	s.Payload = payload
	return &s, nil
}

// Save reescribe estado y payload de la sesión (la crea si no existe).
func (r *SessionRepo) Save(ctx context.Context, s *entity.Session) error {
	payload := []byte(s.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO ussd_sessions (session_id, phone_number, menu_level, data)
		VALUES ($1, $2, $3, $4::jsonb)
		ON CONFLICT (session_id) DO UPDATE
		SET menu_level = EXCLUDED.menu_level, data = EXCLUDED.data, updated_at = now()
		RETURNING created_at, updated_at`,
		s.ID, s.PhoneNumber, s.State, string(payload),
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fault("save session", err)
	}
	return nil
}

// DeleteStale borra las sesiones sin actividad desde before.
func (r *SessionRepo) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM ussd_sessions WHERE updated_at < $1`, before)
	if err != nil {
		return 0, fault("delete stale sessions", err)
	}
	return tag.RowsAffected(), nil
}
