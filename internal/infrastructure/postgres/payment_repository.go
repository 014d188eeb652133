package postgres

import (
	"context"

	"github.com/jowa-zm/jowa-ussd/internal/domain"
	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
	"github.com/jowa-zm/jowa-ussd/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo implementación de PaymentRepository (usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

const paymentColumns = `id, session_id, phone_number, amount, provider, purpose, status, COALESCE(transaction_id, ''), created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(&p.ID, &p.SessionID, &p.PhoneNumber, &p.Amount, &p.Provider, &p.Purpose, &p.Status, &p.TransactionID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetBySession pago de la sesión para el concepto; (nil, nil) si no hay.
func (r *PaymentRepo) GetBySession(ctx context.Context, sessionID string, purpose entity.PaymentPurpose) (*entity.Payment, error) {
	p, err := scanPayment(r.q.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE session_id = $1 AND purpose = $2`, sessionID, purpose))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fault("get payment", err)
	}
	return p, nil
}

// Create inserta el pago. ON CONFLICT evita abortar la transacción: si ya existe uno
// para (session_id, purpose) devuelve domain.ErrDuplicate.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	var txID *string
	if p.TransactionID != "" {
		txID = &p.TransactionID
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO payments (session_id, phone_number, amount, provider, purpose, status, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id, purpose) DO NOTHING
		RETURNING id, created_at`,
		p.SessionID, p.PhoneNumber, p.Amount, p.Provider, p.Purpose, p.Status, txID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isNoRows(err) || isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fault("insert payment", err)
	}
	return nil
}

// ListByPhone pagos del teléfono, más recientes primero.
func (r *PaymentRepo) ListByPhone(ctx context.Context, phone string, limit, offset int) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+paymentColumns+`
		FROM payments WHERE phone_number = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, phone, limit, offset)
	if err != nil {
		return nil, fault("list payments", err)
	}
	defer rows.Close()

	var list []*entity.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fault("scan payment", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fault("list payments", err)
	}
	return list, nil
}
