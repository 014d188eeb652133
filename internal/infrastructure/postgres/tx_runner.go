package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jowa-zm/jowa-ussd/internal/application/ussd"
)

var _ ussd.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunDispatch abre una transacción, entrega a fn los repositorios atados a ella y
// hace Commit solo si fn termina sin error.
func (r *TxRunner) RunDispatch(ctx context.Context, fn func(stores ussd.Stores) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fault("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stores := ussd.Stores{
		Workers:      NewWorkerRepository(tx),
		Employers:    NewEmployerRepository(tx),
		Jobs:         NewJobRepository(tx),
		Applications: NewApplicationRepository(tx),
		Payments:     NewPaymentRepository(tx),
		Sessions:     NewSessionRepository(tx),
	}
	if err := fn(stores); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fault("commit transaction", err)
	}
	return nil
}
