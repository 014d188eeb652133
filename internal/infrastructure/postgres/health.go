package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jowa-zm/jowa-ussd/internal/application/dto"
)

// coreTables tablas que deben existir para atender sesiones.
var coreTables = []string{"users", "employers", "jobs", "applications", "ussd_sessions", "payments"}

// CheckTables informa si cada tabla principal existe y cuántas filas tiene.
func CheckTables(ctx context.Context, q Querier) ([]dto.TableStatus, error) {
	out := make([]dto.TableStatus, 0, len(coreTables))
	for _, table := range coreTables {
		st := dto.TableStatus{Table: table}
		if err := q.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, "public."+table).Scan(&st.Exists); err != nil {
			return nil, fmt.Errorf("verificar %s: %w", table, err)
		}
		if st.Exists {
			// Nombre fijo de coreTables, nunca entrada externa.
			if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&st.Rows); err != nil {
				return nil, fmt.Errorf("contar %s: %w", table, err)
			}
		}
		out = append(out, st)
	}
	return out, nil
}

// HealthChecker verifica conexión y esquema para GET /health.
type HealthChecker struct {
	pool *pgxpool.Pool
}

// NewHealthChecker construye el verificador.
func NewHealthChecker(pool *pgxpool.Pool) *HealthChecker {
	return &HealthChecker{pool: pool}
}

// Check hace ping y revisa las tablas.
func (h *HealthChecker) Check(ctx context.Context) ([]dto.TableStatus, error) {
	if err := h.pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	return CheckTables(ctx, h.pool)
}
