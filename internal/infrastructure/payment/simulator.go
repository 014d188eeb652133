// Package payment simula el cobro por billeteras móviles (MTN, Airtel, Zamtel).
package payment

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jowa-zm/jowa-ussd/internal/application/ussd"
	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
	"github.com/jowa-zm/jowa-ussd/pkg/logger"
)

var _ ussd.PaymentGateway = (*Simulator)(nil)

// resultTTL tiempo que se recuerda el resultado de una clave de idempotencia.
const resultTTL = 24 * time.Hour

// Simulator aprueba cada intento con probabilidad successRate. Un intento con una
// clave ya vista devuelve el resultado registrado sin cobrar de nuevo.
type Simulator struct {
	successRate float64
	latency     time.Duration
	roll        func() float64
	log         *logger.Logger
	now         func() time.Time

	mu      sync.Mutex
	results map[string]storedResult
}

type storedResult struct {
	res ussd.PaymentResult
	at  time.Time
}

// Option ajusta el simulador.
type Option func(*Simulator)

// WithLatency agrega una espera por intento, imitando la confirmación del usuario en su teléfono.
func WithLatency(d time.Duration) Option {
	return func(s *Simulator) { s.latency = d }
}

// WithRoll reemplaza la fuente aleatoria (tests).
func WithRoll(roll func() float64) Option {
	return func(s *Simulator) { s.roll = roll }
}

// NewSimulator construye el simulador.
func NewSimulator(successRate float64, log *logger.Logger, opts ...Option) *Simulator {
	if log == nil {
		log = logger.Nop()
	}
	s := &Simulator{
		successRate: successRate,
		roll:        rand.Float64,
		log:         log,
		now:         time.Now,
		results:     make(map[string]storedResult),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AttemptPayment simula el cobro. Solo devuelve error ante datos inválidos o ctx cancelado.
func (s *Simulator) AttemptPayment(ctx context.Context, req ussd.PaymentRequest) (ussd.PaymentResult, error) {
	if !req.Provider.Valid() {
		return ussd.PaymentResult{}, fmt.Errorf("proveedor de pago desconocido: %q", req.Provider)
	}
	if !req.Amount.IsPositive() {
		return ussd.PaymentResult{}, fmt.Errorf("monto de pago inválido: %s", req.Amount)
	}
	if res, ok := s.lookup(req.IdempotencyKey); ok {
		s.log.Info().Str("idempotency_key", req.IdempotencyKey).Bool("success", res.Success).Msg("pago repetido, se devuelve el resultado anterior")
		return res, nil
	}

	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ussd.PaymentResult{}, ctx.Err()
		case <-timer.C:
		}
	}

	res := ussd.PaymentResult{}
	if s.roll() < s.successRate {
		res = ussd.PaymentResult{Success: true, Reference: transactionID(req.Provider)}
	}
	s.remember(req.IdempotencyKey, res)

	s.log.Info().
		Str("phone", req.Phone).
		Str("provider", string(req.Provider)).
		Str("amount", req.Amount.StringFixed(2)).
		Bool("success", res.Success).
		Str("transaction_id", res.Reference).
		Msg("pago simulado")
	return res, nil
}

func (s *Simulator) lookup(key string) (ussd.PaymentResult, bool) {
	if key == "" {
		return ussd.PaymentResult{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[key]
	if !ok || s.now().Sub(r.at) > resultTTL {
		return ussd.PaymentResult{}, false
	}
	return r.res, true
}

func (s *Simulator) remember(key string, res ussd.PaymentResult) {
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, r := range s.results {
		if now.Sub(r.at) > resultTTL {
			delete(s.results, k)
		}
	}
	s.results[key] = storedResult{res: res, at: now}
}

// transactionID prefijo del proveedor + 12 caracteres de un UUID, ej. MTN-1A2B3C4D5E6F.
func transactionID(provider entity.PaymentProvider) string {
	prefix := map[entity.PaymentProvider]string{
		entity.ProviderMTN:    "MTN",
		entity.ProviderAirtel: "AIR",
		entity.ProviderZamtel: "ZAM",
	}[provider]
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return prefix + "-" + id[:12]
}
