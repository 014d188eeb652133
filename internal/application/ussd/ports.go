package ussd

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
	"github.com/jowa-zm/jowa-ussd/internal/domain/repository"
)

// Stores repositorios atados a la transacción de un dispatch.
type Stores struct {
	Workers      repository.WorkerRepository
	Employers    repository.EmployerRepository
	Jobs         repository.JobRepository
	Applications repository.ApplicationRepository
	Payments     repository.PaymentRepository
	Sessions     repository.SessionRepository
}

// TxRunner ejecuta fn dentro de una única transacción: la escritura del estado de sesión
// y las mutaciones de dominio de un dispatch se confirman o se descartan juntas.
type TxRunner interface {
	RunDispatch(ctx context.Context, fn func(stores Stores) error) error
}

// Notifier envío de SMS, best-effort: su error nunca falla una transición.
type Notifier interface {
	Notify(ctx context.Context, phone, message string) error
}

// Tipos de evento de dominio.
const (
	EventApplicationSubmitted = "application.submitted"
	EventJobPosted            = "job.posted"
	EventPaymentCompleted     = "payment.completed"
)

// Event hecho de dominio publicado tras confirmar la transacción.
type Event struct {
	Type        string         `json:"type"`
	SessionID   string         `json:"session_id"`
	PhoneNumber string         `json:"phone_number"`
	Data        map[string]any `json:"data,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

// EventPublisher bus de eventos, best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// PaymentResult respuesta del proveedor de pagos.
type PaymentResult struct {
	Success   bool
	Reference string // id de transacción del proveedor (solo si Success)
}

// PaymentRequest cobro solicitado al proveedor. IdempotencyKey identifica el cobro
// (sesión + concepto): el proveedor devuelve el mismo resultado si se repite la clave.
type PaymentRequest struct {
	IdempotencyKey string
	Phone          string
	Amount         decimal.Decimal
	Provider       entity.PaymentProvider
}

// PaymentGateway proveedor externo de pagos móviles (simulado en esta versión).
type PaymentGateway interface {
	AttemptPayment(ctx context.Context, req PaymentRequest) (PaymentResult, error)
}

// Recorder métricas del dispatcher.
type Recorder interface {
	ObserveDispatch(state, outcome string, elapsed time.Duration)
	NotificationFailed(channel string)
}

// NopNotifier descarta los mensajes.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, string) error { return nil }

// NopPublisher descarta los eventos.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

type nopRecorder struct{}

func (nopRecorder) ObserveDispatch(string, string, time.Duration) {}
func (nopRecorder) NotificationFailed(string)                     {}
