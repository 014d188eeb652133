// Package ussd contiene el motor de sesiones: por cada interacción carga el estado
// persistido, interpreta la entrada, aplica los efectos de dominio y guarda el
// siguiente estado, todo dentro de una transacción.
package ussd

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jowa-zm/jowa-ussd/internal/application/menu"
	"github.com/jowa-zm/jowa-ussd/internal/domain"
	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
	ussdstate "github.com/jowa-zm/jowa-ussd/internal/domain/ussd"
	"github.com/jowa-zm/jowa-ussd/pkg/logger"
)

const notifyTimeout = 15 * time.Second

// Request interacción entrante ya normalizada por el adaptador de transporte.
// Text es solo la última entrada del usuario. Start marca el inicio del diálogo;
// un Text vacío sin Start es una entrada más y se valida como tal.
type Request struct {
	SessionID   string
	PhoneNumber string
	Text        string
	Start       bool
}

// Reply respuesta para el gateway. End indica que la sesión USSD termina (END).
type Reply struct {
	Message string
	End     bool
	State   ussdstate.Tag // vacío si la interacción falló
}

// Deps dependencias del dispatcher. Notifier, Events, Metrics y Logger son opcionales.
type Deps struct {
	Tx         TxRunner
	Renderer   *menu.Renderer
	Payments   PaymentGateway
	Notifier   Notifier
	Events     EventPublisher
	Metrics    Recorder
	Logger     *logger.Logger
	PremiumFee decimal.Decimal
}

// Dispatcher máquina de estados del diálogo USSD.
type Dispatcher struct {
	tx         TxRunner
	render     *menu.Renderer
	payments   PaymentGateway
	notifier   Notifier
	events     EventPublisher
	metrics    Recorder
	log        *logger.Logger
	premiumFee decimal.Decimal
	now        func() time.Time

	pending sync.WaitGroup
}

// NewDispatcher construye el dispatcher.
func NewDispatcher(deps Deps) *Dispatcher {
	d := &Dispatcher{
		tx:         deps.Tx,
		render:     deps.Renderer,
		payments:   deps.Payments,
		notifier:   deps.Notifier,
		events:     deps.Events,
		metrics:    deps.Metrics,
		log:        deps.Logger,
		premiumFee: deps.PremiumFee,
		now:        time.Now,
	}
	if d.notifier == nil {
		d.notifier = NopNotifier{}
	}
	if d.events == nil {
		d.events = NopPublisher{}
	}
	if d.metrics == nil {
		d.metrics = nopRecorder{}
	}
	if d.log == nil {
		d.log = logger.Nop()
	}
	return d
}

// sms mensaje pendiente de envío tras el commit.
type sms struct {
	to   string
	text string
}

// outcome resultado de una transición: estado siguiente, texto y efectos diferidos.
type outcome struct {
	next    ussdstate.State
	message string
	end     bool
	sms     []sms
	events  []Event
}

func proceed(next ussdstate.State, message string) outcome {
	return outcome{next: next, message: message}
}

func finish(next ussdstate.State, message string) outcome {
	return outcome{next: next, message: message, end: true}
}

// turn datos de la interacción en curso.
type turn struct {
	ctx    context.Context
	stores Stores
	req    Request
	input  string
}

// Dispatch procesa una interacción. Nunca devuelve error: las fallas se traducen
// a un mensaje terminal genérico y se registran en el log.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Reply {
	start := time.Now()
	input := strings.TrimSpace(req.Text)

	var out outcome
	err := d.tx.RunDispatch(ctx, func(stores Stores) error {
		var err error
		out, err = d.step(&turn{ctx: ctx, stores: stores, req: req, input: input})
		return err
	})
	elapsed := time.Since(start)

	if err != nil {
		reply := d.failure(req, err)
		d.metrics.ObserveDispatch("none", "error", elapsed)
		return reply
	}

	d.flush(ctx, req, out)

	tag := out.next.Tag()
	result := "continue"
	if out.end {
		result = "end"
	}
	d.metrics.ObserveDispatch(string(tag), result, elapsed)
	d.log.Debug().
		Str("session_id", req.SessionID).
		Str("phone", req.PhoneNumber).
		Str("state", string(tag)).
		Bool("end", out.end).
		Dur("elapsed", elapsed).
		Msg("dispatch")

	return Reply{Message: out.message, End: out.end, State: tag}
}

// Wait bloquea hasta que terminen los envíos de SMS y eventos pendientes.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

func (d *Dispatcher) failure(req Request, err error) Reply {
	var (
		msg string
		ev  *zerolog.Event
	)
	switch {
	case errors.Is(err, domain.ErrSessionExpired), errors.Is(err, domain.ErrUnknownState):
		msg, ev = d.render.SessionExpired(), d.log.Warn()
	case errors.Is(err, domain.ErrNotFound):
		msg, ev = d.render.RegisterFirst(), d.log.Warn()
	default:
		msg, ev = d.render.ServiceUnavailable(), d.log.Error()
	}
	ev.Err(err).
		Str("session_id", req.SessionID).
		Str("phone", req.PhoneNumber).
		Msg("dispatch falló")
	return Reply{Message: msg, End: true}
}

// step ejecuta la transición dentro de la transacción y persiste el estado resultante.
func (d *Dispatcher) step(t *turn) (outcome, error) {
	if t.req.Start {
		if err := t.stores.Workers.EnsureExists(t.ctx, t.req.PhoneNumber); err != nil {
			return outcome{}, err
		}
		out := proceed(ussdstate.MainMenu{}, d.render.MainMenu())
		return out, d.save(t, out.next)
	}

	rec, err := t.stores.Sessions.GetForUpdate(t.ctx, t.req.SessionID)
	if err != nil {
		return outcome{}, err
	}
	if rec == nil {
		return outcome{}, domain.ErrSessionExpired
	}
	current, err := ussdstate.Decode(rec.State, rec.Payload)
	if err != nil {
		return outcome{}, err
	}

	out, err := d.handle(t, current)
	if err != nil {
		return outcome{}, err
	}
	return out, d.save(t, out.next)
}

func (d *Dispatcher) save(t *turn, next ussdstate.State) error {
	tag, payload, err := ussdstate.Encode(next)
	if err != nil {
		return err
	}
	return t.stores.Sessions.Save(t.ctx, &entity.Session{
		ID:          t.req.SessionID,
		PhoneNumber: t.req.PhoneNumber,
		State:       tag,
		Payload:     payload,
	})
}

func (d *Dispatcher) handle(t *turn, current ussdstate.State) (outcome, error) {
	switch st := current.(type) {
	case ussdstate.MainMenu:
		return d.onMainMenu(t)
	case ussdstate.WorkerRegistration:
		return d.onWorkerRegistration(t, st)
	case ussdstate.EmployerRegistration:
		return d.onEmployerRegistration(t, st)
	case ussdstate.WorkerDashboard:
		return d.onWorkerDashboard(t)
	case ussdstate.EmployerDashboard:
		return d.onEmployerDashboard(t)
	case ussdstate.PostJob:
		return d.onPostJob(t, st)
	case ussdstate.BrowseJobs:
		return d.onBrowseJobs(t, st)
	case ussdstate.ViewApplications:
		return d.onViewApplications(t, st)
	case ussdstate.PaymentMethod:
		return d.onPaymentMethod(t, st)
	case ussdstate.PaymentConfirmation:
		return d.onPaymentConfirmation(t, st)
	case ussdstate.PaymentHistory:
		return d.onPaymentHistory(t, st)
	}
	return outcome{}, domain.ErrUnknownState
}

// invalid deja el estado intacto y repite la pantalla actual.
func (d *Dispatcher) invalid(t *turn, current ussdstate.State, screen string) outcome {
	d.log.Debug().
		Err(&domain.InvalidChoiceError{State: string(current.Tag()), Input: t.input}).
		Str("session_id", t.req.SessionID).
		Msg("opción inválida")
	return proceed(current, d.render.InvalidOption(screen))
}

// flush envía SMS y eventos en segundo plano; sus fallas solo se registran.
func (d *Dispatcher) flush(ctx context.Context, req Request, out outcome) {
	if len(out.sms) == 0 && len(out.events) == 0 {
		return
	}
	bg := context.WithoutCancel(ctx)
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		ctx, cancel := context.WithTimeout(bg, notifyTimeout)
		defer cancel()

		for _, m := range out.sms {
			if err := d.notifier.Notify(ctx, m.to, m.text); err != nil {
				d.metrics.NotificationFailed("sms")
				d.log.Warn().Err(err).Str("to", m.to).Str("session_id", req.SessionID).Msg("no se pudo enviar SMS")
			}
		}
		for _, ev := range out.events {
			ev.SessionID = req.SessionID
			ev.PhoneNumber = req.PhoneNumber
			ev.OccurredAt = d.now().UTC()
			if err := d.events.Publish(ctx, ev); err != nil {
				d.metrics.NotificationFailed("event")
				d.log.Warn().Err(err).Str("event", ev.Type).Str("session_id", req.SessionID).Msg("no se pudo publicar evento")
			}
		}
	}()
}
