package ussd

import (
	"errors"

	"github.com/jowa-zm/jowa-ussd/internal/domain"
	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
	ussdstate "github.com/jowa-zm/jowa-ussd/internal/domain/ussd"
)

func (d *Dispatcher) onPaymentMethod(t *turn, st ussdstate.PaymentMethod) (outcome, error) {
	if t.input == "0" {
		return finish(ussdstate.MainMenu{}, d.render.PaymentCancelled()), nil
	}
	if idx, ok := providerIndex(t.input); ok {
		next := ussdstate.PaymentConfirmation{
			Amount:   st.Amount,
			Provider: entity.PaymentProviders[idx],
			Purpose:  st.Purpose,
		}
		return proceed(next, d.render.PaymentConfirmation(next.Amount, next.Provider, next.Purpose)), nil
	}
	return d.invalid(t, st, d.render.PaymentMethods(st.Amount, st.Purpose)), nil
}

func (d *Dispatcher) onPaymentConfirmation(t *turn, st ussdstate.PaymentConfirmation) (outcome, error) {
	switch t.input {
	case "1":
		return d.confirmPayment(t, st)
	case "2":
		return finish(ussdstate.MainMenu{}, d.render.PaymentCancelled()), nil
	}
	return d.invalid(t, st, d.render.PaymentConfirmation(st.Amount, st.Provider, st.Purpose)), nil
}

// confirmPayment cobra como máximo una vez por (sesión, concepto). Una reconfirmación
// devuelve el resultado ya registrado sin volver a llamar al proveedor.
func (d *Dispatcher) confirmPayment(t *turn, st ussdstate.PaymentConfirmation) (outcome, error) {
	existing, err := t.stores.Payments.GetBySession(t.ctx, t.req.SessionID, st.Purpose)
	if err != nil {
		return outcome{}, err
	}
	if existing != nil {
		return finish(st, d.render.PaymentOutcome(existing)), nil
	}

	// Si el insert o el commit fallan después del cobro, el reintento de la misma
	// sesión repite la clave y el proveedor no vuelve a cobrar.
	res, err := d.payments.AttemptPayment(t.ctx, PaymentRequest{
		IdempotencyKey: paymentKey(t.req.SessionID, st.Purpose),
		Phone:          t.req.PhoneNumber,
		Amount:         st.Amount,
		Provider:       st.Provider,
	})
	if err != nil {
		return outcome{}, err
	}

	p := &entity.Payment{
		SessionID:   t.req.SessionID,
		PhoneNumber: t.req.PhoneNumber,
		Amount:      st.Amount,
		Provider:    st.Provider,
		Purpose:     st.Purpose,
		Status:      entity.PaymentStatusFailed,
	}
	if res.Success {
		p.Status = entity.PaymentStatusSuccess
		p.TransactionID = res.Reference
	}
	if err := t.stores.Payments.Create(t.ctx, p); err != nil {
		if !errors.Is(err, domain.ErrDuplicate) {
			return outcome{}, err
		}
		existing, err := t.stores.Payments.GetBySession(t.ctx, t.req.SessionID, st.Purpose)
		if err != nil {
			return outcome{}, err
		}
		if existing == nil {
			return outcome{}, &domain.NotFoundError{Entity: "payment", Key: t.req.SessionID}
		}
		return finish(st, d.render.PaymentOutcome(existing)), nil
	}

	d.log.Info().
		Int64("payment_id", p.ID).
		Str("provider", string(p.Provider)).
		Str("status", p.Status).
		Str("transaction_id", p.TransactionID).
		Msg("pago registrado")

	out := finish(st, d.render.PaymentOutcome(p))
	if p.Succeeded() {
		out.sms = append(out.sms, sms{to: p.PhoneNumber, text: d.render.PaymentReceiptSMS(p)})
		out.events = append(out.events, Event{
			Type: EventPaymentCompleted,
			Data: map[string]any{
				"payment_id":     p.ID,
				"amount":         p.Amount.StringFixed(2),
				"provider":       string(p.Provider),
				"purpose":        string(p.Purpose),
				"transaction_id": p.TransactionID,
			},
		})
	}
	return out, nil
}

func providerIndex(input string) (int, bool) {
	if len(input) != 1 || input[0] < '1' {
		return 0, false
	}
	idx := int(input[0] - '1')
	if idx >= len(entity.PaymentProviders) {
		return 0, false
	}
	return idx, true
}

// paymentKey clave de idempotencia del cobro: una por (sesión, concepto).
func paymentKey(sessionID string, purpose entity.PaymentPurpose) string {
	return sessionID + ":" + string(purpose)
}
