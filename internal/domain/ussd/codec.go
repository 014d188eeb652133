package ussd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jowa-zm/jowa-ussd/internal/domain"
)

// Encode serializa la variante a (menu_level, data).
func Encode(s State) (string, json.RawMessage, error) {
	if s == nil {
		return "", nil, fmt.Errorf("encode: %w", domain.ErrUnknownState)
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s: %w", s.Tag(), err)
	}
	return string(s.Tag()), payload, nil
}

// Decode reconstruye la variante a partir de lo persistido y valida su payload.
// Un payload vacío o "null" equivale al valor inicial del estado.
func Decode(tag string, payload []byte) (State, error) {
	var s State
	switch Tag(tag) {
	case TagMainMenu:
		return MainMenu{}, nil
	case TagWorkerDashboard:
		return WorkerDashboard{}, nil
	case TagEmployerDashboard:
		return EmployerDashboard{}, nil
	case TagWorkerRegistration:
		var v WorkerRegistration
		if err := unmarshal(payload, &v); err != nil {
			return nil, err
		}
		if v.Step == 0 {
			v.Step = WorkerStepName
		}
		if v.Step > WorkerStepLocation || v.Step < 0 {
			return nil, invalidPayload(tag, "step fuera de rango")
		}
		s = v
	case TagEmployerRegistration:
		var v EmployerRegistration
		if err := unmarshal(payload, &v); err != nil {
			return nil, err
		}
		if v.Step == 0 {
			v.Step = EmployerStepCompany
		}
		if v.Step > EmployerStepBusinessType || v.Step < 0 {
			return nil, invalidPayload(tag, "step fuera de rango")
		}
		s = v
	case TagPostJob:
		var v PostJob
		if err := unmarshal(payload, &v); err != nil {
			return nil, err
		}
		if v.Step == 0 {
			v.Step = PostJobStepTitle
		}
		if v.Step > PostJobStepPaymentType || v.Step < 0 {
			return nil, invalidPayload(tag, "step fuera de rango")
		}
		if v.Step == PostJobStepPaymentType && v.PaymentAmount == nil {
			return nil, invalidPayload(tag, "falta payment_amount")
		}
		s = v
	case TagBrowseJobs:
		var v BrowseJobs
		if err := unmarshal(payload, &v); err != nil {
			return nil, err
		}
		if v.Page < 0 {
			v.Page = 0
		}
		s = v
	case TagViewApplications:
		var v ViewApplications
		if err := unmarshal(payload, &v); err != nil {
			return nil, err
		}
		if v.Page < 0 {
			v.Page = 0
		}
		s = v
	case TagPaymentHistory:
		var v PaymentHistory
		if err := unmarshal(payload, &v); err != nil {
			return nil, err
		}
		if v.Page < 0 {
			v.Page = 0
		}
		s = v
	case TagPaymentMethod:
		var v PaymentMethod
		if err := unmarshal(payload, &v); err != nil {
			return nil, err
		}
		if !v.Amount.IsPositive() || v.Purpose == "" {
			return nil, invalidPayload(tag, "monto o concepto inválido")
		}
		s = v
	case TagPaymentConfirmation:
		var v PaymentConfirmation
		if err := unmarshal(payload, &v); err != nil {
			return nil, err
		}
		if !v.Amount.IsPositive() || v.Purpose == "" || !v.Provider.Valid() {
			return nil, invalidPayload(tag, "monto, proveedor o concepto inválido")
		}
		s = v
	default:
		return nil, fmt.Errorf("decode %q: %w", tag, domain.ErrUnknownState)
	}
	return s, nil
}

func unmarshal(payload []byte, v any) error {
	p := bytes.TrimSpace(payload)
	if len(p) == 0 || bytes.Equal(p, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(p, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

func invalidPayload(tag, msg string) error {
	return fmt.Errorf("decode %s: %s: %w", tag, msg, domain.ErrUnknownState)
}
