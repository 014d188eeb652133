package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentProvider billetera móvil soportada.
type PaymentProvider string

const (
	ProviderMTN    PaymentProvider = "mtn_momo"
	ProviderAirtel PaymentProvider = "airtel_money"
	ProviderZamtel PaymentProvider = "zamtel_kwacha"
)

// PaymentProviders orden del menú de selección (1, 2, 3).
var PaymentProviders = []PaymentProvider{ProviderMTN, ProviderAirtel, ProviderZamtel}

// DisplayName nombre comercial mostrado al usuario.
func (p PaymentProvider) DisplayName() string {
	switch p {
	case ProviderMTN:
		return "MTN Mobile Money"
	case ProviderAirtel:
		return "Airtel Money"
	case ProviderZamtel:
		return "Zamtel Kwacha"
	}
	return string(p)
}

// Valid true si el proveedor pertenece al enum.
func (p PaymentProvider) Valid() bool {
	switch p {
	case ProviderMTN, ProviderAirtel, ProviderZamtel:
		return true
	}
	return false
}

// PaymentPurpose concepto del cobro.
type PaymentPurpose string

const (
	PurposePremiumListing PaymentPurpose = "premium_listing"
)

// DisplayName concepto legible.
func (p PaymentPurpose) DisplayName() string {
	switch p {
	case PurposePremiumListing:
		return "Premium Listing"
	}
	return string(p)
}

// Estados finales de un pago.
const (
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// Payment resultado de un intento de pago. Único por (SessionID, Purpose):
// reconfirmar la misma sesión devuelve este registro sin volver a cobrar.
type Payment struct {
	ID            int64
	SessionID     string
	PhoneNumber   string
	Amount        decimal.Decimal
	Provider      PaymentProvider
	Purpose       PaymentPurpose
	Status        string
	TransactionID string
	CreatedAt     time.Time
}

// Succeeded true si el cobro fue aprobado.
func (p *Payment) Succeeded() bool { return p != nil && p.Status == PaymentStatusSuccess }
