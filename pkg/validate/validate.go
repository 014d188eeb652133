// Package validate contiene las validaciones de forma para la entrada de texto libre
// que llega por USSD (nombres, ubicaciones, montos y teléfonos). Funciones puras, sin I/O.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MinTextLength longitud mínima (en runas, tras trim) de cualquier campo de texto libre.
const MinTextLength = 2

// MaxTextLength tope por campo; el gateway corta los mensajes largos de todas formas.
const MaxTextLength = 160

var (
	ErrEmpty             = errors.New("validate: valor vacío")
	ErrTooShort          = errors.New("validate: valor demasiado corto")
	ErrTooLong           = errors.New("validate: valor demasiado largo")
	ErrInvalidPhone      = errors.New("validate: número de teléfono inválido")
	ErrInvalidAmount     = errors.New("validate: monto inválido")
	ErrAmountNotPositive = errors.New("validate: el monto debe ser mayor que cero")
)

// Números móviles de Zambia: +260 seguido de 9 o 7 y 8 dígitos más.
var zambianMobile = regexp.MustCompile(`^\+260[97][0-9]{8}$`)

// maxAmount corresponde a DECIMAL(10,2) en la tabla jobs.
var maxAmount = decimal.RequireFromString("99999999.99")

// PhoneNumber valida el formato del número que envía el gateway.
func PhoneNumber(phone string) error {
	if !zambianMobile.MatchString(strings.TrimSpace(phone)) {
		return fmt.Errorf("%w: %q", ErrInvalidPhone, phone)
	}
	return nil
}

// Text valida un campo de texto libre y devuelve el valor normalizado (trim).
func Text(value string) (string, error) {
	v := strings.TrimSpace(value)
	n := utf8.RuneCountInString(v)
	switch {
	case n == 0:
		return "", ErrEmpty
	case n < MinTextLength:
		return "", ErrTooShort
	case n > MaxTextLength:
		return "", ErrTooLong
	}
	return v, nil
}

// PaymentAmount interpreta un monto positivo con como máximo dos decimales.
// Acepta el prefijo de moneda "K" (kwacha) que algunos usuarios escriben.
func PaymentAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "K"), "k")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrAmountNotPositive
	}
	if amount.Exponent() < -2 || amount.GreaterThan(maxAmount) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return amount, nil
}
