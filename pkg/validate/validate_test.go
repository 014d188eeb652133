package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jowa-zm/jowa-ussd/pkg/validate"
)

func TestPhoneNumber(t *testing.T) {
	valid := []string{"+260971234567", "+260771234567", "+260961234567"}
	for _, p := range valid {
		assert.NoError(t, validate.PhoneNumber(p), p)
	}

	invalid := []string{"", "0971234567", "+260871234567", "+26097123456", "+2609712345678", "+254712345678"}
	for _, p := range invalid {
		assert.ErrorIs(t, validate.PhoneNumber(p), validate.ErrInvalidPhone, p)
	}
}

func TestText(t *testing.T) {
	v, err := validate.Text("  Jane Banda ")
	require.NoError(t, err)
	assert.Equal(t, "Jane Banda", v)

	_, err = validate.Text("   ")
	assert.ErrorIs(t, err, validate.ErrEmpty)

	_, err = validate.Text(" J ")
	assert.ErrorIs(t, err, validate.ErrTooShort)

	_, err = validate.Text(strings.Repeat("a", validate.MaxTextLength+1))
	assert.ErrorIs(t, err, validate.ErrTooLong)
}

func TestPaymentAmount(t *testing.T) {
	amount, err := validate.PaymentAmount("50")
	require.NoError(t, err)
	assert.Equal(t, "50", amount.String())

	amount, err = validate.PaymentAmount(" K150.50 ")
	require.NoError(t, err)
	assert.Equal(t, "150.5", amount.String())

	for _, raw := range []string{"abc", "", "K", "1.234", "100000000"} {
		_, err := validate.PaymentAmount(raw)
		assert.ErrorIs(t, err, validate.ErrInvalidAmount, raw)
	}
	for _, raw := range []string{"-5", "0", "0.00"} {
		_, err := validate.PaymentAmount(raw)
		assert.ErrorIs(t, err, validate.ErrAmountNotPositive, raw)
	}
}
