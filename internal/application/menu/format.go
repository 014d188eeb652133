package menu

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Los montos se muestran en kwacha con separador de miles: K1,500.00
var printer = message.NewPrinter(language.English)

// Money formatea un monto en kwacha.
func Money(amount decimal.Decimal) string {
	return "K" + printer.Sprintf("%.2f", amount.Round(2).InexactFloat64())
}

// Date formato corto usado en todos los listados (dd/mm/yyyy).
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

// Truncate recorta a max runas añadiendo "...".
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 3 {
		return string([]rune(s)[:max])
	}
	return string([]rune(s)[:max-3]) + "..."
}

// titleCase primera letra en mayúscula ("pending" -> "Pending").
func titleCase(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + s[size:]
}
