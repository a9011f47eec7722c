package valuation

import (
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CHF": "Fr.",
	"AUD": "A$",
	"CAD": "C$",
	"ILS": "₪",
}

// CurrencySymbol returns the display prefix for a currency code.
// Unknown codes render as the code followed by a space, and an empty code renders as nothing.
func CurrencySymbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if symbol, ok := currencySymbols[code]; ok {
		return symbol
	}
	return code + " "
}

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(-math.MaxInt64)
)

// FormatAmount renders amount as {symbol}{digits with thousands separators}.{2 decimals}
func FormatAmount(amount decimal.Decimal, currency string) string {
	rounded := amount.Round(2)
	cents := rounded.Shift(2)
	if cents.LessThanOrEqual(maxCents) && cents.GreaterThanOrEqual(minCents) {
		return money.NewFormatter(2, ".", ",", CurrencySymbol(currency), "$1").Format(cents.IntPart())
	}
	return formatLarge(rounded, CurrencySymbol(currency))
}

// formatLarge groups the decimal string directly, for amounts past int64 cents
func formatLarge(rounded decimal.Decimal, symbol string) string {
	whole, fraction, _ := strings.Cut(rounded.Abs().StringFixed(2), ".")

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(symbol)
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	b.WriteByte('.')
	b.WriteString(fraction)
	return b.String()
}
