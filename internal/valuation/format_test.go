package valuation

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCurrencySymbol(t *testing.T) {
	tests := map[string]string{
		"USD": "$",
		"eur": "€",
		"GBP": "£",
		"JPY": "¥",
		"CHF": "Fr.",
		"AUD": "A$",
		"CAD": "C$",
		"ILS": "₪",
		"SEK": "SEK ",
		"":    "",
	}
	for code, want := range tests {
		assert.Equal(t, want, CurrencySymbol(code), code)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"1500", "USD", "$1,500.00"},
		{"0", "USD", "$0.00"},
		{"0.5", "EUR", "€0.50"},
		{"1234567.891", "GBP", "£1,234,567.89"},
		{"999.995", "USD", "$1,000.00"},
		{"12.345", "CHF", "Fr.12.35"},
		{"42", "SEK", "SEK 42.00"},
		{"42", "", "42.00"},
		{"-1250.5", "USD", "-$1,250.50"},
		{"999999999999999.99", "USD", "$999,999,999,999,999.99"},
		{"100000000000000000", "USD", "$100,000,000,000,000,000.00"},
		{"123456789012345678.906", "EUR", "€123,456,789,012,345,678.91"},
		{"-100000000000000000.5", "USD", "-$100,000,000,000,000,000.50"},
		{"100000000000000000", "SEK", "SEK 100,000,000,000,000,000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(decimal.RequireFromString(tt.amount), tt.currency))
		})
	}
}

func TestFormatAmount_ParsesBackPastInt64Cents(t *testing.T) {
	for _, raw := range []string{"92233720368547758.07", "92233720368547758.08", "1e17", "999999999999999999.99"} {
		amount := decimal.RequireFromString(raw)
		display := FormatAmount(amount, "USD")

		digits := strings.NewReplacer("$", "", ",", "").Replace(display)
		parsed, err := decimal.NewFromString(digits)
		assert.NoError(t, err, display)
		assert.True(t, parsed.Sub(amount).Abs().LessThanOrEqual(decimal.RequireFromString("0.01")), "%s displayed as %s", raw, display)
	}
}
