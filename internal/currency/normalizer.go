package currency

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/networth-tracker/internal/quotes"
)

// Exchanger converts an amount between two currencies
type Exchanger interface {
	Exchange(ctx context.Context, from, to string, amount decimal.Decimal) (quotes.Conversion, error)
}

// Normalizer converts amounts into a target currency
type Normalizer struct {
	exchanger Exchanger
}

// NewNormalizer creates a new Normalizer backed by exchanger
func NewNormalizer(exchanger Exchanger) *Normalizer {
	return &Normalizer{exchanger: exchanger}
}

// Convert returns amount expressed in to. Identical currencies return amount unchanged
// without touching the exchanger; pair rates for X/X are not guaranteed to be exactly 1.
func (n *Normalizer) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if strings.EqualFold(strings.TrimSpace(from), strings.TrimSpace(to)) {
		return amount, nil
	}

	conv, err := n.exchanger.Exchange(ctx, from, to, amount)
	if err != nil {
		return decimal.Zero, err
	}
	return conv.Converted, nil
}
