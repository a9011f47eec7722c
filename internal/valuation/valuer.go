package valuation

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/trogers1052/networth-tracker/internal/models"
	"github.com/trogers1052/networth-tracker/internal/quotes"
	"golang.org/x/sync/errgroup"
)

// Quoter prices symbol-bearing holdings
type Quoter interface {
	Amount(ctx context.Context, symbol string, quantity decimal.Decimal) (quotes.Quote, error)
	CryptoAmount(ctx context.Context, symbol string, quantity decimal.Decimal) (quotes.Quote, error)
}

// Valuer computes the current amount and display string of every holding
type Valuer struct {
	quoter              Quoter
	cryptoQuoteCurrency string
	concurrency         int
	log                 logrus.FieldLogger
}

// NewValuer creates a Valuer. A concurrency of zero or less leaves lookups unbounded.
func NewValuer(quoter Quoter, cryptoQuoteCurrency string, concurrency int, log logrus.FieldLogger) *Valuer {
	return &Valuer{
		quoter:              quoter,
		cryptoQuoteCurrency: cryptoQuoteCurrency,
		concurrency:         concurrency,
		log:                 log,
	}
}

// Value prices every holding concurrently and returns them sorted by institution.
// Failed lookups never abort the pass; the holding is kept with a zero amount.
func (v *Valuer) Value(ctx context.Context, holdings []models.Holding) []models.ValuedHolding {
	valued := make([]models.ValuedHolding, len(holdings))

	var g errgroup.Group
	if v.concurrency > 0 {
		g.SetLimit(v.concurrency)
	}
	for i := range holdings {
		h := holdings[i]
		g.Go(func() error {
			valued[i] = v.valueOne(ctx, h)
			return nil
		})
	}
	_ = g.Wait()

	SortByInstitution(valued)
	return valued
}

func (v *Valuer) valueOne(ctx context.Context, h models.Holding) models.ValuedHolding {
	vh := models.ValuedHolding{Holding: h}

	switch h.Type {
	case models.AssetTypeStock, models.AssetTypeBonds:
		quote, err := v.quoter.Amount(ctx, h.Symbol, h.Quantity)
		if vh.Currency == "" {
			vh.Currency = quote.Currency
		}
		v.apply(&vh, quote, err)
	case models.AssetTypeCrypto:
		quote, err := v.quoter.CryptoAmount(ctx, h.Symbol, h.Quantity)
		vh.Currency = v.cryptoQuoteCurrency
		v.apply(&vh, quote, err)
	default:
		vh.Currency = strings.ToUpper(strings.TrimSpace(h.Symbol))
		vh.Amount = h.Quantity.Round(2)
		vh.Available = true
	}

	vh.Display = FormatAmount(vh.Amount, vh.Currency)
	return vh
}

func (v *Valuer) apply(vh *models.ValuedHolding, quote quotes.Quote, err error) {
	if err != nil {
		entry := v.log.WithError(err).WithFields(logrus.Fields{
			"user_id":    vh.UserID,
			"holding_id": vh.ID,
			"symbol":     vh.Symbol,
		})
		if errors.Is(err, context.Canceled) {
			entry.Debug("Valuation cancelled")
		} else {
			entry.Warn("Price unavailable, valuing holding at zero")
		}
		vh.Amount = decimal.Zero
		return
	}
	vh.Amount = quote.Amount.Round(2)
	vh.Available = true
}

// SortByInstitution orders holdings by institution name, case-insensitive ascending.
// Holdings of the same institution keep their relative order.
func SortByInstitution(holdings []models.ValuedHolding) {
	sort.SliceStable(holdings, func(i, j int) bool {
		return strings.ToLower(holdings[i].Institution) < strings.ToLower(holdings[j].Institution)
	})
}
