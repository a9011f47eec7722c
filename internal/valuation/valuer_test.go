package valuation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/networth-tracker/internal/logging"
	"github.com/trogers1052/networth-tracker/internal/models"
	"github.com/trogers1052/networth-tracker/internal/networth"
	"github.com/trogers1052/networth-tracker/internal/quotes"
)

// MockQuoter serves fixed unit prices; symbols without a price are unavailable
type MockQuoter struct {
	mu       sync.Mutex
	prices   map[string]quotes.Price
	delays   map[string]time.Duration
	inFlight int
	peak     int
	Calls    []string
}

func NewMockQuoter() *MockQuoter {
	return &MockQuoter{
		prices: make(map[string]quotes.Price),
		delays: make(map[string]time.Duration),
	}
}

func (m *MockQuoter) lookup(symbol string, quantity decimal.Decimal) (quotes.Quote, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, symbol)
	m.inFlight++
	if m.inFlight > m.peak {
		m.peak = m.inFlight
	}
	delay := m.delays[symbol]
	price, ok := m.prices[symbol]
	m.mu.Unlock()

	time.Sleep(delay)

	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()

	if !ok {
		return quotes.Quote{}, fmt.Errorf("%w: %s", quotes.ErrUnavailable, symbol)
	}
	return quotes.Quote{
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price.Value,
		Amount:   price.Value.Mul(quantity),
		Currency: price.Currency,
	}, nil
}

func (m *MockQuoter) Amount(_ context.Context, symbol string, quantity decimal.Decimal) (quotes.Quote, error) {
	return m.lookup(symbol, quantity)
}

func (m *MockQuoter) CryptoAmount(_ context.Context, symbol string, quantity decimal.Decimal) (quotes.Quote, error) {
	return m.lookup(symbol, quantity)
}

func holding(id, institution string, typ models.AssetType, symbol, quantity string) models.Holding {
	return models.Holding{
		ID:          id,
		UserID:      "user-1",
		Institution: institution,
		Type:        typ,
		Symbol:      symbol,
		Quantity:    decimal.RequireFromString(quantity),
	}
}

func TestValuer_Value(t *testing.T) {
	ctx := context.Background()

	t.Run("stock is price times quantity", func(t *testing.T) {
		q := NewMockQuoter()
		q.prices["AAPL"] = quotes.Price{Value: decimal.NewFromInt(150), Currency: "USD"}
		v := NewValuer(q, "USD", 0, logging.Discard())

		got := v.Value(ctx, []models.Holding{holding("1", "Broker", models.AssetTypeStock, "AAPL", "10")})
		require.Len(t, got, 1)
		assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(1500)))
		assert.Equal(t, "$1,500.00", got[0].Display)
		assert.Equal(t, "USD", got[0].Currency)
		assert.True(t, got[0].Available)
	})

	t.Run("stored currency wins over the quote currency", func(t *testing.T) {
		q := NewMockQuoter()
		q.prices["VOD.L"] = quotes.Price{Value: decimal.RequireFromString("0.7"), Currency: "GBp"}
		v := NewValuer(q, "USD", 0, logging.Discard())

		h := holding("1", "Broker", models.AssetTypeStock, "VOD.L", "100")
		h.Currency = "GBP"
		got := v.Value(ctx, []models.Holding{h})
		assert.Equal(t, "GBP", got[0].Currency)
		assert.Equal(t, "£70.00", got[0].Display)
	})

	t.Run("crypto currency is forced", func(t *testing.T) {
		q := NewMockQuoter()
		q.prices["BTC"] = quotes.Price{Value: decimal.NewFromInt(60000), Currency: "EUR"}
		v := NewValuer(q, "USD", 0, logging.Discard())

		h := holding("1", "Wallet", models.AssetTypeCrypto, "BTC", "0.5")
		h.Currency = "EUR"
		got := v.Value(ctx, []models.Holding{h})
		assert.Equal(t, "USD", got[0].Currency)
		assert.Equal(t, "$30,000.00", got[0].Display)
	})

	t.Run("cash-like types use quantity verbatim without a lookup", func(t *testing.T) {
		q := NewMockQuoter()
		v := NewValuer(q, "USD", 0, logging.Discard())

		got := v.Value(ctx, []models.Holding{
			holding("1", "Bank", models.AssetTypeCash, "eur", "1000"),
			holding("2", "Bank", models.AssetTypeBankDeposit, "ILS", "2500.555"),
			holding("3", "Fund", models.AssetTypePension, "CHF", "12000"),
		})
		require.Len(t, got, 3)
		assert.Empty(t, q.Calls)

		assert.Equal(t, "EUR", got[0].Currency)
		assert.Equal(t, "€1,000.00", got[0].Display)
		assert.Equal(t, "₪2,500.56", got[1].Display)
		assert.True(t, got[1].Amount.Equal(decimal.RequireFromString("2500.56")))
		assert.Equal(t, "Fr.12,000.00", got[2].Display)
	})

	t.Run("unavailable price is zero and still displayed", func(t *testing.T) {
		q := NewMockQuoter()
		v := NewValuer(q, "USD", 0, logging.Discard())

		h := holding("1", "Broker", models.AssetTypeStock, "GONE", "3")
		h.Currency = "USD"
		got := v.Value(ctx, []models.Holding{h})
		require.Len(t, got, 1)
		assert.True(t, got[0].Amount.IsZero())
		assert.False(t, got[0].Available)
		assert.Equal(t, "$0.00", got[0].Display)
	})

	t.Run("sorted by institution case-insensitively, stable within one institution", func(t *testing.T) {
		q := NewMockQuoter()
		v := NewValuer(q, "USD", 0, logging.Discard())

		got := v.Value(ctx, []models.Holding{
			holding("1", "schwab", models.AssetTypeCash, "USD", "1"),
			holding("2", "Ally", models.AssetTypeCash, "USD", "2"),
			holding("3", "Schwab", models.AssetTypeCash, "USD", "3"),
			holding("4", "ally", models.AssetTypeCash, "USD", "4"),
		})

		var ids []string
		for _, vh := range got {
			ids = append(ids, vh.ID)
		}
		assert.Equal(t, []string{"2", "4", "1", "3"}, ids)
	})

	t.Run("lookups run concurrently and recombine by holding", func(t *testing.T) {
		q := NewMockQuoter()
		q.prices["SLOW"] = quotes.Price{Value: decimal.NewFromInt(1), Currency: "USD"}
		q.prices["FAST"] = quotes.Price{Value: decimal.NewFromInt(2), Currency: "USD"}
		q.delays["SLOW"] = 50 * time.Millisecond
		q.delays["FAST"] = 20 * time.Millisecond
		v := NewValuer(q, "USD", 0, logging.Discard())

		got := v.Value(ctx, []models.Holding{
			holding("slow", "A", models.AssetTypeStock, "SLOW", "10"),
			holding("fast", "B", models.AssetTypeStock, "FAST", "10"),
		})
		require.Len(t, got, 2)
		assert.Equal(t, "slow", got[0].ID)
		assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, "fast", got[1].ID)
		assert.True(t, got[1].Amount.Equal(decimal.NewFromInt(20)))
		assert.Equal(t, 2, q.peak)
	})

	t.Run("concurrency limit is honored", func(t *testing.T) {
		q := NewMockQuoter()
		var holdings []models.Holding
		for i := 0; i < 6; i++ {
			symbol := fmt.Sprintf("S%d", i)
			q.prices[symbol] = quotes.Price{Value: decimal.NewFromInt(1), Currency: "USD"}
			q.delays[symbol] = 10 * time.Millisecond
			holdings = append(holdings, holding(symbol, "Broker", models.AssetTypeStock, symbol, "1"))
		}
		v := NewValuer(q, "USD", 2, logging.Discard())

		got := v.Value(ctx, holdings)
		assert.Len(t, got, 6)
		assert.LessOrEqual(t, q.peak, 2)
	})

	t.Run("empty input", func(t *testing.T) {
		v := NewValuer(NewMockQuoter(), "USD", 0, logging.Discard())
		assert.Empty(t, v.Value(ctx, nil))
	})
}

func TestDisplayRoundTrip(t *testing.T) {
	for _, raw := range []string{"0", "0.004", "1", "999.999", "1500", "1234567.891", "0.5"} {
		amount := decimal.RequireFromString(raw)
		// "Fr." carries a dot that the legacy parser keeps, so CHF display strings do not round trip
		for _, currency := range []string{"USD", "EUR", "GBP", "AUD", "SEK", ""} {
			parsed := networth.ParseDisplayAmount(FormatAmount(amount, currency))
			assert.True(t, parsed.Sub(amount).Abs().LessThanOrEqual(decimal.RequireFromString("0.01")),
				"%s %s parsed as %s", raw, currency, parsed)
		}
	}
}
