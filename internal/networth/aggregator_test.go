package networth

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/networth-tracker/internal/logging"
	"github.com/trogers1052/networth-tracker/internal/models"
	"github.com/trogers1052/networth-tracker/internal/quotes"
)

// MockConverter applies fixed rates to the reporting currency; identical currencies pass through
type MockConverter struct {
	rates map[string]decimal.Decimal
}

func NewMockConverter() *MockConverter {
	return &MockConverter{rates: make(map[string]decimal.Decimal)}
}

func (m *MockConverter) Convert(_ context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	rate, ok := m.rates[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s/%s", quotes.ErrUnavailable, from, to)
	}
	return amount.Mul(rate), nil
}

var palette = []string{"#111111", "#222222", "#333333"}

func valued(institution string, typ models.AssetType, currency, amount string) models.ValuedHolding {
	return models.ValuedHolding{
		Holding: models.Holding{
			Institution: institution,
			Type:        typ,
			Symbol:      currency,
			Currency:    currency,
		},
		Amount:    decimal.RequireFromString(amount),
		Available: true,
	}
}

func newAggregator(c Converter) *Aggregator {
	return NewAggregator(c, "USD", palette, 0, logging.Discard())
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAggregate_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("stock in reporting currency", func(t *testing.T) {
		_, nw := newAggregator(NewMockConverter()).Aggregate(ctx, []models.ValuedHolding{
			valued("Broker", models.AssetTypeStock, "USD", "1500"),
		})
		assert.True(t, nw.Total.Equal(dec("1500.00")))
		assert.Equal(t, "USD", nw.ReportingCurrency)
	})

	t.Run("euro cash converted", func(t *testing.T) {
		c := NewMockConverter()
		c.rates["EUR"] = dec("1.08")

		holdings, nw := newAggregator(c).Aggregate(ctx, []models.ValuedHolding{
			valued("Bank", models.AssetTypeCash, "EUR", "1000"),
		})
		assert.True(t, holdings[0].ReportingAmount.Equal(dec("1080")))
		assert.True(t, nw.Total.Equal(dec("1080.00")))
		require.Len(t, nw.ByCurrency, 1)
		assert.Equal(t, "EUR", nw.ByCurrency[0].Name)
		assert.True(t, nw.ByCurrency[0].Value.Equal(dec("1080")))
	})

	t.Run("two holdings of different types", func(t *testing.T) {
		_, nw := newAggregator(NewMockConverter()).Aggregate(ctx, []models.ValuedHolding{
			valued("Broker", models.AssetTypeStock, "USD", "500"),
			valued("Bank", models.AssetTypeCash, "USD", "300"),
		})
		assert.True(t, nw.Total.Equal(dec("800")))
		require.Len(t, nw.ByType, 2)
		assert.Equal(t, "Stock", nw.ByType[0].Name)
		assert.True(t, nw.ByType[0].Value.Equal(dec("500")))
		assert.Equal(t, "Cash", nw.ByType[1].Name)
		assert.True(t, nw.ByType[1].Value.Equal(dec("300")))
	})
}

func TestAggregate_UnavailableContributesZero(t *testing.T) {
	ctx := context.Background()
	unpriced := valued("Broker", models.AssetTypeStock, "USD", "0")
	unpriced.Available = false

	holdings, nw := newAggregator(NewMockConverter()).Aggregate(ctx, []models.ValuedHolding{
		valued("Bank", models.AssetTypeCash, "USD", "100"),
		unpriced,
		valued("Bank", models.AssetTypeCash, "GBP", "50"), // no GBP rate
	})

	require.Len(t, holdings, 3, "the display list keeps every holding")
	assert.True(t, holdings[1].ReportingAmount.IsZero())
	assert.True(t, holdings[2].ReportingAmount.IsZero())
	assert.True(t, nw.Total.Equal(dec("100")))

	// the zero-amount holding is excluded, the failed conversion still forms a group
	require.Len(t, nw.ByType, 1)
	require.Len(t, nw.ByCurrency, 2)
	assert.Equal(t, "GBP", nw.ByCurrency[1].Name)
	assert.True(t, nw.ByCurrency[1].Value.IsZero())
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	c := NewMockConverter()
	c.rates["EUR"] = dec("2")
	in := []models.ValuedHolding{valued("Bank", models.AssetTypeCash, "EUR", "10")}

	out, _ := newAggregator(c).Aggregate(context.Background(), in)
	assert.True(t, in[0].ReportingAmount.IsZero())
	assert.True(t, out[0].ReportingAmount.Equal(dec("20")))
}

func TestFold_GroupsSumToTotal(t *testing.T) {
	var holdings []models.ValuedHolding
	institutions := []string{"Ally", "Schwab", "Ledger", "Fidelity"}
	types := []models.AssetType{models.AssetTypeStock, models.AssetTypeCash, models.AssetTypeCrypto}
	currencies := []string{"USD", "EUR", "ILS"}
	for i := 0; i < 40; i++ {
		vh := valued(institutions[i%4], types[i%3], currencies[i%3], "1")
		vh.ReportingAmount = decimal.NewFromFloat(float64(i)*13.337 + 0.005)
		holdings = append(holdings, vh)
	}

	nw := Fold(holdings, "USD", palette)
	tolerance := dec("0.01")
	for name, points := range map[string][]models.ChartDataPoint{
		"type":        nw.ByType,
		"institution": nw.ByInstitution,
		"currency":    nw.ByCurrency,
	} {
		sum := decimal.Zero
		for _, p := range points {
			sum = sum.Add(p.Value)
		}
		diff := sum.Sub(nw.Total).Abs()
		assert.True(t, diff.LessThanOrEqual(tolerance.Mul(decimal.NewFromInt(int64(len(points))))),
			"%s groups sum to %s, total %s", name, sum, nw.Total)
	}
}

func TestFold_RoundsAtEmission(t *testing.T) {
	var holdings []models.ValuedHolding
	for i := 0; i < 3; i++ {
		vh := valued("Bank", models.AssetTypeCash, "USD", "1")
		vh.ReportingAmount = dec("0.004")
		holdings = append(holdings, vh)
	}

	nw := Fold(holdings, "USD", palette)
	// three 0.004 sum to 0.012 which rounds to 0.01, rounding first would give 0.00
	assert.True(t, nw.Total.Equal(dec("0.01")))
	assert.True(t, nw.ByType[0].Value.Equal(dec("0.01")))
}

func TestFold_ColorsFollowFirstOccurrence(t *testing.T) {
	var holdings []models.ValuedHolding
	for _, inst := range []string{"D", "A", "D", "C", "B", "A"} {
		vh := valued(inst, models.AssetTypeCash, "USD", "1")
		vh.ReportingAmount = dec("1")
		holdings = append(holdings, vh)
	}

	nw := Fold(holdings, "USD", palette)
	require.Len(t, nw.ByInstitution, 4)

	var names, colors []string
	for _, p := range nw.ByInstitution {
		names = append(names, p.Name)
		colors = append(colors, p.Color)
	}
	assert.Equal(t, []string{"D", "A", "C", "B"}, names)
	assert.Equal(t, []string{"#111111", "#222222", "#333333", "#111111"}, colors, "palette wraps")
	assert.True(t, nw.ByInstitution[0].Value.Equal(dec("2")))
}

func TestFold_Empty(t *testing.T) {
	nw := Fold(nil, "EUR", nil)
	assert.True(t, nw.Total.IsZero())
	assert.Equal(t, "EUR", nw.ReportingCurrency)
	assert.Empty(t, nw.ByType)
	assert.NotNil(t, nw.ByType)
}

func TestParseDisplayAmount(t *testing.T) {
	tests := map[string]string{
		"$1,500.00":     "1500",
		"€1,080.00":     "1080",
		"-$12.50":       "-12.5",
		"SEK 42.00":     "42",
		"₪2,500.56":     "2500.56",
		"42":            "42",
		"":              "0",
		"n/a":           "0",
		"Fr.12.35":      "0",
		"1-2":           "0",
		"  $ 7 . 5 ":    "7.5",
		"A$1,000,000.1": "1000000.1",
	}
	for in, want := range tests {
		assert.True(t, ParseDisplayAmount(in).Equal(dec(want)), "%q parsed as %s", in, ParseDisplayAmount(in))
	}
}
