package networth

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/trogers1052/networth-tracker/internal/models"
	"golang.org/x/sync/errgroup"
)

// Converter converts an amount into another currency
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}

// Aggregator folds valued holdings into the net-worth totals
type Aggregator struct {
	converter         Converter
	reportingCurrency string
	palette           []string
	concurrency       int
	log               logrus.FieldLogger
}

// NewAggregator creates an Aggregator reporting in reportingCurrency.
// Groups are colored by cycling through palette.
func NewAggregator(converter Converter, reportingCurrency string, palette []string, concurrency int, log logrus.FieldLogger) *Aggregator {
	return &Aggregator{
		converter:         converter,
		reportingCurrency: reportingCurrency,
		palette:           palette,
		concurrency:       concurrency,
		log:               log,
	}
}

// Aggregate converts holdings and folds them. The returned holdings keep the input order.
func (a *Aggregator) Aggregate(ctx context.Context, holdings []models.ValuedHolding) ([]models.ValuedHolding, models.NetWorth) {
	converted := a.Convert(ctx, holdings)
	return converted, Fold(converted, a.reportingCurrency, a.palette)
}

// Convert returns a copy of holdings with ReportingAmount filled in. Holdings with a
// non-positive amount are not converted, and an unavailable conversion leaves zero.
func (a *Aggregator) Convert(ctx context.Context, holdings []models.ValuedHolding) []models.ValuedHolding {
	out := make([]models.ValuedHolding, len(holdings))
	copy(out, holdings)

	var g errgroup.Group
	if a.concurrency > 0 {
		g.SetLimit(a.concurrency)
	}
	for i := range out {
		out[i].ReportingAmount = decimal.Zero
		if !out[i].Amount.IsPositive() {
			continue
		}
		g.Go(func() error {
			vh := &out[i]
			amount, err := a.converter.Convert(ctx, vh.Amount, vh.Currency, a.reportingCurrency)
			if err != nil {
				a.log.WithError(err).WithFields(logrus.Fields{
					"user_id":    vh.UserID,
					"holding_id": vh.ID,
					"currency":   vh.Currency,
				}).Warn("Conversion unavailable, holding contributes zero")
				return nil
			}
			vh.ReportingAmount = amount
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Fold groups converted holdings by type, institution and original currency.
// Holdings with a non-positive amount are left out. Sums are rounded only when emitted.
func Fold(holdings []models.ValuedHolding, reportingCurrency string, palette []string) models.NetWorth {
	byType := newGroups()
	byInstitution := newGroups()
	byCurrency := newGroups()
	total := decimal.Zero

	for _, vh := range holdings {
		if !vh.Amount.IsPositive() {
			continue
		}
		value := vh.ReportingAmount
		total = total.Add(value)
		byType.add(string(vh.Type), value)
		byInstitution.add(vh.Institution, value)
		byCurrency.add(vh.Currency, value)
	}

	return models.NetWorth{
		ReportingCurrency: reportingCurrency,
		Total:             total.Round(2),
		ByType:            byType.points(palette),
		ByInstitution:     byInstitution.points(palette),
		ByCurrency:        byCurrency.points(palette),
	}
}

// groups is a sum map that remembers first-occurrence order
type groups struct {
	order []string
	sums  map[string]decimal.Decimal
}

func newGroups() *groups {
	return &groups{sums: make(map[string]decimal.Decimal)}
}

func (g *groups) add(key string, value decimal.Decimal) {
	sum, ok := g.sums[key]
	if !ok {
		g.order = append(g.order, key)
	}
	g.sums[key] = sum.Add(value)
}

func (g *groups) points(palette []string) []models.ChartDataPoint {
	points := make([]models.ChartDataPoint, 0, len(g.order))
	for i, key := range g.order {
		var color string
		if len(palette) > 0 {
			color = palette[i%len(palette)]
		}
		points = append(points, models.ChartDataPoint{
			Name:  key,
			Value: g.sums[key].Round(2),
			Color: color,
		})
	}
	return points
}

// ParseDisplayAmount recovers the number from a legacy display string such as "€1,080.00".
// Every character other than a digit, '-' or '.' is dropped; anything unparsable is zero.
func ParseDisplayAmount(s string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '-' || r == '.' {
			return r
		}
		return -1
	}, s)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
