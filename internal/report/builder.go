package report

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/trogers1052/networth-tracker/internal/models"
)

// HoldingLister loads the holdings of a user
type HoldingLister interface {
	List(ctx context.Context, userID string) ([]models.Holding, error)
}

// Valuer prices holdings
type Valuer interface {
	Value(ctx context.Context, holdings []models.Holding) []models.ValuedHolding
}

// Aggregator converts valued holdings and folds them into totals
type Aggregator interface {
	Aggregate(ctx context.Context, holdings []models.ValuedHolding) ([]models.ValuedHolding, models.NetWorth)
}

// Builder runs one full valuation pass: holdings, prices, conversion, totals
type Builder struct {
	holdings   HoldingLister
	valuer     Valuer
	aggregator Aggregator
	now        func() time.Time
	log        logrus.FieldLogger
}

// NewBuilder creates a report Builder
func NewBuilder(holdings HoldingLister, valuer Valuer, aggregator Aggregator, log logrus.FieldLogger) *Builder {
	return &Builder{
		holdings:   holdings,
		valuer:     valuer,
		aggregator: aggregator,
		now:        time.Now,
		log:        log,
	}
}

// ForUser loads the user's holdings and builds a report. A persistence failure is
// logged and yields an empty report, so views render instead of failing.
func (b *Builder) ForUser(ctx context.Context, userID string) *models.Report {
	holdings, err := b.holdings.List(ctx, userID)
	if err != nil {
		b.log.WithError(err).WithField("user_id", userID).Error("Failed to load holdings, reporting an empty set")
		holdings = nil
	}
	return b.Build(ctx, userID, holdings)
}

// Build values the given holdings. The slice is only read.
func (b *Builder) Build(ctx context.Context, userID string, holdings []models.Holding) *models.Report {
	valued := b.valuer.Value(ctx, holdings)
	converted, netWorth := b.aggregator.Aggregate(ctx, valued)

	return &models.Report{
		UserID:      userID,
		Holdings:    converted,
		NetWorth:    netWorth,
		GeneratedAt: b.now().UTC(),
	}
}
