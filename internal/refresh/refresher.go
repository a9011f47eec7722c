package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/trogers1052/networth-tracker/internal/models"
)

// Builder produces a fresh report for a user
type Builder interface {
	ForUser(ctx context.Context, userID string) *models.Report
}

// Feed delivers holding change notifications for a user
type Feed interface {
	Subscribe(userID string) (<-chan models.HoldingEvent, func())
}

// Refresher keeps one user's report fresh. A cycle runs at start, on every tick and on
// every holding change. Starting a cycle cancels the one in flight, and only the result
// of the latest cycle is delivered.
type Refresher struct {
	userID   string
	builder  Builder
	feed     Feed
	interval time.Duration
	onReport func(*models.Report)
	log      logrus.FieldLogger
}

// NewRefresher creates a Refresher for one user. onReport receives every fresh report.
func NewRefresher(userID string, builder Builder, feed Feed, interval time.Duration, onReport func(*models.Report), log logrus.FieldLogger) *Refresher {
	return &Refresher{
		userID:   userID,
		builder:  builder,
		feed:     feed,
		interval: interval,
		onReport: onReport,
		log:      log.WithField("user_id", userID),
	}
}

type cycleResult struct {
	generation uint64
	report     *models.Report
}

// Run refreshes until ctx is cancelled. It returns once every in-flight cycle has ended,
// and never calls onReport after ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	events, unsubscribe := r.feed.Subscribe(r.userID)
	defer unsubscribe()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var (
		wg          sync.WaitGroup
		generation  uint64
		cancelCycle context.CancelFunc = func() {}
		results     = make(chan cycleResult)
	)
	defer wg.Wait()
	defer func() { cancelCycle() }()

	start := func(reason string) {
		cancelCycle()
		generation++
		cycleCtx, cancel := context.WithCancel(ctx)
		cancelCycle = cancel
		gen := generation

		r.log.WithFields(logrus.Fields{"cycle": gen, "reason": reason}).Debug("Starting refresh cycle")
		wg.Add(1)
		go func() {
			defer wg.Done()
			report := r.builder.ForUser(cycleCtx, r.userID)
			if cycleCtx.Err() != nil {
				return
			}
			select {
			case results <- cycleResult{generation: gen, report: report}:
			case <-ctx.Done():
			}
		}()
	}

	start("initial")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start("tick")
		case _, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			start("holding changed")
		case res := <-results:
			if res.generation != generation {
				r.log.WithField("cycle", res.generation).Debug("Discarding stale refresh result")
				continue
			}
			if ctx.Err() != nil {
				return
			}
			r.onReport(res.report)
		}
	}
}
