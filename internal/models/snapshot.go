package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotKeyLayout formats a snapshot key with minute resolution (YYYYMMDDHHmm).
// Lexicographic order on keys is chronological order.
const SnapshotKeyLayout = "200601021504"

// SnapshotEntry is the denormalized valuation of one holding inside a snapshot
type SnapshotEntry struct {
	Symbol      string          `json:"symbol"`
	Type        AssetType       `json:"type"`
	Institution string          `json:"institution"`
	Currency    string          `json:"currency"`
	Quantity    decimal.Decimal `json:"quantity"`
	Value       decimal.Decimal `json:"value"`
}

// Snapshot is an immutable, append-only record of a user's valuation at one point in time
type Snapshot struct {
	ID                int64           `json:"id"`
	UserID            string          `json:"user_id"`
	Key               string          `json:"key"`
	ReportingCurrency string          `json:"reporting_currency"`
	Entries           []SnapshotEntry `json:"entries"`
	RecordedAt        time.Time       `json:"recorded_at"`
}

// Total sums the entry values, rounded to cents
func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.Entries {
		total = total.Add(e.Value)
	}
	return total.Round(2)
}

// TrendPoint is one point of the net-worth-over-time series
type TrendPoint struct {
	Key   string          `json:"key"`
	Total decimal.Decimal `json:"total"`
}
