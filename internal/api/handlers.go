package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/trogers1052/networth-tracker/internal/holdings"
	"github.com/trogers1052/networth-tracker/internal/models"
	"github.com/trogers1052/networth-tracker/internal/quotes"
)

// QuoteService answers the raw lookup endpoints
type QuoteService interface {
	Amount(ctx context.Context, symbol string, quantity decimal.Decimal) (quotes.Quote, error)
	CryptoAmount(ctx context.Context, symbol string, quantity decimal.Decimal) (quotes.Quote, error)
	Currency(ctx context.Context, symbol string) (string, error)
	Exchange(ctx context.Context, from, to string, amount decimal.Decimal) (quotes.Conversion, error)
}

// HoldingService manages a user's holdings
type HoldingService interface {
	Create(ctx context.Context, userID string, in holdings.Input) (*models.Holding, error)
	Get(ctx context.Context, userID, id string) (*models.Holding, error)
	List(ctx context.Context, userID string) ([]models.Holding, error)
	Update(ctx context.Context, userID, id string, in holdings.Input) (*models.Holding, bool, error)
	Delete(ctx context.Context, userID, id string) error
}

// ReportBuilder values a user's holdings on demand
type ReportBuilder interface {
	ForUser(ctx context.Context, userID string) *models.Report
}

// SnapshotRecorder records and reads snapshots
type SnapshotRecorder interface {
	Record(ctx context.Context, report *models.Report) (*models.Snapshot, error)
	History(ctx context.Context, userID string) []models.Snapshot
	Trend(ctx context.Context, userID string) []models.TrendPoint
}

// ReportStream delivers refreshed reports for a user
type ReportStream interface {
	Subscribe(userID string) (<-chan *models.Report, func())
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	quotes    QuoteService
	holdings  HoldingService
	reports   ReportBuilder
	snapshots SnapshotRecorder
	stream    ReportStream
	log       logrus.FieldLogger
}

// NewHandler creates a new Handler
func NewHandler(quotes QuoteService, holdings HoldingService, reports ReportBuilder, snapshots SnapshotRecorder, stream ReportStream, log logrus.FieldLogger) *Handler {
	return &Handler{
		quotes:    quotes,
		holdings:  holdings,
		reports:   reports,
		snapshots: snapshots,
		stream:    stream,
		log:       log,
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
