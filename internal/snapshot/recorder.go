package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/trogers1052/networth-tracker/internal/models"
)

// Store appends and lists snapshots. Snapshots are never updated once appended.
type Store interface {
	AppendSnapshot(ctx context.Context, s *models.Snapshot) error
	ListSnapshots(ctx context.Context, userID string) ([]models.Snapshot, error)
}

// Publisher announces recorded snapshots
type Publisher interface {
	PublishSnapshotEvent(ctx context.Context, event models.SnapshotEvent) error
}

// Recorder turns reports into timestamp-keyed snapshots
type Recorder struct {
	store     Store
	publisher Publisher
	loc       *time.Location
	now       func() time.Time
	log       logrus.FieldLogger
}

// NewRecorder creates a Recorder. Keys are computed in loc; publisher may be nil.
func NewRecorder(store Store, publisher Publisher, loc *time.Location, log logrus.FieldLogger) *Recorder {
	if loc == nil {
		loc = time.UTC
	}
	return &Recorder{
		store:     store,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
		log:       log,
	}
}

// Key formats t as the minute-resolution snapshot key in loc
func Key(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(models.SnapshotKeyLayout)
}

// Record appends a snapshot of report keyed by the current minute. Calling it twice in
// the same minute appends two records with the same key.
func (r *Recorder) Record(ctx context.Context, report *models.Report) (*models.Snapshot, error) {
	if report == nil {
		return nil, errors.New("report is required")
	}

	s := &models.Snapshot{
		UserID:            report.UserID,
		Key:               Key(r.now(), r.loc),
		ReportingCurrency: report.NetWorth.ReportingCurrency,
		Entries:           make([]models.SnapshotEntry, 0, len(report.Holdings)),
	}
	for _, vh := range report.Holdings {
		s.Entries = append(s.Entries, models.SnapshotEntry{
			Symbol:      vh.Symbol,
			Type:        vh.Type,
			Institution: vh.Institution,
			Currency:    vh.Currency,
			Quantity:    vh.Quantity,
			Value:       vh.ReportingAmount.Round(2),
		})
	}

	if err := r.store.AppendSnapshot(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to append snapshot: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"user_id": s.UserID,
		"key":     s.Key,
		"entries": len(s.Entries),
	}).Info("Snapshot recorded")

	if r.publisher != nil {
		event := models.SnapshotEvent{
			EventType: models.EventSnapshotRecorded,
			UserID:    s.UserID,
			Key:       s.Key,
			Snapshot:  s,
			Timestamp: s.RecordedAt,
		}
		if err := r.publisher.PublishSnapshotEvent(ctx, event); err != nil {
			r.log.WithError(err).WithField("user_id", s.UserID).Warn("Failed to publish snapshot event")
		}
	}

	return s, nil
}

// History returns the user's snapshots ascending by key, ties in insertion order.
// A storage failure is logged and reads as no history.
func (r *Recorder) History(ctx context.Context, userID string) []models.Snapshot {
	snapshots, err := r.store.ListSnapshots(ctx, userID)
	if err != nil {
		r.log.WithError(err).WithField("user_id", userID).Error("Failed to list snapshots, reporting an empty history")
		return []models.Snapshot{}
	}
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].Key < snapshots[j].Key
	})
	return snapshots
}

// Trend returns one point per snapshot in history order
func (r *Recorder) Trend(ctx context.Context, userID string) []models.TrendPoint {
	history := r.History(ctx, userID)
	points := make([]models.TrendPoint, 0, len(history))
	for _, s := range history {
		points = append(points, models.TrendPoint{Key: s.Key, Total: s.Total()})
	}
	return points
}
