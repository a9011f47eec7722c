package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/trogers1052/networth-tracker/internal/models"
)

// AppendSnapshot inserts a snapshot. The database assigns ID and RecordedAt.
// Snapshots are insert-only.
func (db *DB) AppendSnapshot(ctx context.Context, s *models.Snapshot) error {
	entries, err := json.Marshal(s.Entries)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot entries: %w", err)
	}

	query := `
		INSERT INTO net_worth_snapshots (user_id, snapshot_key, reporting_currency, entries)
		VALUES ($1, $2, $3, $4)
		RETURNING id, recorded_at
	`
	err = db.conn.QueryRowContext(ctx, query, s.UserID, s.Key, s.ReportingCurrency, entries).
		Scan(&s.ID, &s.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}
	return nil
}

// ListSnapshots retrieves a user's snapshots ordered by key, then insertion
func (db *DB) ListSnapshots(ctx context.Context, userID string) ([]models.Snapshot, error) {
	query := `
		SELECT id, user_id, snapshot_key, reporting_currency, entries, recorded_at
		FROM net_worth_snapshots
		WHERE user_id = $1
		ORDER BY snapshot_key, id
	`
	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []models.Snapshot{}
	for rows.Next() {
		var s models.Snapshot
		var entries []byte
		if err := rows.Scan(&s.ID, &s.UserID, &s.Key, &s.ReportingCurrency, &entries, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if err := json.Unmarshal(entries, &s.Entries); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot %d entries: %w", s.ID, err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
