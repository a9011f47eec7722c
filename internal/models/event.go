package models

import "time"

// Holding event type constants
const (
	EventHoldingCreated   = "HOLDING_CREATED"
	EventHoldingUpdated   = "HOLDING_UPDATED"
	EventHoldingDeleted   = "HOLDING_DELETED"
	EventSnapshotRecorded = "SNAPSHOT_RECORDED"
)

// HoldingEvent represents a change to a user's holdings
type HoldingEvent struct {
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id"`
	HoldingID string    `json:"holding_id"`
	Holding   *Holding  `json:"holding,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SnapshotEvent is published after a snapshot has been appended
type SnapshotEvent struct {
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id"`
	Key       string    `json:"key"`
	Snapshot  *Snapshot `json:"snapshot,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
