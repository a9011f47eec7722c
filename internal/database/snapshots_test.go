package database

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/networth-tracker/internal/models"
)

func TestSnapshotsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := setupDB(t)
	ctx := context.Background()

	newSnapshot := func(userID, key, value string) *models.Snapshot {
		return &models.Snapshot{
			UserID:            userID,
			Key:               key,
			ReportingCurrency: "USD",
			Entries: []models.SnapshotEntry{{
				Symbol:      "AAPL",
				Type:        models.AssetTypeStock,
				Institution: "Schwab",
				Currency:    "USD",
				Quantity:    decimal.NewFromInt(10),
				Value:       decimal.RequireFromString(value),
			}},
		}
	}

	t.Run("AppendSnapshot assigns id and recorded_at", func(t *testing.T) {
		truncate(t, testDB)

		s := newSnapshot("user-1", "202401010000", "1500.00")
		require.NoError(t, testDB.AppendSnapshot(ctx, s))
		assert.NotZero(t, s.ID)
		assert.False(t, s.RecordedAt.IsZero())

		list, err := testDB.ListSnapshots(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Len(t, list[0].Entries, 1)
		assert.Equal(t, "AAPL", list[0].Entries[0].Symbol)
		assert.True(t, list[0].Entries[0].Value.Equal(decimal.NewFromInt(1500)))
	})

	t.Run("same key appends two records in insertion order", func(t *testing.T) {
		truncate(t, testDB)

		first := newSnapshot("user-1", "202406301200", "100")
		second := newSnapshot("user-1", "202406301200", "200")
		require.NoError(t, testDB.AppendSnapshot(ctx, first))
		require.NoError(t, testDB.AppendSnapshot(ctx, second))

		list, err := testDB.ListSnapshots(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, first.ID, list[0].ID)
		assert.Equal(t, second.ID, list[1].ID)
	})

	t.Run("ListSnapshots orders by key and scopes by user", func(t *testing.T) {
		truncate(t, testDB)

		for _, key := range []string{"202403011000", "202312312359", "202401150830"} {
			require.NoError(t, testDB.AppendSnapshot(ctx, newSnapshot("user-1", key, "1")))
		}
		require.NoError(t, testDB.AppendSnapshot(ctx, newSnapshot("user-2", "202001010000", "1")))

		list, err := testDB.ListSnapshots(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "202312312359", list[0].Key)
		assert.Equal(t, "202401150830", list[1].Key)
		assert.Equal(t, "202403011000", list[2].Key)
	})
}
