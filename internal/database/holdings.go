package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trogers1052/networth-tracker/internal/models"
)

const holdingColumns = `id, user_id, institution, asset_type, symbol, quantity, currency, created_at, updated_at`

// CreateHolding inserts a new holding, assigning its ID when empty
func (db *DB) CreateHolding(ctx context.Context, h *models.Holding) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	query := `
		INSERT INTO holdings (` + holdingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	now := time.Now().UTC()
	_, err := db.conn.ExecContext(ctx, query,
		h.ID, h.UserID, h.Institution, string(h.Type), h.Symbol, h.Quantity, h.Currency,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create holding: %w", err)
	}
	h.CreatedAt = now
	h.UpdatedAt = now
	return nil
}

// GetHolding retrieves one of the user's holdings
func (db *DB) GetHolding(ctx context.Context, userID, id string) (*models.Holding, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("holding %s: %w", id, ErrNotFound)
	}
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = $1 AND id = $2`

	h, err := scanHolding(db.conn.QueryRowContext(ctx, query, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("holding %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	return h, nil
}

// ListHoldings retrieves every holding of a user in creation order
func (db *DB) ListHoldings(ctx context.Context, userID string) ([]models.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = $1 ORDER BY created_at, id`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	holdings := []models.Holding{}
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, *h)
	}
	return holdings, rows.Err()
}

// UpdateHolding overwrites the editable fields of a holding
func (db *DB) UpdateHolding(ctx context.Context, h *models.Holding) error {
	query := `
		UPDATE holdings
		SET institution = $3, asset_type = $4, symbol = $5, quantity = $6, currency = $7, updated_at = $8
		WHERE user_id = $1 AND id = $2
	`
	now := time.Now().UTC()
	result, err := db.conn.ExecContext(ctx, query,
		h.UserID, h.ID, h.Institution, string(h.Type), h.Symbol, h.Quantity, h.Currency, now,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}
	if err := expectOne(result, h.ID); err != nil {
		return err
	}
	h.UpdatedAt = now
	return nil
}

// DeleteHolding removes one of the user's holdings
func (db *DB) DeleteHolding(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("holding %s: %w", id, ErrNotFound)
	}
	result, err := db.conn.ExecContext(ctx, `DELETE FROM holdings WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return expectOne(result, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHolding(row rowScanner) (*models.Holding, error) {
	var h models.Holding
	var assetType string
	err := row.Scan(
		&h.ID, &h.UserID, &h.Institution, &assetType, &h.Symbol, &h.Quantity, &h.Currency,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	h.Type = models.AssetType(assetType)
	return &h, nil
}

func expectOne(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("holding %s: %w", id, ErrNotFound)
	}
	return nil
}
