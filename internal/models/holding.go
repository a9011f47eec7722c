package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetType classifies a holding. The string value is what gets stored and sent over the wire.
type AssetType string

// Asset type constants
const (
	AssetTypeStock       AssetType = "Stock"
	AssetTypeBonds       AssetType = "Bonds"
	AssetTypeCrypto      AssetType = "Crypto"
	AssetTypeCash        AssetType = "Cash"
	AssetTypeBankDeposit AssetType = "Deposit"
	AssetTypePension     AssetType = "Pension"
)

// AssetTypes lists every supported asset type in display order
var AssetTypes = []AssetType{
	AssetTypeStock,
	AssetTypeBonds,
	AssetTypeCrypto,
	AssetTypeCash,
	AssetTypeBankDeposit,
	AssetTypePension,
}

// Valid reports whether t is one of the supported asset types
func (t AssetType) Valid() bool {
	for _, known := range AssetTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Priced reports whether holdings of this type are valued from a market quote.
// Cash-like types carry their amount directly in Quantity.
func (t AssetType) Priced() bool {
	return t == AssetTypeStock || t == AssetTypeBonds || t == AssetTypeCrypto
}

// Holding is a single user-recorded asset entry.
// For priced types Symbol is a ticker and Quantity a number of units; for cash-like
// types Symbol is a currency code and Quantity the amount held.
type Holding struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Institution string          `json:"institution"`
	Type        AssetType       `json:"type"`
	Symbol      string          `json:"symbol"`
	Quantity    decimal.Decimal `json:"quantity"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// SameContent reports whether two holdings describe the same position,
// ignoring identity, resolved currency and timestamps.
func (h Holding) SameContent(o Holding) bool {
	return h.Institution == o.Institution &&
		h.Type == o.Type &&
		h.Symbol == o.Symbol &&
		h.Quantity.Equal(o.Quantity)
}
