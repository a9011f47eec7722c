package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuedHolding is a holding together with its current valuation.
// It is recomputed on every refresh and never persisted.
type ValuedHolding struct {
	Holding
	Amount          decimal.Decimal `json:"amount"`
	Display         string          `json:"display"`
	Available       bool            `json:"available"`
	ReportingAmount decimal.Decimal `json:"reporting_amount"`
}

// ChartDataPoint is one slice of a net-worth breakdown
type ChartDataPoint struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
	Color string          `json:"color"`
}

// NetWorth holds the grand total and the three breakdowns, all in the reporting currency
type NetWorth struct {
	ReportingCurrency string           `json:"reporting_currency"`
	Total             decimal.Decimal  `json:"total"`
	ByType            []ChartDataPoint `json:"by_type"`
	ByInstitution     []ChartDataPoint `json:"by_institution"`
	ByCurrency        []ChartDataPoint `json:"by_currency"`
}

// Report is the outcome of one full valuation pass for a user
type Report struct {
	UserID      string          `json:"user_id"`
	Holdings    []ValuedHolding `json:"holdings"`
	NetWorth    NetWorth        `json:"net_worth"`
	GeneratedAt time.Time       `json:"generated_at"`
}
