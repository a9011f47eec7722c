package quotes

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Price is a normalized unit price
type Price struct {
	Symbol   string          `json:"symbol"`
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// PriceProvider resolves the current unit price of a symbol
type PriceProvider interface {
	Name() string
	Price(ctx context.Context, symbol string) (Price, error)
}

// CurrencyProvider resolves the trading currency of a ticker
type CurrencyProvider interface {
	Name() string
	Currency(ctx context.Context, symbol string) (string, error)
}

// RateProvider resolves the exchange rate of a currency pair
type RateProvider interface {
	Name() string
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// Yahoo reads equity, bond and FX quotes from a Yahoo Finance style quote endpoint.
//
//	{"quoteResponse": {"result": [{"symbol": "AAPL", "regularMarketPrice": 150.0, "currency": "USD"}]}}
type Yahoo struct {
	BaseURL string
	Client  *http.Client
}

func (y *Yahoo) Name() string { return "Yahoo Finance" }

func (y *Yahoo) quote(ctx context.Context, symbol string) (any, error) {
	addr := y.BaseURL + "/v7/finance/quote?symbols=" + url.QueryEscape(symbol)
	return jwget(ctx, y.Client, addr)
}

// Price returns regularMarketPrice and currency for symbol
func (y *Yahoo) Price(ctx context.Context, symbol string) (Price, error) {
	doc, err := y.quote(ctx, symbol)
	if err != nil {
		return Price{}, err
	}
	value, err := lookupDecimal(doc, "$.quoteResponse.result[0].regularMarketPrice")
	if err != nil {
		return Price{}, err
	}
	if value, err = positive(value); err != nil {
		return Price{}, err
	}
	// currency is informative here, a missing one does not invalidate the price
	currency, _ := lookupString(doc, "$.quoteResponse.result[0].currency")
	if reported, err := lookupString(doc, "$.quoteResponse.result[0].symbol"); err == nil {
		symbol = reported
	}
	return Price{Symbol: symbol, Value: value, Currency: currency}, nil
}

// Rate returns the FROM->TO rate using the "{FROM}{TO}=X" pair symbol
func (y *Yahoo) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	doc, err := y.quote(ctx, from+to+"=X")
	if err != nil {
		return decimal.Zero, err
	}
	rate, err := lookupDecimal(doc, "$.quoteResponse.result[0].regularMarketPrice")
	if err != nil {
		return decimal.Zero, err
	}
	return positive(rate)
}

// Coinbase reads spot prices from a Coinbase style endpoint. Prices are strings.
//
//	{"data": {"base": "BTC", "currency": "USD", "amount": "64012.55"}}
type Coinbase struct {
	BaseURL string
	// QuoteCurrency is the currency every spot price is requested in
	QuoteCurrency string
	Client        *http.Client
}

func (c *Coinbase) Name() string { return "Coinbase" }

func (c *Coinbase) Price(ctx context.Context, symbol string) (Price, error) {
	addr := fmt.Sprintf("%s/v2/prices/%s-%s/spot", c.BaseURL, url.PathEscape(symbol), url.PathEscape(c.QuoteCurrency))
	doc, err := jwget(ctx, c.Client, addr)
	if err != nil {
		return Price{}, err
	}
	value, err := lookupDecimal(doc, "$.data.amount")
	if err != nil {
		return Price{}, err
	}
	if value, err = positive(value); err != nil {
		return Price{}, err
	}
	return Price{Symbol: symbol, Value: value, Currency: c.QuoteCurrency}, nil
}

// TwelveData reads the trading currency of a ticker from a Twelve Data style quote endpoint.
//
//	{"symbol": "AAPL", "currency": "USD", ...} or {"code": 400, "status": "error", "message": "..."}
type TwelveData struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func (t *TwelveData) Name() string { return "Twelve Data" }

func (t *TwelveData) Currency(ctx context.Context, symbol string) (string, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("apikey", t.APIKey)
	doc, err := jwget(ctx, t.Client, t.BaseURL+"/quote?"+params.Encode())
	if err != nil {
		return "", err
	}
	if status, err := lookupString(doc, "$.status"); err == nil && status == "error" {
		message, _ := lookupString(doc, "$.message")
		return "", fmt.Errorf("upstream error: %s", message)
	}
	currency, err := lookupString(doc, "$.currency")
	if err != nil {
		return "", err
	}
	return strings.ToUpper(currency), nil
}
