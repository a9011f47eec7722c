package quotes

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/trogers1052/networth-tracker/internal/config"
	"github.com/trogers1052/networth-tracker/internal/models"
)

// SupportedCrypto is the allow-list of crypto symbols the spot provider is queried for
var SupportedCrypto = []string{"BTC", "ETH", "SOL", "XRP", "ADA", "DOGE", "MATIC", "LTC", "BCH"}

// Quote is the valuation of a quantity of a priced asset
type Quote struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Source   string          `json:"source"`
}

// Conversion is the result of an exchange lookup
type Conversion struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Rate      decimal.Decimal `json:"rate"`
	Converted decimal.Decimal `json:"converted"`
	Source    string          `json:"source"`
}

// Gateway resolves prices, currencies and exchange rates. Providers are chosen by asset
// class: Equities for stocks and bonds, Crypto for crypto, Currencies for ticker currency
// lookups and Rates for FX pairs.
type Gateway struct {
	Equities   PriceProvider
	Crypto     PriceProvider
	Currencies CurrencyProvider
	Rates      RateProvider

	// CryptoQuoteCurrency is forced on every crypto quote
	CryptoQuoteCurrency string

	// Cache is optional; only successful lookups are stored
	Cache    Cache
	CacheTTL time.Duration

	Log logrus.FieldLogger
}

// NewGateway wires the HTTP providers described by cfg
func NewGateway(cfg config.UpstreamConfig, cryptoQuoteCurrency string, cache Cache, cacheTTL time.Duration, log logrus.FieldLogger) *Gateway {
	client := &http.Client{Timeout: cfg.Timeout}
	yahoo := &Yahoo{BaseURL: cfg.YahooBaseURL, Client: client}
	return &Gateway{
		Equities:            yahoo,
		Crypto:              &Coinbase{BaseURL: cfg.CoinbaseBaseURL, QuoteCurrency: cryptoQuoteCurrency, Client: client},
		Currencies:          &TwelveData{BaseURL: cfg.TwelveDataBaseURL, APIKey: cfg.TwelveDataKey, Client: client},
		Rates:               yahoo,
		CryptoQuoteCurrency: cryptoQuoteCurrency,
		Cache:               cache,
		CacheTTL:            cacheTTL,
		Log:                 log,
	}
}

// ParseQuantity validates a raw quantity parameter: present, finite and positive
func ParseQuantity(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, invalid("quantity", "missing")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, invalid("quantity", "not a number")
	}
	q, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		q = decimal.NewFromFloat(f)
	}
	if !q.IsPositive() {
		return decimal.Zero, invalid("quantity", "must be positive")
	}
	return q, nil
}

// ParseAmount validates a raw amount parameter: present and finite, any sign
func ParseAmount(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, invalid("amount", "missing")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, invalid("amount", "not a number")
	}
	a, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		a = decimal.NewFromFloat(f)
	}
	return a, nil
}

// Amount values quantity units of an equity or bond
func (g *Gateway) Amount(ctx context.Context, symbol string, quantity decimal.Decimal) (Quote, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Quote{}, invalid("symbol", "missing")
	}
	if !quantity.IsPositive() {
		return Quote{}, invalid("quantity", "must be positive")
	}

	price, err := g.price(ctx, g.Equities, symbol)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Symbol:   price.Symbol,
		Quantity: quantity,
		Price:    price.Value,
		Amount:   price.Value.Mul(quantity),
		Currency: price.Currency,
		Source:   g.Equities.Name(),
	}, nil
}

// CryptoAmount values quantity units of an allow-listed crypto asset.
// The currency is always CryptoQuoteCurrency, whatever upstream reports.
func (g *Gateway) CryptoAmount(ctx context.Context, symbol string, quantity decimal.Decimal) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Quote{}, invalid("symbol", "missing")
	}
	if !SupportedCryptoSymbol(symbol) {
		return Quote{}, &unsupportedError{symbol: symbol}
	}
	if !quantity.IsPositive() {
		return Quote{}, invalid("quantity", "must be positive")
	}

	price, err := g.price(ctx, g.Crypto, symbol)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price.Value,
		Amount:   price.Value.Mul(quantity),
		Currency: g.CryptoQuoteCurrency,
		Source:   g.Crypto.Name(),
	}, nil
}

// Currency returns the trading currency of a ticker
func (g *Gateway) Currency(ctx context.Context, symbol string) (string, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return "", invalid("symbol", "missing")
	}

	key := "currency:" + symbol
	var cached string
	if g.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	currency, err := g.Currencies.Currency(ctx, symbol)
	if err != nil {
		return "", unavailable(g.Currencies.Name(), symbol, err)
	}
	g.cacheSet(ctx, key, currency)
	return currency, nil
}

// Exchange converts amount from one currency to another at the current pair rate.
// It always asks upstream; callers wanting the identity shortcut use currency.Normalizer.
func (g *Gateway) Exchange(ctx context.Context, from, to string, amount decimal.Decimal) (Conversion, error) {
	from, to = strings.ToUpper(strings.TrimSpace(from)), strings.ToUpper(strings.TrimSpace(to))
	if from == "" {
		return Conversion{}, invalid("from", "missing")
	}
	if to == "" {
		return Conversion{}, invalid("to", "missing")
	}

	key := "fx:" + from + to
	var rate decimal.Decimal
	if !g.cacheGet(ctx, key, &rate) {
		var err error
		rate, err = g.Rates.Rate(ctx, from, to)
		if err != nil {
			return Conversion{}, unavailable(g.Rates.Name(), from+"/"+to, err)
		}
		g.cacheSet(ctx, key, rate)
	}

	return Conversion{
		From:      from,
		To:        to,
		Amount:    amount,
		Rate:      rate,
		Converted: rate.Mul(amount),
		Source:    g.Rates.Name(),
	}, nil
}

// ResolveCurrency decides the currency stored with a holding at write time.
// Stocks and bonds ask upstream and store an empty currency when that fails.
func (g *Gateway) ResolveCurrency(ctx context.Context, assetType models.AssetType, symbol string) string {
	switch assetType {
	case models.AssetTypeCrypto:
		return g.CryptoQuoteCurrency
	case models.AssetTypeStock, models.AssetTypeBonds:
		currency, err := g.Currency(ctx, symbol)
		if err != nil {
			g.logger().WithError(err).WithField("symbol", symbol).Warn("Could not resolve holding currency")
			return ""
		}
		return currency
	default:
		return strings.ToUpper(strings.TrimSpace(symbol))
	}
}

// SupportedCryptoSymbol reports whether symbol is on the crypto allow-list
func SupportedCryptoSymbol(symbol string) bool {
	for _, s := range SupportedCrypto {
		if s == symbol {
			return true
		}
	}
	return false
}

func (g *Gateway) price(ctx context.Context, provider PriceProvider, symbol string) (Price, error) {
	key := "price:" + provider.Name() + ":" + symbol
	var cached Price
	if g.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	price, err := provider.Price(ctx, symbol)
	if err != nil {
		return Price{}, unavailable(provider.Name(), symbol, err)
	}
	g.cacheSet(ctx, key, price)
	return price, nil
}

func (g *Gateway) cacheGet(ctx context.Context, key string, dst any) bool {
	if g.Cache == nil {
		return false
	}
	hit, err := g.Cache.Get(ctx, key, dst)
	if err != nil {
		g.logger().WithError(err).WithField("key", key).Warn("Quote cache read failed")
		return false
	}
	return hit
}

func (g *Gateway) cacheSet(ctx context.Context, key string, value any) {
	if g.Cache == nil || g.CacheTTL <= 0 {
		return
	}
	if err := g.Cache.Set(ctx, key, value, g.CacheTTL); err != nil {
		g.logger().WithError(err).WithField("key", key).Warn("Quote cache write failed")
	}
}

func (g *Gateway) logger() logrus.FieldLogger {
	if g.Log == nil {
		return logrus.StandardLogger()
	}
	return g.Log
}

type unsupportedError struct {
	symbol string
}

func (e *unsupportedError) Error() string {
	return "unsupported symbol: " + e.symbol
}

func (e *unsupportedError) Unwrap() error {
	return ErrUnsupportedSymbol
}
