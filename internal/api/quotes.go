package api

import (
	"net/http"

	"github.com/trogers1052/networth-tracker/internal/quotes"
)

type quoteResponse struct {
	Success bool `json:"success"`
	quotes.Quote
}

type currencyResponse struct {
	Success  bool   `json:"success"`
	Symbol   string `json:"symbol"`
	Currency string `json:"currency"`
}

type conversionResponse struct {
	Success bool `json:"success"`
	quotes.Conversion
}

// GetAmount handles GET /quotes/amount?symbol=&quantity=
func (h *Handler) GetAmount(w http.ResponseWriter, r *http.Request) {
	quantity, err := quotes.ParseQuantity(r.URL.Query().Get("quantity"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	quote, err := h.quotes.Amount(r.Context(), r.URL.Query().Get("symbol"), quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, quoteResponse{Success: true, Quote: quote})
}

// GetCryptoAmount handles GET /quotes/crypto?symbol=&quantity=
func (h *Handler) GetCryptoAmount(w http.ResponseWriter, r *http.Request) {
	quantity, err := quotes.ParseQuantity(r.URL.Query().Get("quantity"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	quote, err := h.quotes.CryptoAmount(r.Context(), r.URL.Query().Get("symbol"), quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, quoteResponse{Success: true, Quote: quote})
}

// GetCurrency handles GET /quotes/currency?symbol=
func (h *Handler) GetCurrency(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	currency, err := h.quotes.Currency(r.Context(), symbol)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, currencyResponse{Success: true, Symbol: symbol, Currency: currency})
}

// GetExchange handles GET /quotes/exchange?from=&to=&amount=
func (h *Handler) GetExchange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := quotes.ParseAmount(q.Get("amount"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	conv, err := h.quotes.Exchange(r.Context(), q.Get("from"), q.Get("to"), amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, conversionResponse{Success: true, Conversion: conv})
}
