package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger(handler.log))

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Quote lookups
	api.HandleFunc("/quotes/amount", handler.GetAmount).Methods("GET")
	api.HandleFunc("/quotes/crypto", handler.GetCryptoAmount).Methods("GET")
	api.HandleFunc("/quotes/currency", handler.GetCurrency).Methods("GET")
	api.HandleFunc("/quotes/exchange", handler.GetExchange).Methods("GET")

	// Holdings
	user := api.PathPrefix("/users/{user}").Subrouter()
	user.HandleFunc("/holdings", handler.ListHoldings).Methods("GET")
	user.HandleFunc("/holdings", handler.CreateHolding).Methods("POST")
	user.HandleFunc("/holdings/{id}", handler.GetHolding).Methods("GET")
	user.HandleFunc("/holdings/{id}", handler.UpdateHolding).Methods("PUT")
	user.HandleFunc("/holdings/{id}", handler.DeleteHolding).Methods("DELETE")

	// Views
	user.HandleFunc("/valuations", handler.GetValuations).Methods("GET")
	user.HandleFunc("/networth", handler.GetNetWorth).Methods("GET")
	user.HandleFunc("/snapshots", handler.ListSnapshots).Methods("GET")
	user.HandleFunc("/snapshots", handler.CreateSnapshot).Methods("POST")
	user.HandleFunc("/trend", handler.GetTrend).Methods("GET")
	user.HandleFunc("/stream", handler.StreamReports).Methods("GET")

	return r
}
