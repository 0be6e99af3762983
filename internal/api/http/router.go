// Package http exposes the ledger operations as a JSON API for the operator
// console and for manually triggering the daily interest run.
package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"goldloan-backend/internal/logger"
)

// NewRouter mounts every handler under /api/v1 plus an unauthenticated /health.
func NewRouter(customers *CustomerHandler, interest *InterestHandler, notes *NotificationHandler) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger)

	r.HandleFunc("/health", health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/customers", customers.List).Methods(http.MethodGet)
	api.HandleFunc("/customers", customers.Create).Methods(http.MethodPost)
	api.HandleFunc("/customers/historical", customers.CreateHistorical).Methods(http.MethodPost)
	api.HandleFunc("/customers/historical/preview", customers.PreviewHistorical).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id}", customers.Get).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", customers.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/customers/{id}/transactions", customers.Transactions).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}/payments", customers.RecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id}/interest", customers.ApplyManualInterest).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id}/status", customers.SetStatus).Methods(http.MethodPut)
	api.HandleFunc("/archived-customers", customers.ListArchived).Methods(http.MethodGet)

	api.HandleFunc("/interest/apply", interest.Apply).Methods(http.MethodPost)
	api.HandleFunc("/interest/last-run", interest.LastRun).Methods(http.MethodGet)

	api.HandleFunc("/notifications", notes.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications", notes.Clear).Methods(http.MethodDelete)

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.DebugContext(r.Context(), "HTTP request", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	})
}
