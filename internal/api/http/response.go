package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"goldloan-backend/internal/domain"
	"goldloan-backend/internal/logger"
)

// maxBodyBytes leaves room for ten base64-encoded 5MB images.
const maxBodyBytes = 70 << 20

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto status codes. Anything unrecognised is a
// 500 and its detail stays in the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	var cv *domain.ConsistencyViolation
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrConcurrentUpdate):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.As(err, &cv):
		logger.ErrorContext(r.Context(), "Ledger inconsistency", "path", r.URL.Path, "customerID", cv.CustomerID,
			"expected", cv.Expected, "actual", cv.Actual)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "ledger inconsistency detected"})
	default:
		logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return domain.NewValidationError("", "invalid JSON body: "+err.Error())
	}
	return nil
}
