package http

import (
	"net/http"
	"time"

	"goldloan-backend/internal/domain"
	"goldloan-backend/internal/interest"
	"goldloan-backend/internal/service"
)

// LastRunReporter exposes the outcome of the most recent scheduled run.
type LastRunReporter interface {
	LastResult() *domain.BatchResult
}

type InterestHandler struct {
	interestSvc service.InterestService
	runs        LastRunReporter
}

// NewInterestHandler builds the handler. runs may be nil when the scheduler is
// not embedded in this process.
func NewInterestHandler(interestSvc service.InterestService, runs LastRunReporter) *InterestHandler {
	return &InterestHandler{interestSvc: interestSvc, runs: runs}
}

type applyRequest struct {
	AsOfDate string `json:"as_of_date"`
}

// Apply runs the daily batch synchronously. as_of_date may only name today or
// an earlier day.
func (h *InterestHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	today := h.interestSvc.Today()
	asOf := today
	if req.AsOfDate != "" {
		d, err := interest.ParseDate(req.AsOfDate, time.UTC)
		if err != nil {
			writeError(w, r, domain.NewValidationError("as_of_date", err.Error()))
			return
		}
		if d.After(today) {
			writeError(w, r, domain.NewValidationError("as_of_date", "cannot be in the future"))
			return
		}
		asOf = d
	}

	result, err := h.interestSvc.ApplyDailyInterestToAll(r.Context(), asOf)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *InterestHandler) LastRun(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "scheduler is not running in this process"})
		return
	}
	result := h.runs.LastResult()
	if result == nil {
		writeJSON(w, http.StatusNoContent, nil)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
