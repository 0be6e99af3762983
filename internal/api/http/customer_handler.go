package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"goldloan-backend/internal/domain"
	"goldloan-backend/internal/service"
)

type CustomerHandler struct {
	customerSvc service.CustomerService
}

func NewCustomerHandler(customerSvc service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerSvc: customerSvc}
}

type customerResponse struct {
	Customer *domain.Customer        `json:"customer"`
	Summary  *domain.CustomerSummary `json:"summary,omitempty"`
}

type ledgerEntryResponse struct {
	Customer    *domain.Customer    `json:"customer"`
	Transaction *domain.Transaction `json:"transaction"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customerSvc.ListCustomers(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if customers == nil {
		customers = []domain.Customer{}
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CustomerInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.customerSvc.CreateCustomer(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, customerResponse{Customer: c})
}

func (h *CustomerHandler) CreateHistorical(w http.ResponseWriter, r *http.Request) {
	var in service.HistoricalCustomerInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.customerSvc.CreateHistoricalCustomer(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, customerResponse{Customer: c})
}

func (h *CustomerHandler) PreviewHistorical(w http.ResponseWriter, r *http.Request) {
	var in service.HistoricalCustomerInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.customerSvc.PreviewHistorical(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, summary, err := h.customerSvc.GetCustomer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customerResponse{Customer: c, Summary: summary})
}

func (h *CustomerHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.customerSvc.ListTransactions(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *CustomerHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var in service.PaymentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	c, tx, err := h.customerSvc.RecordPayment(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ledgerEntryResponse{Customer: c, Transaction: tx})
}

func (h *CustomerHandler) ApplyManualInterest(w http.ResponseWriter, r *http.Request) {
	c, tx, err := h.customerSvc.ApplyManualInterest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ledgerEntryResponse{Customer: c, Transaction: tx})
}

func (h *CustomerHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.customerSvc.SetStatus(r.Context(), mux.Vars(r)["id"], req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customerResponse{Customer: c})
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	archived, err := h.customerSvc.DeleteCustomer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, archived)
}

func (h *CustomerHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	archived, err := h.customerSvc.ListArchived(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if archived == nil {
		archived = []domain.ArchivedCustomer{}
	}
	writeJSON(w, http.StatusOK, archived)
}

// queryLimit parses the optional ?limit= parameter; 0 means the service default.
func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError("limit", "must be a non-negative integer")
	}
	return n, nil
}
