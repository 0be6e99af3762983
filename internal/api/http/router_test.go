package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"goldloan-backend/internal/domain"
	"goldloan-backend/internal/ledger"
	"goldloan-backend/internal/service"
)

type testServer struct {
	customers *MockCustomerService
	interest  *MockInterestService
	notes     *MockNotificationService
	router    *mux.Router
}

func newTestServer(runs LastRunReporter) *testServer {
	ts := &testServer{
		customers: new(MockCustomerService),
		interest:  new(MockInterestService),
		notes:     new(MockNotificationService),
	}
	ts.router = NewRouter(
		NewCustomerHandler(ts.customers),
		NewInterestHandler(ts.interest, runs),
		NewNotificationHandler(ts.notes),
	)
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(nil)
	rec := ts.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCustomerHandler_Create(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		ts := newTestServer(nil)
		in := service.CustomerInput{Name: "Ravi", LentAmount: 100000, GoldWeight: 50, GoldRate: 6000}
		ts.customers.On("CreateCustomer", mock.Anything, in).
			Return(&domain.Customer{ID: "c1", Name: "Ravi", CurrentBalance: 100000}, nil).Once()

		rec := ts.do(http.MethodPost, "/api/v1/customers",
			`{"name":"Ravi","lent_amount":100000,"gold_weight":50,"gold_rate":6000}`)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp customerResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "c1", resp.Customer.ID)
		ts.customers.AssertExpectations(t)
	})

	t.Run("ValidationError", func(t *testing.T) {
		ts := newTestServer(nil)
		ts.customers.On("CreateCustomer", mock.Anything, mock.Anything).
			Return(nil, domain.NewValidationError("lent_amount", "must be greater than 0")).Once()

		rec := ts.do(http.MethodPost, "/api/v1/customers", `{"name":"Ravi"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp errorResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "lent_amount", resp.Field)
		assert.Equal(t, "lent_amount: must be greater than 0", resp.Error)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		ts := newTestServer(nil)
		rec := ts.do(http.MethodPost, "/api/v1/customers", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		ts.customers.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	})
}

func TestCustomerHandler_Historical(t *testing.T) {
	ts := newTestServer(nil)
	in := service.HistoricalCustomerInput{
		CustomerInput: service.CustomerInput{Name: "Ravi", LentAmount: 100000, LentDate: "2024-01-10"},
		AsOfDate:      "2024-01-12",
	}
	last := time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC)
	ts.customers.On("PreviewHistorical", mock.Anything, in).
		Return(&ledger.Backfill{FinalBalance: 100145.16, TotalInterest: 145.16, LastInterestDate: &last}, nil).Once()
	ts.customers.On("CreateHistoricalCustomer", mock.Anything, in).
		Return(&domain.Customer{ID: "c1", CurrentBalance: 100145.16}, nil).Once()

	body := `{"name":"Ravi","lent_amount":100000,"lent_date":"2024-01-10","as_of_date":"2024-01-12"}`

	rec := ts.do(http.MethodPost, "/api/v1/customers/historical/preview", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var preview ledger.Backfill
	decodeBody(t, rec, &preview)
	assert.Equal(t, 100145.16, preview.FinalBalance)

	rec = ts.do(http.MethodPost, "/api/v1/customers/historical", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
	ts.customers.AssertExpectations(t)
}

func TestCustomerHandler_Get(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		ts := newTestServer(nil)
		ts.customers.On("GetCustomer", mock.Anything, "c1").Return(
			&domain.Customer{ID: "c1", CurrentBalance: 100050},
			&domain.CustomerSummary{InterestEarned: 50, MonthlyProjection: 1500.75},
			nil,
		).Once()

		rec := ts.do(http.MethodGet, "/api/v1/customers/c1", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		var resp customerResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, 50.0, resp.Summary.InterestEarned)
	})

	t.Run("NotFound", func(t *testing.T) {
		ts := newTestServer(nil)
		ts.customers.On("GetCustomer", mock.Anything, "nope").Return(nil, nil, domain.ErrNotFound).Once()
		rec := ts.do(http.MethodGet, "/api/v1/customers/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCustomerHandler_List(t *testing.T) {
	ts := newTestServer(nil)
	ts.customers.On("ListCustomers", mock.Anything, "active").Return([]domain.Customer(nil), nil).Once()

	rec := ts.do(http.MethodGet, "/api/v1/customers?status=active", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCustomerHandler_RecordPayment(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"Recorded", nil, http.StatusCreated},
		{"Overpayment", domain.NewValidationError("amount", "amount exceeds current balance"), http.StatusBadRequest},
		{"Conflict", domain.ErrConcurrentUpdate, http.StatusConflict},
		{"Inconsistent", &domain.ConsistencyViolation{CustomerID: "c1", Expected: 1000, Actual: 900}, http.StatusInternalServerError},
		{"StoreDown", &domain.PersistenceError{Op: "save customer", Err: errors.New("eof")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(nil)
			in := service.PaymentInput{Amount: 400, Date: "2024-03-05"}
			if tc.err != nil {
				ts.customers.On("RecordPayment", mock.Anything, "c1", in).Return(nil, nil, tc.err).Once()
			} else {
				ts.customers.On("RecordPayment", mock.Anything, "c1", in).Return(
					&domain.Customer{ID: "c1", CurrentBalance: 600},
					&domain.Transaction{Type: domain.TransactionTypePayment, Amount: 400, Balance: 600},
					nil,
				).Once()
			}

			rec := ts.do(http.MethodPost, "/api/v1/customers/c1/payments", `{"amount":400,"date":"2024-03-05"}`)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusInternalServerError {
				assert.NotContains(t, rec.Body.String(), "eof")
			}
			ts.customers.AssertExpectations(t)
		})
	}
}

func TestCustomerHandler_ManualInterestAndStatus(t *testing.T) {
	ts := newTestServer(nil)
	ts.customers.On("ApplyManualInterest", mock.Anything, "c1").Return(
		&domain.Customer{ID: "c1", CurrentBalance: 8120},
		&domain.Transaction{Type: domain.TransactionTypeInterest, Amount: 120},
		nil,
	).Once()
	ts.customers.On("SetStatus", mock.Anything, "c1", "suspended").
		Return(&domain.Customer{ID: "c1", AccountStatus: domain.AccountStatusSuspended}, nil).Once()

	rec := ts.do(http.MethodPost, "/api/v1/customers/c1/interest", "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	var entry ledgerEntryResponse
	decodeBody(t, rec, &entry)
	assert.Equal(t, 120.0, entry.Transaction.Amount)

	rec = ts.do(http.MethodPut, "/api/v1/customers/c1/status", `{"status":"suspended"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	ts.customers.AssertExpectations(t)
}

func TestCustomerHandler_Delete(t *testing.T) {
	ts := newTestServer(nil)
	ts.customers.On("DeleteCustomer", mock.Anything, "c1").
		Return(&domain.ArchivedCustomer{ID: "a1", OriginalCustomerID: "c1"}, nil).Once()
	ts.customers.On("DeleteCustomer", mock.Anything, "c2").
		Return(nil, domain.NewValidationError("current_balance", "cannot delete a customer with an outstanding balance")).Once()

	assert.Equal(t, http.StatusOK, ts.do(http.MethodDelete, "/api/v1/customers/c1", "").Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodDelete, "/api/v1/customers/c2", "").Code)
}

func TestCustomerHandler_ListArchived(t *testing.T) {
	ts := newTestServer(nil)
	ts.customers.On("ListArchived", mock.Anything, 20).
		Return([]domain.ArchivedCustomer{{ID: "a1", DeletionReason: domain.ArchiveReasonTargetReached}}, nil).Once()

	rec := ts.do(http.MethodGet, "/api/v1/archived-customers?limit=20", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/v1/archived-customers?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ts.customers.AssertExpectations(t)
}

func TestInterestHandler_Apply(t *testing.T) {
	today := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

	t.Run("Today", func(t *testing.T) {
		ts := newTestServer(nil)
		ts.interest.On("Today").Return(today)
		ts.interest.On("ApplyDailyInterestToAll", mock.Anything, today).
			Return(&domain.BatchResult{RunID: "r1", AsOf: today, Eligible: 2, Applied: 2}, nil).Once()

		rec := ts.do(http.MethodPost, "/api/v1/interest/apply", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var result domain.BatchResult
		decodeBody(t, rec, &result)
		assert.Equal(t, 2, result.Applied)
	})

	t.Run("PastDate", func(t *testing.T) {
		ts := newTestServer(nil)
		ts.interest.On("Today").Return(today)
		ts.interest.On("ApplyDailyInterestToAll", mock.Anything, today.AddDate(0, 0, -1)).
			Return(&domain.BatchResult{RunID: "r2"}, nil).Once()

		rec := ts.do(http.MethodPost, "/api/v1/interest/apply", `{"as_of_date":"2024-06-09"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		ts.interest.AssertExpectations(t)
	})

	t.Run("FutureDate", func(t *testing.T) {
		ts := newTestServer(nil)
		ts.interest.On("Today").Return(today)

		rec := ts.do(http.MethodPost, "/api/v1/interest/apply", `{"as_of_date":"2024-06-11"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		ts.interest.AssertNotCalled(t, "ApplyDailyInterestToAll", mock.Anything, mock.Anything)
	})
}

func TestInterestHandler_LastRun(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, newTestServer(nil).do(http.MethodGet, "/api/v1/interest/last-run", "").Code)
	assert.Equal(t, http.StatusNoContent, newTestServer(stubRuns{}).do(http.MethodGet, "/api/v1/interest/last-run", "").Code)

	rec := newTestServer(stubRuns{result: &domain.BatchResult{RunID: "r9", Applied: 4}}).
		do(http.MethodGet, "/api/v1/interest/last-run", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"run_id":"r9"`)
}

func TestNotificationHandler(t *testing.T) {
	ts := newTestServer(nil)
	ts.notes.On("List", mock.Anything, 0).Return([]domain.Notification{
		{ID: "n1", Message: "Interest applied to 2 customers (daily)"},
	}, nil).Once()
	ts.notes.On("Clear", mock.Anything).Return(nil).Once()

	rec := ts.do(http.MethodGet, "/api/v1/notifications", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var notes []domain.Notification
	decodeBody(t, rec, &notes)
	require.Len(t, notes, 1)
	assert.Equal(t, "Interest applied to 2 customers (daily)", notes[0].Message)

	rec = ts.do(http.MethodDelete, "/api/v1/notifications", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	ts.notes.AssertExpectations(t)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(nil)
	rec := ts.do(http.MethodPatch, fmt.Sprintf("/api/v1/customers/%s", "c1"), "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
