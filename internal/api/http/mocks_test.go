package http

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"goldloan-backend/internal/domain"
	"goldloan-backend/internal/ledger"
	"goldloan-backend/internal/service"
)

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, in service.CustomerInput) (*domain.Customer, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerService) CreateHistoricalCustomer(ctx context.Context, in service.HistoricalCustomerInput) (*domain.Customer, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerService) PreviewHistorical(ctx context.Context, in service.HistoricalCustomerInput) (*ledger.Backfill, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Backfill), args.Error(1)
}
func (m *MockCustomerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, *domain.CustomerSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Customer), args.Get(1).(*domain.CustomerSummary), args.Error(2)
}
func (m *MockCustomerService) ListCustomers(ctx context.Context, status string) ([]domain.Customer, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Customer), args.Error(1)
}
func (m *MockCustomerService) ListTransactions(ctx context.Context, id string) ([]domain.Transaction, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *MockCustomerService) RecordPayment(ctx context.Context, id string, in service.PaymentInput) (*domain.Customer, *domain.Transaction, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Customer), args.Get(1).(*domain.Transaction), args.Error(2)
}
func (m *MockCustomerService) ApplyManualInterest(ctx context.Context, id string) (*domain.Customer, *domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Customer), args.Get(1).(*domain.Transaction), args.Error(2)
}
func (m *MockCustomerService) SetStatus(ctx context.Context, id, status string) (*domain.Customer, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerService) DeleteCustomer(ctx context.Context, id string) (*domain.ArchivedCustomer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArchivedCustomer), args.Error(1)
}
func (m *MockCustomerService) ListArchived(ctx context.Context, limit int) ([]domain.ArchivedCustomer, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.ArchivedCustomer), args.Error(1)
}

type MockInterestService struct {
	mock.Mock
}

func (m *MockInterestService) ApplyDailyInterestToAll(ctx context.Context, asOf time.Time) (*domain.BatchResult, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchResult), args.Error(1)
}
func (m *MockInterestService) Today() time.Time {
	return m.Called().Get(0).(time.Time)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) List(ctx context.Context, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Notification), args.Error(1)
}
func (m *MockNotificationService) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type stubRuns struct {
	result *domain.BatchResult
}

func (s stubRuns) LastResult() *domain.BatchResult { return s.result }
