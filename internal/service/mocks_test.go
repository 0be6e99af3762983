package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"goldloan-backend/internal/domain"
	"goldloan-backend/internal/repository"
)

// MockCustomerRepo returns copies of the customers it was primed with, so each
// call sees the stored state rather than a previous caller's mutations.
type MockCustomerRepo struct {
	mock.Mock
}

func (m *MockCustomerRepo) FindEligibleForInterest(ctx context.Context, asOf time.Time) ([]domain.Customer, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]domain.Customer), args.Error(1)
}
func (m *MockCustomerRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	c := *args.Get(0).(*domain.Customer)
	return &c, args.Error(1)
}
func (m *MockCustomerRepo) List(ctx context.Context, status domain.AccountStatus) ([]domain.Customer, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Customer), args.Error(1)
}
func (m *MockCustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	args := m.Called(ctx, c)
	if c.ID == "" {
		c.ID = "generated-id"
	}
	return args.Error(0)
}
func (m *MockCustomerRepo) Save(ctx context.Context, c *domain.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockCustomerRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockCustomerRepo) AppendTransaction(ctx context.Context, customerID string, tx *domain.Transaction) error {
	args := m.Called(ctx, customerID, tx)
	return args.Error(0)
}
func (m *MockCustomerRepo) ListTransactions(ctx context.Context, customerID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *MockCustomerRepo) LedgerTotals(ctx context.Context, customerID string) (domain.LedgerTotals, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(domain.LedgerTotals), args.Error(1)
}
func (m *MockCustomerRepo) LogInterest(ctx context.Context, entry *domain.InterestLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockCustomerRepo) ListImages(ctx context.Context, customerID string) ([]domain.GoldImage, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]domain.GoldImage), args.Error(1)
}
func (m *MockCustomerRepo) Archive(ctx context.Context, c *domain.Customer, reason string) (*domain.ArchivedCustomer, error) {
	args := m.Called(ctx, c, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArchivedCustomer), args.Error(1)
}
func (m *MockCustomerRepo) ListArchived(ctx context.Context, limit int) ([]domain.ArchivedCustomer, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.ArchivedCustomer), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Notification), args.Error(1)
}
func (m *MockNotificationRepo) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// fakeTxManager runs the unit of work directly against repo.
type fakeTxManager struct {
	repo repository.CustomerRepository
}

func (f fakeTxManager) WithinTx(ctx context.Context, fn func(repository.CustomerRepository) error) error {
	return fn(f.repo)
}

type recordingSink struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingSink) Publish(_ context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recordingSink) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}
