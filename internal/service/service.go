package service

import (
	"context"
	"time"

	"goldloan-backend/internal/domain"
	"goldloan-backend/internal/interest"
	"goldloan-backend/internal/ledger"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, in CustomerInput) (*domain.Customer, error)
	CreateHistoricalCustomer(ctx context.Context, in HistoricalCustomerInput) (*domain.Customer, error)
	PreviewHistorical(ctx context.Context, in HistoricalCustomerInput) (*ledger.Backfill, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, *domain.CustomerSummary, error)
	ListCustomers(ctx context.Context, status string) ([]domain.Customer, error)
	ListTransactions(ctx context.Context, id string) ([]domain.Transaction, error)
	RecordPayment(ctx context.Context, id string, in PaymentInput) (*domain.Customer, *domain.Transaction, error)
	ApplyManualInterest(ctx context.Context, id string) (*domain.Customer, *domain.Transaction, error)
	SetStatus(ctx context.Context, id, status string) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id string) (*domain.ArchivedCustomer, error)
	ListArchived(ctx context.Context, limit int) ([]domain.ArchivedCustomer, error)
}

type InterestService interface {
	// ApplyDailyInterestToAll posts asOf's interest to every due customer.
	// Individual failures are counted in the result, never returned.
	ApplyDailyInterestToAll(ctx context.Context, asOf time.Time) (*domain.BatchResult, error)
	// Today is the current calendar date in the accrual timezone.
	Today() time.Time
}

type NotificationService interface {
	List(ctx context.Context, limit int) ([]domain.Notification, error)
	Clear(ctx context.Context) error
}

// Settings are the accrual parameters shared by the services.
type Settings struct {
	MonthlyRatePercent float64
	Location           *time.Location
	BatchConcurrency   int
	Now                func() time.Time
}

func (s Settings) withDefaults() Settings {
	if s.MonthlyRatePercent <= 0 {
		s.MonthlyRatePercent = interest.DefaultMonthlyRate
	}
	if s.Location == nil {
		s.Location = time.UTC
	}
	if s.BatchConcurrency <= 0 {
		s.BatchConcurrency = 4
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

// today returns the current date in the accrual timezone as a civil date.
func (s Settings) today() time.Time {
	return interest.CivilDate(s.Now().In(s.Location))
}
