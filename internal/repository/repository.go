package repository

import (
	"context"
	"time"

	"goldloan-backend/internal/domain"
)

type CustomerRepository interface {
	// FindEligibleForInterest returns active customers with auto interest on
	// whose last posting, if any, is before asOf's calendar day.
	FindEligibleForInterest(ctx context.Context, asOf time.Time) ([]domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context, status domain.AccountStatus) ([]domain.Customer, error)
	Create(ctx context.Context, c *domain.Customer) error
	// Save writes the mutable fields and bumps the version. It fails with
	// domain.ErrConcurrentUpdate when the stored version no longer matches.
	Save(ctx context.Context, c *domain.Customer) error
	Delete(ctx context.Context, id string) error

	// Ledger
	AppendTransaction(ctx context.Context, customerID string, tx *domain.Transaction) error
	ListTransactions(ctx context.Context, customerID string) ([]domain.Transaction, error)
	LedgerTotals(ctx context.Context, customerID string) (domain.LedgerTotals, error)
	LogInterest(ctx context.Context, entry *domain.InterestLogEntry) error

	// Images
	ListImages(ctx context.Context, customerID string) ([]domain.GoldImage, error)

	// Deletion/backup log
	Archive(ctx context.Context, c *domain.Customer, reason string) (*domain.ArchivedCustomer, error)
	ListArchived(ctx context.Context, limit int) ([]domain.ArchivedCustomer, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, limit int) ([]domain.Notification, error)
	Clear(ctx context.Context) error
}

// TxManager runs fn against a CustomerRepository bound to one database
// transaction. The transaction commits when fn returns nil and rolls back on
// an error or a panic.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(repo CustomerRepository) error) error
}
