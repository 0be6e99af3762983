// Package notify delivers operator-facing messages about ledger events. A
// Publish never fails the operation that triggered it: delivery errors are
// logged and dropped.
package notify

import (
	"context"
	"fmt"

	"goldloan-backend/internal/domain"
	"goldloan-backend/internal/logger"
	"goldloan-backend/internal/repository"
)

type Sink interface {
	Publish(ctx context.Context, message string)
}

func CustomerAdded(name string) string {
	return fmt.Sprintf("New customer %s added", name)
}

func HistoricalCustomerAdded(name string, interestEntries int) string {
	return fmt.Sprintf("Historical customer %s added with %d interest entries", name, interestEntries)
}

func InterestApplied(count int) string {
	return fmt.Sprintf("Interest applied to %d customers (daily)", count)
}

func CustomerRemoved(name, reason string) string {
	if reason == domain.ArchiveReasonTargetReached {
		return fmt.Sprintf("Customer %s removed - target amount reached", name)
	}
	return fmt.Sprintf("Customer %s removed - %s", name, reason)
}

func PaymentReceived(name string, amount, balance float64) string {
	return fmt.Sprintf("Payment of ₹%.2f received from %s, balance ₹%.2f", amount, name, balance)
}

// StoreSink persists messages to the notifications table.
type StoreSink struct {
	repo repository.NotificationRepository
}

func NewStoreSink(repo repository.NotificationRepository) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Publish(ctx context.Context, message string) {
	n := &domain.Notification{Message: message}
	if err := s.repo.Create(ctx, n); err != nil {
		logger.Error("Failed to store notification", "error", err, "message", message)
	}
}

// Multi fans a message out to every sink in order.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, message string) {
	for _, s := range m {
		if s != nil {
			s.Publish(ctx, message)
		}
	}
}

// Discard drops every message.
type Discard struct{}

func (Discard) Publish(context.Context, string) {}
