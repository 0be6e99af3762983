package domain

import (
	"fmt"
	"strings"
	"time"
)

type TransactionType string

const (
	TransactionTypeLending  TransactionType = "lending"
	TransactionTypeInterest TransactionType = "interest"
	TransactionTypePayment  TransactionType = "payment"

	// legacyTypeGoldLoan is how older rows recorded the initial disbursement.
	legacyTypeGoldLoan = "gold_loan"
)

// ParseTransactionType maps a stored or submitted type onto the canonical set.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(TransactionTypeLending), legacyTypeGoldLoan:
		return TransactionTypeLending, nil
	case string(TransactionTypeInterest):
		return TransactionTypeInterest, nil
	case string(TransactionTypePayment):
		return TransactionTypePayment, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// Transaction is one immutable ledger entry. Balance is the running balance
// snapshot immediately after the entry was applied.
type Transaction struct {
	ID          string          `json:"id" db:"id"`
	CustomerID  string          `json:"customer_id" db:"customer_id"`
	Seq         int             `json:"seq" db:"seq"`
	Type        TransactionType `json:"type" db:"type"`
	Amount      float64         `json:"amount" db:"amount"`
	Description string          `json:"description" db:"description"`
	Date        time.Time       `json:"date" db:"transaction_date"`
	Balance     float64         `json:"balance" db:"balance"`
}

// LedgerTotals holds the per-type sums of a customer's ledger.
type LedgerTotals struct {
	Lent     float64 `json:"lent" db:"lent"`
	Interest float64 `json:"interest" db:"interest"`
	Payments float64 `json:"payments" db:"payments"`
}

// ExpectedBalance is lent + interest - payments.
func (t LedgerTotals) ExpectedBalance() float64 {
	return t.Lent + t.Interest - t.Payments
}

// InterestLogEntry records one automatic daily posting.
type InterestLogEntry struct {
	ID             string    `json:"id" db:"id"`
	CustomerID     string    `json:"customer_id" db:"customer_id"`
	InterestAmount float64   `json:"interest_amount" db:"interest_amount"`
	AppliedDate    time.Time `json:"applied_date" db:"applied_date"`
	BalanceBefore  float64   `json:"balance_before" db:"balance_before"`
	BalanceAfter   float64   `json:"balance_after" db:"balance_after"`
}
