// Package ledger builds and extends customer ledgers. Every function here is
// free of I/O: callers load the customer, apply one of these operations, and
// persist the result inside a single unit of work.
package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"goldloan-backend/internal/domain"
	"goldloan-backend/internal/interest"
)

// ErrNotDue is returned when the customer already accrued interest for the day.
var ErrNotDue = errors.New("interest already posted for this date")

// ErrNoAccrual is returned when one day's interest rounds down to nothing.
var ErrNoAccrual = errors.New("daily interest rounds to zero")

const initialLendingDescription = "Initial amount lent"

// Backfill is a reconstructed historical ledger.
type Backfill struct {
	Transactions     []domain.Transaction `json:"transactions"`
	FinalBalance     float64              `json:"final_balance"`
	TotalInterest    float64              `json:"total_interest"`
	LastInterestDate *time.Time           `json:"last_interest_date,omitempty"`
}

// LendingDescription is the audit note on a loan's opening entry.
func LendingDescription(goldWeight, goldRate float64) string {
	return fmt.Sprintf("Money lent against %sg gold @ ₹%s/g", formatNumber(goldWeight), formatNumber(goldRate))
}

func interestDescription(rate float64, automatic bool) string {
	if automatic {
		return fmt.Sprintf("Automatic daily interest (%s%%/month)", formatNumber(rate))
	}
	return fmt.Sprintf("Daily interest (%s%%/month)", formatNumber(rate))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BuildInitialLedger opens a ledger with its single lending entry.
func BuildInitialLedger(lentAmount float64, lentDate time.Time, description string) []domain.Transaction {
	if description == "" {
		description = initialLendingDescription
	}
	return []domain.Transaction{{
		Type:        domain.TransactionTypeLending,
		Amount:      lentAmount,
		Description: description,
		Date:        lentDate,
		Balance:     domain.NormalizeBalance(lentAmount),
	}}
}

// BackfillHistoricalLedger replays daily accrual from lentDate through asOfDate,
// both days included, as if the daily job had been running all along. Each day
// accrues on the original principal only.
//
// When asOfDate is on or before lentDate nothing has accrued yet: the ledger is
// just the lending entry and the day's interest is left to the daily job.
func BackfillHistoricalLedger(lentAmount float64, lentDate, asOfDate time.Time, monthlyRatePercent float64) Backfill {
	rate := interest.EffectiveRate(monthlyRatePercent)
	txs := BuildInitialLedger(lentAmount, lentDate, "")
	balance := lentAmount
	total := 0.0

	start := interest.TruncateToDay(lentDate)
	end := interest.TruncateToDay(asOfDate.In(lentDate.Location()))
	if !end.After(start) {
		return Backfill{Transactions: txs, FinalBalance: domain.NormalizeBalance(balance)}
	}

	var last time.Time
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		amount := interest.DailyInterest(lentAmount, day, rate)
		balance += amount
		total += amount
		txs = append(txs, domain.Transaction{
			Type:        domain.TransactionTypeInterest,
			Amount:      amount,
			Description: interestDescription(rate, false),
			Date:        day,
			Balance:     domain.RoundMoney(balance),
		})
		last = day
	}

	return Backfill{
		Transactions:     txs,
		FinalBalance:     domain.NormalizeBalance(balance),
		TotalInterest:    total,
		LastInterestDate: &last,
	}
}

// RecordPayment reduces the balance by amount. It is the only path that lowers
// a balance, and it refuses anything that would take the balance below zero.
func RecordPayment(c *domain.Customer, amount float64, at time.Time, description string) (domain.Transaction, error) {
	if amount <= 0 {
		return domain.Transaction{}, domain.NewValidationError("amount", "payment amount must be greater than zero")
	}
	if amount > c.CurrentBalance {
		return domain.Transaction{}, domain.NewValidationError("amount", "amount exceeds current balance")
	}
	amount = domain.RoundMoney(amount)
	if description == "" {
		description = "Payment received"
	}

	c.SetBalance(c.CurrentBalance - amount)
	tx := domain.Transaction{
		CustomerID:  c.ID,
		Type:        domain.TransactionTypePayment,
		Amount:      amount,
		Description: description,
		Date:        at,
		Balance:     c.CurrentBalance,
	}
	c.Transactions = append(c.Transactions, tx)
	return tx, nil
}

// RecordManualInterest charges one full month of interest on the current
// balance. It leaves LastInterestDate alone: it is not part of daily accrual.
func RecordManualInterest(c *domain.Customer, monthlyRatePercent float64, at time.Time) (domain.Transaction, error) {
	rate := interest.EffectiveRate(monthlyRatePercent)
	amount := domain.RoundMoney(interest.MonthlyInterest(c.CurrentBalance, rate))
	if amount <= 0 {
		return domain.Transaction{}, domain.NewValidationError("current_balance", "no outstanding balance to charge interest on")
	}

	c.SetBalance(c.CurrentBalance + amount)
	tx := domain.Transaction{
		CustomerID:  c.ID,
		Type:        domain.TransactionTypeInterest,
		Amount:      amount,
		Description: fmt.Sprintf("Monthly interest (%s%%/month) applied manually", formatNumber(rate)),
		Date:        at,
		Balance:     c.CurrentBalance,
	}
	c.Transactions = append(c.Transactions, tx)
	return tx, nil
}

// ApplyDailyInterest posts asOf's interest on the principal, rounded to the
// cent, and moves LastInterestDate to asOf.
func ApplyDailyInterest(c *domain.Customer, asOf time.Time, monthlyRatePercent float64) (domain.Transaction, error) {
	if !interest.IsDue(c.LentDate, c.LastInterestDate, asOf) {
		return domain.Transaction{}, ErrNotDue
	}
	rate := interest.EffectiveRate(monthlyRatePercent)
	amount := domain.RoundMoney(interest.DailyInterest(c.LentAmount, asOf, rate))
	if amount <= 0 {
		return domain.Transaction{}, ErrNoAccrual
	}

	c.SetBalance(c.CurrentBalance + amount)
	c.AdvanceInterestDate(interest.TruncateToDay(asOf))
	tx := domain.Transaction{
		CustomerID:  c.ID,
		Type:        domain.TransactionTypeInterest,
		Amount:      amount,
		Description: interestDescription(rate, true),
		Date:        asOf,
		Balance:     c.CurrentBalance,
	}
	c.Transactions = append(c.Transactions, tx)
	return tx, nil
}
