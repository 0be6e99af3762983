package ledger

import (
	"github.com/shopspring/decimal"

	"goldloan-backend/internal/domain"
	"goldloan-backend/internal/interest"
)

// Summarize sums a ledger by transaction type.
func Summarize(txs []domain.Transaction) domain.LedgerTotals {
	lent, accrued, paid := decimal.Zero, decimal.Zero, decimal.Zero
	for _, tx := range txs {
		amount := decimal.NewFromFloat(tx.Amount)
		switch tx.Type {
		case domain.TransactionTypeLending:
			lent = lent.Add(amount)
		case domain.TransactionTypeInterest:
			accrued = accrued.Add(amount)
		case domain.TransactionTypePayment:
			paid = paid.Add(amount)
		}
	}
	return domain.LedgerTotals{
		Lent:     lent.InexactFloat64(),
		Interest: accrued.InexactFloat64(),
		Payments: paid.InexactFloat64(),
	}
}

// CheckConsistency rejects a customer whose stored balance has drifted from
// what its ledger implies.
func CheckConsistency(c *domain.Customer, totals domain.LedgerTotals) error {
	expected := totals.ExpectedBalance()
	if !domain.WithinEpsilon(expected, c.CurrentBalance) {
		return &domain.ConsistencyViolation{
			CustomerID: c.ID,
			Expected:   domain.RoundMoney(expected),
			Actual:     c.CurrentBalance,
		}
	}
	return nil
}

// Summary derives the figures shown alongside a customer's ledger.
func Summary(c *domain.Customer, monthlyRatePercent float64) domain.CustomerSummary {
	totals := Summarize(c.Transactions)
	return domain.CustomerSummary{
		InterestEarned:    domain.RoundMoney(totals.Interest),
		TotalPayments:     domain.RoundMoney(totals.Payments),
		MonthlyProjection: domain.RoundMoney(interest.MonthlyInterest(c.CurrentBalance, monthlyRatePercent)),
		NextInterestDue:   interest.NextDueDate(c.LentDate, c.LastInterestDate),
		LastInterestDate:  c.LastInterestDate,
	}
}

// firstEntryOK reports whether the ledger opens with a lending entry that is
// not dated after any later entry.
func firstEntryOK(txs []domain.Transaction) bool {
	if len(txs) == 0 || txs[0].Type != domain.TransactionTypeLending {
		return false
	}
	opened := interest.TruncateToDay(txs[0].Date)
	for _, tx := range txs[1:] {
		if interest.TruncateToDay(tx.Date).Before(opened) {
			return false
		}
	}
	return true
}

// ValidateOpening checks the ordering rule for a ledger about to be stored.
func ValidateOpening(txs []domain.Transaction) error {
	if !firstEntryOK(txs) {
		return domain.NewValidationError("transactions", "ledger must open with a lending entry dated before all others")
	}
	return nil
}
