package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldloan-backend/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newCustomer(principal float64, lent time.Time) *domain.Customer {
	return &domain.Customer{
		ID:             "c-1",
		LentAmount:     principal,
		CurrentBalance: principal,
		LentDate:       lent,
		AccountStatus:  domain.AccountStatusActive,
		Transactions:   BuildInitialLedger(principal, lent, ""),
	}
}

func TestBuildInitialLedger(t *testing.T) {
	txs := BuildInitialLedger(50000, date(2024, time.March, 1), "")

	require.Len(t, txs, 1)
	assert.Equal(t, domain.TransactionTypeLending, txs[0].Type)
	assert.Equal(t, 50000.0, txs[0].Amount)
	assert.Equal(t, 50000.0, txs[0].Balance)
	assert.Equal(t, date(2024, time.March, 1), txs[0].Date)
	assert.Equal(t, "Initial amount lent", txs[0].Description)

	txs = BuildInitialLedger(50000, date(2024, time.March, 1), LendingDescription(10, 5000))
	assert.Equal(t, "Money lent against 10g gold @ ₹5000/g", txs[0].Description)
}

func TestLendingDescription(t *testing.T) {
	assert.Equal(t, "Money lent against 25.5g gold @ ₹6000/g", LendingDescription(25.5, 6000))
}

func TestBackfillHistoricalLedger(t *testing.T) {
	t.Run("Three days in January", func(t *testing.T) {
		b := BackfillHistoricalLedger(100000, date(2024, time.January, 10), date(2024, time.January, 12), 1.5)

		require.Len(t, b.Transactions, 4)
		assert.Equal(t, domain.TransactionTypeLending, b.Transactions[0].Type)
		for i, tx := range b.Transactions[1:] {
			assert.Equal(t, domain.TransactionTypeInterest, tx.Type)
			assert.InDelta(t, 48.387, tx.Amount, 0.001)
			assert.Equal(t, date(2024, time.January, 10+i), tx.Date)
		}
		assert.Equal(t, 100145.16, b.FinalBalance)
		assert.InDelta(t, 145.16, b.TotalInterest, 0.01)
		require.NotNil(t, b.LastInterestDate)
		assert.Equal(t, date(2024, time.January, 12), *b.LastInterestDate)
	})

	t.Run("Crosses into a leap February", func(t *testing.T) {
		b := BackfillHistoricalLedger(10000, date(2024, time.January, 31), date(2024, time.February, 1), 1.5)

		require.Len(t, b.Transactions, 3)
		assert.InDelta(t, 10000*0.015/31, b.Transactions[1].Amount, 1e-9)
		assert.InDelta(t, 10000*0.015/29, b.Transactions[2].Amount, 1e-9)
	})

	t.Run("As of the lend date", func(t *testing.T) {
		b := BackfillHistoricalLedger(100000, date(2024, time.January, 10), date(2024, time.January, 10), 1.5)

		require.Len(t, b.Transactions, 1)
		assert.Equal(t, 100000.0, b.FinalBalance)
		assert.Nil(t, b.LastInterestDate)
	})

	t.Run("Accrues on principal only", func(t *testing.T) {
		b := BackfillHistoricalLedger(30000, date(2024, time.June, 1), date(2024, time.June, 30), 2)

		// A whole 30 day month of simple interest is exactly one monthly charge.
		assert.Equal(t, 30600.0, b.FinalBalance)
		for _, tx := range b.Transactions[1:] {
			assert.InDelta(t, 20.0, tx.Amount, 1e-9)
		}
	})

	t.Run("Ledger agrees with final balance", func(t *testing.T) {
		b := BackfillHistoricalLedger(123456.78, date(2023, time.November, 17), date(2024, time.March, 3), 1.75)

		c := &domain.Customer{ID: "c-1", CurrentBalance: b.FinalBalance}
		assert.NoError(t, CheckConsistency(c, Summarize(b.Transactions)))
		assert.NoError(t, ValidateOpening(b.Transactions))
	})
}

func TestRecordPayment(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c := newCustomer(1000, date(2024, time.January, 1))

		tx, err := RecordPayment(c, 400, date(2024, time.January, 5), "")
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionTypePayment, tx.Type)
		assert.Equal(t, "Payment received", tx.Description)
		assert.Equal(t, 600.0, tx.Balance)
		assert.Equal(t, 600.0, c.CurrentBalance)
		assert.Len(t, c.Transactions, 2)
	})

	t.Run("Full settlement lands on zero", func(t *testing.T) {
		c := newCustomer(1000, date(2024, time.January, 1))
		c.CurrentBalance = 1000.004

		_, err := RecordPayment(c, 1000, date(2024, time.January, 5), "Closing payment")
		require.NoError(t, err)
		assert.Equal(t, 0.0, c.CurrentBalance)
		assert.True(t, c.CanDelete())
	})

	t.Run("Exceeds balance", func(t *testing.T) {
		c := newCustomer(1000, date(2024, time.January, 1))

		_, err := RecordPayment(c, 1500, date(2024, time.January, 5), "")
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Contains(t, err.Error(), "amount exceeds current balance")
		assert.Equal(t, 1000.0, c.CurrentBalance)
		assert.Len(t, c.Transactions, 1)
	})

	t.Run("Sub-cent over balance", func(t *testing.T) {
		c := newCustomer(100, date(2024, time.January, 1))

		_, err := RecordPayment(c, 100.004, date(2024, time.January, 5), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "amount exceeds current balance")
		assert.Equal(t, 100.0, c.CurrentBalance)
	})

	t.Run("Non-positive amount", func(t *testing.T) {
		c := newCustomer(1000, date(2024, time.January, 1))

		_, err := RecordPayment(c, 0, date(2024, time.January, 5), "")
		assert.True(t, domain.IsValidation(err))
		_, err = RecordPayment(c, -10, date(2024, time.January, 5), "")
		assert.True(t, domain.IsValidation(err))
		assert.Equal(t, 1000.0, c.CurrentBalance)
	})
}

func TestRecordManualInterest(t *testing.T) {
	t.Run("Charges a month on the current balance", func(t *testing.T) {
		c := newCustomer(10000, date(2024, time.January, 1))
		c.CurrentBalance = 8000

		tx, err := RecordManualInterest(c, 1.5, date(2024, time.February, 1))
		require.NoError(t, err)
		assert.Equal(t, 120.0, tx.Amount)
		assert.Equal(t, 8120.0, c.CurrentBalance)
		assert.Nil(t, c.LastInterestDate)
	})

	t.Run("Nothing outstanding", func(t *testing.T) {
		c := newCustomer(10000, date(2024, time.January, 1))
		c.CurrentBalance = 0

		_, err := RecordManualInterest(c, 1.5, date(2024, time.February, 1))
		assert.True(t, domain.IsValidation(err))
	})
}

func TestApplyDailyInterest(t *testing.T) {
	t.Run("Posts once per day", func(t *testing.T) {
		c := newCustomer(100000, date(2024, time.January, 1))
		asOf := date(2024, time.January, 1)

		tx, err := ApplyDailyInterest(c, asOf, 1.5)
		require.NoError(t, err)
		assert.Equal(t, 48.39, tx.Amount)
		assert.Equal(t, 100048.39, c.CurrentBalance)
		require.NotNil(t, c.LastInterestDate)
		assert.Equal(t, asOf, *c.LastInterestDate)

		_, err = ApplyDailyInterest(c, asOf, 1.5)
		assert.ErrorIs(t, err, ErrNotDue)
		assert.Equal(t, 100048.39, c.CurrentBalance)
		assert.Len(t, c.Transactions, 2)
	})

	t.Run("Ignores payments when computing the amount", func(t *testing.T) {
		c := newCustomer(44000, date(2024, time.May, 1))
		c.CurrentBalance = 10490

		tx, err := ApplyDailyInterest(c, date(2024, time.June, 10), 1.5)
		require.NoError(t, err)
		assert.Equal(t, 22.0, tx.Amount)
		assert.Equal(t, 10512.0, c.CurrentBalance)
	})

	t.Run("Ledger stays consistent over many days", func(t *testing.T) {
		c := newCustomer(77777, date(2024, time.January, 1))
		for d := date(2024, time.January, 1); d.Before(date(2024, time.April, 1)); d = d.AddDate(0, 0, 1) {
			_, err := ApplyDailyInterest(c, d, 1.5)
			require.NoError(t, err)
		}
		assert.NoError(t, CheckConsistency(c, Summarize(c.Transactions)))
	})

	t.Run("Future lend date", func(t *testing.T) {
		c := newCustomer(1000, date(2024, time.January, 10))

		_, err := ApplyDailyInterest(c, date(2024, time.January, 9), 1.5)
		assert.ErrorIs(t, err, ErrNotDue)
	})
}

func TestCheckConsistency(t *testing.T) {
	totals := domain.LedgerTotals{Lent: 1000, Interest: 50, Payments: 200}

	t.Run("Within epsilon", func(t *testing.T) {
		assert.NoError(t, CheckConsistency(&domain.Customer{CurrentBalance: 850.005}, totals))
	})

	t.Run("Drifted", func(t *testing.T) {
		err := CheckConsistency(&domain.Customer{ID: "c-9", CurrentBalance: 900}, totals)
		var cv *domain.ConsistencyViolation
		require.ErrorAs(t, err, &cv)
		assert.Equal(t, "c-9", cv.CustomerID)
		assert.Equal(t, 850.0, cv.Expected)
	})
}

func TestSummary(t *testing.T) {
	c := newCustomer(10000, date(2024, time.January, 1))
	_, err := ApplyDailyInterest(c, date(2024, time.January, 1), 1.5)
	require.NoError(t, err)
	_, err = RecordPayment(c, 1000, date(2024, time.January, 2), "")
	require.NoError(t, err)

	s := Summary(c, 1.5)
	assert.Equal(t, 4.84, s.InterestEarned)
	assert.Equal(t, 1000.0, s.TotalPayments)
	assert.Equal(t, date(2024, time.January, 2), s.NextInterestDue)
	assert.Equal(t, domain.RoundMoney(c.CurrentBalance*0.015), s.MonthlyProjection)
}

func TestValidateOpening(t *testing.T) {
	assert.Error(t, ValidateOpening(nil))
	assert.Error(t, ValidateOpening([]domain.Transaction{{Type: domain.TransactionTypeInterest}}))
	assert.Error(t, ValidateOpening([]domain.Transaction{
		{Type: domain.TransactionTypeLending, Date: date(2024, time.January, 5)},
		{Type: domain.TransactionTypeInterest, Date: date(2024, time.January, 4)},
	}))
}
