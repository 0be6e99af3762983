// Package interest holds the pure accrual rules: how much a loan earns per day
// and per month, and whether a loan is due for its next daily posting.
package interest

import "time"

// DefaultMonthlyRate is the monthly simple-interest rate, in percent.
const DefaultMonthlyRate = 1.5

// EffectiveRate returns rate, or DefaultMonthlyRate when rate is not positive.
func EffectiveRate(rate float64) float64 {
	if rate <= 0 {
		return DefaultMonthlyRate
	}
	return rate
}

// DailyInterest is one day's simple interest on principal. The monthly rate is
// spread over the actual length of the month containing date, so the amount
// differs slightly between a 28-day and a 31-day month.
func DailyInterest(principal float64, date time.Time, monthlyRatePercent float64) float64 {
	rate := EffectiveRate(monthlyRatePercent)
	return principal * (rate / 100) / float64(DaysInMonthOf(date))
}

// MonthlyInterest is a full month of interest on balance. It is used for
// projections and the manual single-customer posting, never for daily accrual.
func MonthlyInterest(balance, monthlyRatePercent float64) float64 {
	return balance * (EffectiveRate(monthlyRatePercent) / 100)
}
