package domain

import "github.com/shopspring/decimal"

// BalanceEpsilon is the distance from zero under which a balance is settled.
const BalanceEpsilon = 0.01

// RoundMoney rounds half away from zero to 2 decimal places.
func RoundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// NormalizeBalance is applied at every write boundary: it snaps values within
// BalanceEpsilon of zero to exactly zero and rounds everything else to 2 places.
func NormalizeBalance(v float64) float64 {
	d := decimal.NewFromFloat(v)
	if d.Abs().LessThan(decimal.NewFromFloat(BalanceEpsilon)) {
		return 0
	}
	return d.Round(2).InexactFloat64()
}

// WithinEpsilon reports whether a and b differ by no more than BalanceEpsilon.
func WithinEpsilon(a, b float64) bool {
	diff := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs()
	return diff.LessThanOrEqual(decimal.NewFromFloat(BalanceEpsilon))
}
