package finance

import "github.com/shopspring/decimal"

// AdvanceShare is the part of a developer's cost released up front
var AdvanceShare = decimal.New(40, -2)

// Split is the advance/final division of a developer's contracted cost
type Split struct {
	Advance   decimal.Decimal `json:"advance"`
	Remaining decimal.Decimal `json:"remaining"`
}

// SplitPayout divides a contracted cost into a 40% advance and a 60% final
// payment. The advance is rounded to cents; Remaining is what is left.
func SplitPayout(cost decimal.Decimal) Split {
	advance := roundCents(cost.Mul(AdvanceShare))
	return Split{
		Advance:   advance,
		Remaining: cost.Sub(advance),
	}
}
