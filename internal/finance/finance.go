// Package finance holds the project financial engine: milestone scheduling,
// developer payout splits, cost aggregation, profit figures and the lifecycle
// guard that decides when a project may be completed.
//
// Everything here is a pure computation over models values. Persistence,
// transactions and notifications belong to the callers in internal/services.
package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance, in currency units, used for every threshold or
// equality comparison between amounts.
var Epsilon = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// DateOnly truncates t to its calendar day in UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from start to end
func DaysBetween(start, end time.Time) int {
	return int(DateOnly(end).Sub(DateOnly(start)).Hours() / 24)
}

// roundCents rounds to two decimal places
func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// AtLeast reports whether a >= b within Epsilon
func AtLeast(a, b decimal.Decimal) bool {
	return a.GreaterThanOrEqual(b.Sub(Epsilon))
}

// Equal reports whether a and b differ by no more than Epsilon
func Equal(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}
