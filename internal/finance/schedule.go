package finance

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/devagency-api/internal/models"
)

// MilestoneCount is the number of milestones in the standard structure
const MilestoneCount = 3

// Milestone shares of the contracted revenue
var (
	FirstMilestoneShare  = decimal.New(30, -2)
	SecondMilestoneShare = decimal.New(30, -2)
	FinalMilestoneShare  = decimal.New(40, -2)
)

// ErrNegativeAmount is returned for negative money inputs
var ErrNegativeAmount = errors.New("amount must not be negative")

// ErrScheduleLocked is returned when a schedule may no longer be regenerated
var ErrScheduleLocked = errors.New("payment schedule cannot be regenerated")

// ResolveEndDate returns the effective end date of a project. A missing end
// date, or one before start, defaults to one month after start.
func ResolveEndDate(start time.Time, end *time.Time) time.Time {
	start = DateOnly(start)
	if end == nil {
		return start.AddDate(0, 1, 0)
	}
	e := DateOnly(*end)
	if e.Before(start) {
		return start.AddDate(0, 1, 0)
	}
	return e
}

// ScheduleMilestones derives the three unpaid milestones for a contracted
// total: 30% at start, 30% at the midpoint and 40% at the end date.
//
// The first two amounts are rounded to cents and the final milestone takes
// the remainder, so the schedule always sums to total.
func ScheduleMilestones(total decimal.Decimal, start time.Time, end *time.Time) ([]models.Payment, error) {
	if total.IsNegative() {
		return nil, fmt.Errorf("schedule milestones: %w", ErrNegativeAmount)
	}

	startDay := DateOnly(start)
	endDay := ResolveEndDate(startDay, end)
	midDay := startDay.AddDate(0, 0, DaysBetween(startDay, endDay)/2)

	first := roundCents(total.Mul(FirstMilestoneShare))
	second := roundCents(total.Mul(SecondMilestoneShare))
	final := total.Sub(first).Sub(second)

	return []models.Payment{
		{Sequence: 1, Amount: first, DueDate: startDay, Status: models.PaymentStatusUnpaid},
		{Sequence: 2, Amount: second, DueDate: midDay, Status: models.PaymentStatusUnpaid},
		{Sequence: 3, Amount: final, DueDate: endDay, Status: models.PaymentStatusUnpaid},
	}, nil
}

// ShouldRegenerate reports whether an edit must recompute the schedule. Only
// the standard three-milestone structure with nothing paid yet is recomputed,
// and only when revenue or dates actually changed.
func ShouldRegenerate(payments []models.Payment, revenueChanged, datesChanged bool) bool {
	if !revenueChanged && !datesChanged {
		return false
	}
	return CanRegenerate(payments)
}

// CanRegenerate reports whether the schedule is still in its untouched form
func CanRegenerate(payments []models.Payment) bool {
	if len(payments) != MilestoneCount {
		return false
	}
	for i := range payments {
		if payments[i].IsPaid() {
			return false
		}
	}
	return true
}

// Reschedule recomputes amounts and due dates of an existing schedule in
// place. Row identity (ID, ProjectID) is kept so payment history survives.
func Reschedule(existing []models.Payment, total decimal.Decimal, start time.Time, end *time.Time) ([]models.Payment, error) {
	if !CanRegenerate(existing) {
		return nil, ErrScheduleLocked
	}

	fresh, err := ScheduleMilestones(total, start, end)
	if err != nil {
		return nil, err
	}

	updated := make([]models.Payment, len(existing))
	copy(updated, existing)
	sort.SliceStable(updated, func(i, j int) bool {
		return updated[i].Sequence < updated[j].Sequence
	})

	for i := range updated {
		updated[i].Sequence = fresh[i].Sequence
		updated[i].Amount = fresh[i].Amount
		updated[i].DueDate = fresh[i].DueDate
	}
	return updated, nil
}

// ScheduleTotal sums the amounts of a schedule
func ScheduleTotal(payments []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for i := range payments {
		total = total.Add(payments[i].Amount)
	}
	return total
}
