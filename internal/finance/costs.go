package finance

import (
	"github.com/shopspring/decimal"

	"github.com/sjperalta/devagency-api/internal/models"
)

// TotalAdditionalCosts sums all non-developer costs of a project
func TotalAdditionalCosts(costs []models.AdditionalCost) decimal.Decimal {
	total := decimal.Zero
	for i := range costs {
		total = total.Add(costs[i].Amount)
	}
	return total
}

// DeveloperContractedTotal sums the full contracted cost of every assignment,
// regardless of what has been released. Used for estimates.
func DeveloperContractedTotal(devs []models.ProjectDeveloper) decimal.Decimal {
	total := decimal.Zero
	for i := range devs {
		total = total.Add(devs[i].Cost)
	}
	return total
}

// DeveloperPaidTotal sums what has actually been released to developers:
// the advance when is_advance_paid and the remainder when is_final_paid.
func DeveloperPaidTotal(devs []models.ProjectDeveloper) decimal.Decimal {
	total := decimal.Zero
	for i := range devs {
		total = total.Add(DeveloperPaid(&devs[i]))
	}
	return total
}

// DeveloperPaid returns the amount released for a single assignment
func DeveloperPaid(dev *models.ProjectDeveloper) decimal.Decimal {
	split := SplitPayout(dev.Cost)
	paid := decimal.Zero
	if dev.IsAdvancePaid {
		paid = paid.Add(split.Advance)
	}
	if dev.IsFinalPaid {
		paid = paid.Add(split.Remaining)
	}
	return paid
}

// DeveloperOutstandingTotal is what is still owed to developers
func DeveloperOutstandingTotal(devs []models.ProjectDeveloper) decimal.Decimal {
	return DeveloperContractedTotal(devs).Sub(DeveloperPaidTotal(devs))
}
