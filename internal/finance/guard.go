package finance

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/devagency-api/internal/models"
)

// Reasons attached to status changes
const (
	ReasonManualUpdate      = "status updated"
	ReasonAllMilestonesPaid = "all milestones paid"
	ReasonMilestoneReverted = "milestone reverted to unpaid"
)

// StatusChange describes a project status transition. Callers use it to raise
// notifications without re-reading the project.
type StatusChange struct {
	ProjectID uint   `json:"project_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Reason    string `json:"reason"`
}

// CompletionError is returned when a project may not enter Completed. It
// carries the figures behind the decision.
type CompletionError struct {
	ProjectID      uint
	Reason         string
	PaidAmount     decimal.Decimal
	TargetAmount   decimal.Decimal
	MilestoneCount int
	PaidCount      int
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("project cannot be completed: %s (paid %s of %s)",
		e.Reason, e.PaidAmount.StringFixed(2), e.TargetAmount.StringFixed(2))
}

// Shortfall is the amount still missing from the target
func (e *CompletionError) Shortfall() decimal.Decimal {
	short := e.TargetAmount.Sub(e.PaidAmount)
	if short.IsNegative() {
		return decimal.Zero
	}
	return short
}

// CheckCompletion decides whether a project with the given contracted revenue
// and milestones may be completed. It returns nil when all three milestones
// exist, all are paid, and the paid sum reaches the revenue within Epsilon.
func CheckCompletion(revenue decimal.Decimal, payments []models.Payment) *CompletionError {
	paid := CollectedRevenue(payments)
	paidCount := 0
	for i := range payments {
		if payments[i].IsPaid() {
			paidCount++
		}
	}

	var reasons []string
	if len(payments) != MilestoneCount {
		reasons = append(reasons, fmt.Sprintf("expected %d milestones, found %d", MilestoneCount, len(payments)))
	}
	if unpaid := len(payments) - paidCount; unpaid > 0 {
		reasons = append(reasons, fmt.Sprintf("%d of %d milestones unpaid", unpaid, len(payments)))
	}
	if !AtLeast(paid, revenue) {
		reasons = append(reasons, fmt.Sprintf("shortfall of %s against contracted revenue", revenue.Sub(paid).StringFixed(2)))
	}

	if len(reasons) == 0 {
		return nil
	}

	return &CompletionError{
		Reason:         strings.Join(reasons, "; "),
		PaidAmount:     paid,
		TargetAmount:   revenue,
		MilestoneCount: len(payments),
		PaidCount:      paidCount,
	}
}

// CheckProjectCompletion is CheckCompletion for a loaded project
func CheckProjectCompletion(p *models.Project) *CompletionError {
	if err := CheckCompletion(p.Revenue, p.Payments); err != nil {
		err.ProjectID = p.ID
		return err
	}
	return nil
}
