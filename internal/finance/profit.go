package finance

import (
	"github.com/shopspring/decimal"

	"github.com/sjperalta/devagency-api/internal/models"
)

// EstimatedProfit is revenue minus the full contracted developer cost and the
// additional costs. Used while drafting a project, before money has moved.
func EstimatedProfit(revenue, developerContracted, additional decimal.Decimal) decimal.Decimal {
	return revenue.Sub(developerContracted.Add(additional))
}

// RealizedProfit is revenue minus what has actually been released to
// developers and the additional costs. Used for dashboards on live data.
func RealizedProfit(revenue, developerPaid, additional decimal.Decimal) decimal.Decimal {
	return revenue.Sub(developerPaid.Add(additional))
}

// ProfitMargin returns profit as a percentage of revenue, or zero when there
// is no revenue. The value is not rounded; see DisplayMargin.
func ProfitMargin(profit, revenue decimal.Decimal) decimal.Decimal {
	if !revenue.IsPositive() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(hundred)
}

// DisplayMargin rounds a margin to two decimals for presentation
func DisplayMargin(margin decimal.Decimal) decimal.Decimal {
	return margin.Round(2)
}

// CollectedRevenue sums the milestones the client has paid
func CollectedRevenue(payments []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for i := range payments {
		if payments[i].IsPaid() {
			total = total.Add(payments[i].Amount)
		}
	}
	return total
}

// ProjectFinancials holds every per-project figure the dashboards and
// exports need. Estimated and realized profit are always reported apart.
type ProjectFinancials struct {
	ProjectID            uint            `json:"project_id"`
	ProjectName          string          `json:"project_name"`
	ClientName           string          `json:"client_name"`
	Status               string          `json:"status"`
	Currency             string          `json:"currency"`
	Revenue              decimal.Decimal `json:"revenue"`
	CollectedRevenue     decimal.Decimal `json:"collected_revenue"`
	OutstandingRevenue   decimal.Decimal `json:"outstanding_revenue"`
	AdditionalCosts      decimal.Decimal `json:"additional_costs"`
	DeveloperContracted  decimal.Decimal `json:"developer_contracted"`
	DeveloperPaid        decimal.Decimal `json:"developer_paid"`
	DeveloperOutstanding decimal.Decimal `json:"developer_outstanding"`
	EstimatedProfit      decimal.Decimal `json:"estimated_profit"`
	RealizedProfit       decimal.Decimal `json:"realized_profit"`
	EstimatedMargin      decimal.Decimal `json:"estimated_margin"`
	RealizedMargin       decimal.Decimal `json:"realized_margin"`
	MilestoneCount       int             `json:"milestone_count"`
	PaidMilestones       int             `json:"paid_milestones"`
}

// Summarize computes the financial figures of a single project. The project
// must have its payments, developers and additional costs loaded.
func Summarize(p *models.Project) ProjectFinancials {
	additional := TotalAdditionalCosts(p.AdditionalCosts)
	contracted := DeveloperContractedTotal(p.Developers)
	paid := DeveloperPaidTotal(p.Developers)
	collected := CollectedRevenue(p.Payments)

	estimated := EstimatedProfit(p.Revenue, contracted, additional)
	realized := RealizedProfit(p.Revenue, paid, additional)

	paidCount := 0
	for i := range p.Payments {
		if p.Payments[i].IsPaid() {
			paidCount++
		}
	}

	return ProjectFinancials{
		ProjectID:            p.ID,
		ProjectName:          p.Name,
		ClientName:           p.Client.Name,
		Status:               p.Status,
		Currency:             p.Currency,
		Revenue:              p.Revenue,
		CollectedRevenue:     collected,
		OutstandingRevenue:   p.Revenue.Sub(collected),
		AdditionalCosts:      additional,
		DeveloperContracted:  contracted,
		DeveloperPaid:        paid,
		DeveloperOutstanding: contracted.Sub(paid),
		EstimatedProfit:      estimated,
		RealizedProfit:       realized,
		EstimatedMargin:      DisplayMargin(ProfitMargin(estimated, p.Revenue)),
		RealizedMargin:       DisplayMargin(ProfitMargin(realized, p.Revenue)),
		MilestoneCount:       len(p.Payments),
		PaidMilestones:       paidCount,
	}
}
