package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/devagency-api/internal/finance"
	"github.com/sjperalta/devagency-api/internal/models"
	"github.com/sjperalta/devagency-api/internal/repository"
)

// CurrencyTotals sums the per-project figures of one currency
type CurrencyTotals struct {
	Currency             string          `json:"currency"`
	Projects             int             `json:"projects"`
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
}

// Dashboard groups totals by currency and counts projects by status
type Dashboard struct {
	Totals         []CurrencyTotals `json:"totals"`
	StatusCounts   map[string]int   `json:"status_counts"`
	OverdueCount   int              `json:"overdue_milestones"`
	ActiveProjects int              `json:"active_projects"`
}

type ReportService struct {
	projectRepo repository.ProjectRepository
	now         func() time.Time
}

func NewReportService(projectRepo repository.ProjectRepository) *ReportService {
	return &ReportService{projectRepo: projectRepo, now: time.Now}
}

// ProjectFinancials returns one row of figures per matching project
func (s *ReportService) ProjectFinancials(ctx context.Context, query *repository.ListQuery) ([]finance.ProjectFinancials, error) {
	if err := normalizeStatusFilter(query); err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.FindAllWithDetails(ctx, query)
	if err != nil {
		return nil, err
	}
	return Summaries(projects), nil
}

// Dashboard aggregates the matching projects for the overview screen
func (s *ReportService) Dashboard(ctx context.Context, query *repository.ListQuery) (*Dashboard, error) {
	if err := normalizeStatusFilter(query); err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.FindAllWithDetails(ctx, query)
	if err != nil {
		return nil, err
	}
	return BuildDashboard(projects, s.now()), nil
}

// Summaries computes the figures of every project
func Summaries(projects []models.Project) []finance.ProjectFinancials {
	rows := make([]finance.ProjectFinancials, 0, len(projects))
	for i := range projects {
		rows = append(rows, finance.Summarize(&projects[i]))
	}
	return rows
}

// BuildDashboard sums per-project figures. Amounts in different currencies
// are never added together; each currency gets its own totals row.
func BuildDashboard(projects []models.Project, now time.Time) *Dashboard {
	dash := &Dashboard{
		Totals:       []CurrencyTotals{},
		StatusCounts: make(map[string]int),
	}
	byCurrency := make(map[string]*CurrencyTotals)

	for i := range projects {
		p := &projects[i]
		dash.StatusCounts[p.Status]++
		if !p.IsTerminal() && !p.IsCompleted() {
			dash.ActiveProjects++
			for j := range p.Payments {
				if p.Payments[j].IsOverdue(now) {
					dash.OverdueCount++
				}
			}
		}

		row := finance.Summarize(p)
		t, ok := byCurrency[row.Currency]
		if !ok {
			t = &CurrencyTotals{Currency: row.Currency}
			byCurrency[row.Currency] = t
		}
		t.Projects++
		t.Revenue = t.Revenue.Add(row.Revenue)
		t.CollectedRevenue = t.CollectedRevenue.Add(row.CollectedRevenue)
		t.OutstandingRevenue = t.OutstandingRevenue.Add(row.OutstandingRevenue)
		t.AdditionalCosts = t.AdditionalCosts.Add(row.AdditionalCosts)
		t.DeveloperContracted = t.DeveloperContracted.Add(row.DeveloperContracted)
		t.DeveloperPaid = t.DeveloperPaid.Add(row.DeveloperPaid)
		t.DeveloperOutstanding = t.DeveloperOutstanding.Add(row.DeveloperOutstanding)
		t.EstimatedProfit = t.EstimatedProfit.Add(row.EstimatedProfit)
		t.RealizedProfit = t.RealizedProfit.Add(row.RealizedProfit)
	}

	codes := make([]string, 0, len(byCurrency))
	for code := range byCurrency {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		t := byCurrency[code]
		t.EstimatedMargin = finance.DisplayMargin(finance.ProfitMargin(t.EstimatedProfit, t.Revenue))
		t.RealizedMargin = finance.DisplayMargin(finance.ProfitMargin(t.RealizedProfit, t.Revenue))
		dash.Totals = append(dash.Totals, *t)
	}
	return dash
}
