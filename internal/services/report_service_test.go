package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sjperalta/devagency-api/internal/models"
	"github.com/sjperalta/devagency-api/pkg/money"
)

func reportProject(id uint, currency, status, revenue string, paid ...bool) models.Project {
	p := models.Project{
		ID:       id,
		Name:     "P" + currency,
		Status:   status,
		Currency: currency,
		Revenue:  dec(revenue),
		Client:   models.Client{ID: 1, Name: "Acme"},
	}
	for i, isPaid := range paid {
		pay := models.Payment{
			ID:       id*10 + uint(i),
			Sequence: i + 1,
			Amount:   dec(revenue).Div(dec("2")),
			DueDate:  day(2024, time.January, 10),
			Status:   models.PaymentStatusUnpaid,
		}
		if isPaid {
			pay.Status = models.PaymentStatusPaid
		}
		p.Payments = append(p.Payments, pay)
	}
	return p
}

func TestBuildDashboard_GroupsByCurrency(t *testing.T) {
	usdA := reportProject(1, "USD", models.ProjectStatusOngoing, "1000", true, false)
	usdA.Developers = []models.ProjectDeveloper{{Cost: dec("500"), IsAdvancePaid: true}}
	usdB := reportProject(2, "USD", models.ProjectStatusCompleted, "3000", true, true)
	eur := reportProject(3, "EUR", models.ProjectStatusCancelled, "2000", false, false)
	eur.AdditionalCosts = []models.AdditionalCost{{Amount: dec("200")}}

	dash := BuildDashboard([]models.Project{usdA, usdB, eur}, day(2024, time.March, 1))

	require.Len(t, dash.Totals, 2)
	assert.Equal(t, "EUR", dash.Totals[0].Currency)
	assert.Equal(t, "USD", dash.Totals[1].Currency)

	usd := dash.Totals[1]
	assert.Equal(t, 2, usd.Projects)
	assert.True(t, usd.Revenue.Equal(dec("4000")))
	assert.True(t, usd.CollectedRevenue.Equal(dec("3500")))
	assert.True(t, usd.DeveloperContracted.Equal(dec("500")))
	assert.True(t, usd.DeveloperPaid.Equal(dec("200")))
	assert.True(t, usd.EstimatedProfit.Equal(dec("3500")))
	assert.True(t, usd.RealizedProfit.Equal(dec("3800")))
	assert.Equal(t, "87.50", usd.EstimatedMargin.StringFixed(2))
	assert.Equal(t, "95.00", usd.RealizedMargin.StringFixed(2))

	eurTotals := dash.Totals[0]
	assert.True(t, eurTotals.Revenue.Equal(dec("2000")))
	assert.True(t, eurTotals.EstimatedProfit.Equal(dec("1800")))

	assert.Equal(t, map[string]int{
		models.ProjectStatusOngoing:   1,
		models.ProjectStatusCompleted: 1,
		models.ProjectStatusCancelled: 1,
	}, dash.StatusCounts)
	assert.Equal(t, 1, dash.ActiveProjects)
	assert.Equal(t, 1, dash.OverdueCount)
}

func TestBuildDashboard_Empty(t *testing.T) {
	dash := BuildDashboard(nil, time.Now())

	assert.Empty(t, dash.Totals)
	assert.NotNil(t, dash.Totals)
	assert.Zero(t, dash.ActiveProjects)
}

func newExportFixture(t *testing.T) (*ExportService, *memStore, *models.Project) {
	t.Helper()
	svc, store, _ := newProjectFixture(t)
	project := mustCreate(t, svc, baseInput())
	pay(t, svc, project.Payments[0].ID)

	repos := store.repos()
	export := NewExportService(NewReportService(repos.Project), repos.Project, money.NewFormatter(money.Settings{}))
	export.now = func() time.Time { return store.now }
	return export, store, project
}

func TestExportService_CSV(t *testing.T) {
	export, _, _ := newExportFixture(t)

	data, filename, err := export.ExportCSV(context.Background(), newQuery(nil))
	require.NoError(t, err)
	assert.Equal(t, "project_financials_2024-03-01.csv", filename)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, financialsHeader, records[0])

	row := records[1]
	assert.Equal(t, "Website", row[1])
	assert.Equal(t, "Acme", row[2])
	assert.Equal(t, "USD", row[4])
	assert.Equal(t, "10000.00", row[5])
	assert.Equal(t, "3000.00", row[6])
	assert.Equal(t, "7000.00", row[7])
	assert.Equal(t, "45.00", row[14])
	assert.Equal(t, "1/3", row[16])
}

func TestExportService_XLSX(t *testing.T) {
	export, _, _ := newExportFixture(t)

	data, filename, err := export.ExportXLSX(context.Background(), newQuery(nil))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Projects", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Project ID", header)

	name, err := f.GetCellValue("Projects", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Website", name)

	milestones, err := f.GetCellValue("Projects", "Q2")
	require.NoError(t, err)
	assert.Equal(t, "1/3", milestones)
}

func TestExportService_InvoicePDF(t *testing.T) {
	export, _, project := newExportFixture(t)

	data, filename, err := export.InvoicePDF(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, "invoice_"+project.GUID+".pdf", filename)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	_, _, err = export.InvoicePDF(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}
