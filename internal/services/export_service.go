package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/sjperalta/devagency-api/internal/finance"
	"github.com/sjperalta/devagency-api/internal/models"
	"github.com/sjperalta/devagency-api/internal/repository"
	"github.com/sjperalta/devagency-api/pkg/money"
)

var financialsHeader = []string{
	"Project ID", "Project", "Client", "Status", "Currency",
	"Revenue", "Collected", "Outstanding",
	"Developer Contracted", "Developer Paid", "Developer Outstanding",
	"Additional Costs", "Estimated Profit", "Realized Profit",
	"Estimated Margin %", "Realized Margin %", "Paid Milestones",
}

type ExportService struct {
	reports   *ReportService
	projects  repository.ProjectRepository
	formatter *money.Formatter
	now       func() time.Time
}

func NewExportService(reports *ReportService, projects repository.ProjectRepository, formatter *money.Formatter) *ExportService {
	return &ExportService{
		reports:   reports,
		projects:  projects,
		formatter: formatter,
		now:       time.Now,
	}
}

// ExportCSV writes one row per project with plain decimal amounts
func (s *ExportService) ExportCSV(ctx context.Context, query *repository.ListQuery) ([]byte, string, error) {
	rows, err := s.reports.ProjectFinancials(ctx, query)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)
	if err := writer.Write(financialsHeader); err != nil {
		return nil, "", err
	}
	for _, row := range rows {
		if err := writer.Write(financialsRecord(row)); err != nil {
			return nil, "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("project_financials_%s.csv", s.now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportXLSX writes the per-project rows to a styled spreadsheet
func (s *ExportService) ExportXLSX(ctx context.Context, query *repository.ListQuery) ([]byte, string, error) {
	rows, err := s.reports.ProjectFinancials(ctx, query)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Projects"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	amountStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4})

	for col, title := range financialsHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(financialsHeader))
	_ = f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle)

	for i, row := range rows {
		r := i + 2
		values := []interface{}{
			row.ProjectID, row.ProjectName, row.ClientName, row.Status, row.Currency,
			row.Revenue.InexactFloat64(), row.CollectedRevenue.InexactFloat64(), row.OutstandingRevenue.InexactFloat64(),
			row.DeveloperContracted.InexactFloat64(), row.DeveloperPaid.InexactFloat64(), row.DeveloperOutstanding.InexactFloat64(),
			row.AdditionalCosts.InexactFloat64(), row.EstimatedProfit.InexactFloat64(), row.RealizedProfit.InexactFloat64(),
			row.EstimatedMargin.InexactFloat64(), row.RealizedMargin.InexactFloat64(),
			fmt.Sprintf("%d/%d", row.PaidMilestones, row.MilestoneCount),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, r)
			_ = f.SetCellValue(sheet, cell, v)
		}
		from, _ := excelize.CoordinatesToCellName(6, r)
		to, _ := excelize.CoordinatesToCellName(16, r)
		_ = f.SetCellStyle(sheet, from, to, amountStyle)
	}
	_ = f.SetColWidth(sheet, "B", "C", 28)
	_ = f.SetColWidth(sheet, "F", lastCol, 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("project_financials_%s.xlsx", s.now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// InvoicePDF renders the milestone schedule of a project for the client
func (s *ExportService) InvoicePDF(ctx context.Context, projectID uint) ([]byte, string, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, "", notFound(err, "project")
	}
	summary := finance.Summarize(project)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	format := func(p models.Payment) string {
		return tr(s.formatter.Format(p.Amount, project.Currency))
	}

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr("Payment schedule"))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 6, "Project:")
	pdf.Cell(0, 6, tr(project.Name))
	pdf.Ln(6)
	pdf.Cell(40, 6, "Reference:")
	pdf.Cell(0, 6, project.GUID)
	pdf.Ln(6)
	pdf.Cell(40, 6, "Client:")
	pdf.Cell(0, 6, tr(project.Client.Name))
	pdf.Ln(6)
	pdf.Cell(40, 6, "Issued:")
	pdf.Cell(0, 6, s.now().Format("2006-01-02"))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(224, 224, 224)
	pdf.CellFormat(20, 8, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 8, "Due date", "1", 0, "L", true, 0, "")
	pdf.CellFormat(45, 8, "Amount", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, "Status", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 8, "Paid on", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, p := range project.Payments {
		paidOn := ""
		if p.PaidDate != nil {
			paidOn = p.PaidDate.Format("2006-01-02")
		}
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", p.Sequence), "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 7, p.DueDate.Format("2006-01-02"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, format(p), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, p.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, paidOn, "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(60, 6, "Contracted total:")
	pdf.Cell(0, 6, tr(s.formatter.Format(summary.Revenue, project.Currency)))
	pdf.Ln(6)
	pdf.Cell(60, 6, "Received:")
	pdf.Cell(0, 6, tr(s.formatter.Format(summary.CollectedRevenue, project.Currency)))
	pdf.Ln(6)
	pdf.Cell(60, 6, "Balance due:")
	pdf.Cell(0, 6, tr(s.formatter.Format(summary.OutstandingRevenue, project.Currency)))
	pdf.Ln(6)

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("invoice_%s.pdf", project.GUID)
	return buf.Bytes(), filename, nil
}

func financialsRecord(row finance.ProjectFinancials) []string {
	return []string{
		fmt.Sprintf("%d", row.ProjectID),
		row.ProjectName,
		row.ClientName,
		row.Status,
		row.Currency,
		row.Revenue.StringFixed(2),
		row.CollectedRevenue.StringFixed(2),
		row.OutstandingRevenue.StringFixed(2),
		row.DeveloperContracted.StringFixed(2),
		row.DeveloperPaid.StringFixed(2),
		row.DeveloperOutstanding.StringFixed(2),
		row.AdditionalCosts.StringFixed(2),
		row.EstimatedProfit.StringFixed(2),
		row.RealizedProfit.StringFixed(2),
		row.EstimatedMargin.StringFixed(2),
		row.RealizedMargin.StringFixed(2),
		fmt.Sprintf("%d/%d", row.PaidMilestones, row.MilestoneCount),
	}
}
