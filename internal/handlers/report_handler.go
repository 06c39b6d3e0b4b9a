package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/devagency-api/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
	exportService *services.ExportService
}

func NewReportHandler(reportService *services.ReportService, exportService *services.ExportService) *ReportHandler {
	return &ReportHandler{reportService: reportService, exportService: exportService}
}

var reportFilters = []string{"status", "client_id", "start_date", "end_date"}

// @Summary Project Financials Report
// @Description Per-project financial figures. Rows are not aggregated across currencies.
// @Tags Reports
// @Produce json
// @Param status query string false "Filter by status"
// @Param client_id query int false "Filter by client"
// @Param start_date query string false "Projects starting on or after (YYYY-MM-DD)"
// @Param end_date query string false "Projects starting on or before (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /reports/projects [get]
func (h *ReportHandler) Projects(c *gin.Context) {
	rows, err := h.reportService.ProjectFinancials(c.Request.Context(), listQuery(c, reportFilters...))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": rows})
}

// @Summary Dashboard
// @Description Totals per currency, project counts per status and overdue milestones
// @Tags Reports
// @Produce json
// @Param status query string false "Filter by status"
// @Param client_id query int false "Filter by client"
// @Success 200 {object} services.Dashboard
// @Security BearerAuth
// @Router /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	dash, err := h.reportService.Dashboard(c.Request.Context(), listQuery(c, reportFilters...))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// @Summary Project Financials CSV
// @Description Download the per-project figures as CSV
// @Tags Reports
// @Produce text/csv
// @Success 200 {file} file "project_financials.csv"
// @Security BearerAuth
// @Router /reports/projects_csv [get]
func (h *ReportHandler) ProjectsCSV(c *gin.Context) {
	data, filename, err := h.exportService.ExportCSV(c.Request.Context(), listQuery(c, reportFilters...))
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, "text/csv", filename, data)
}

// @Summary Project Financials XLSX
// @Description Download the per-project figures as an Excel workbook
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "project_financials.xlsx"
// @Security BearerAuth
// @Router /reports/projects_xlsx [get]
func (h *ReportHandler) ProjectsXLSX(c *gin.Context) {
	data, filename, err := h.exportService.ExportXLSX(c.Request.Context(), listQuery(c, reportFilters...))
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", filename, data)
}
