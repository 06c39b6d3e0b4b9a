package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sjperalta/devagency-api/internal/models"
	"github.com/sjperalta/devagency-api/internal/services"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	exportService  *services.ExportService
}

func NewProjectHandler(projectService *services.ProjectService, exportService *services.ExportService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, exportService: exportService}
}

// ProjectRequest is the body of project create and update. Omitting
// developers or additional_costs on update keeps the stored rows; sending
// an array (even empty) replaces them.
type ProjectRequest struct {
	Name            string              `json:"name"`
	ClientID        uint                `json:"client_id"`
	Status          string              `json:"status"`
	StartDate       string              `json:"start_date" example:"2024-01-01"`
	EndDate         *string             `json:"end_date" example:"2024-03-31"`
	Currency        string              `json:"currency" example:"USD"`
	Revenue         decimal.Decimal     `json:"revenue" swaggertype:"string" example:"10000.00"`
	Notes           *string             `json:"notes"`
	Developers      []AssignmentRequest `json:"developers"`
	AdditionalCosts []CostRequest       `json:"additional_costs"`
}

type AssignmentRequest struct {
	DeveloperID   uint            `json:"developer_id"`
	Cost          decimal.Decimal `json:"cost" swaggertype:"string" example:"2500.00"`
	IsAdvancePaid bool            `json:"is_advance_paid"`
	IsFinalPaid   bool            `json:"is_final_paid"`
}

type CostRequest struct {
	Category    string          `json:"category" example:"Infrastructure"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"120.00"`
}

// toInput converts the request into service input, parsing dates
func (r *ProjectRequest) toInput() (services.ProjectInput, error) {
	verr := &services.ValidationError{}
	in := services.ProjectInput{
		Name:     r.Name,
		ClientID: r.ClientID,
		Status:   r.Status,
		Currency: r.Currency,
		Revenue:  r.Revenue,
		Notes:    r.Notes,
	}
	if r.StartDate == "" {
		verr.Add("start_date", "is required")
	} else {
		in.StartDate = parseDate(verr, "start_date", r.StartDate)
	}
	in.EndDate = parseOptionalDate(verr, "end_date", r.EndDate)

	if r.Developers != nil {
		in.Developers = make([]services.AssignmentInput, 0, len(r.Developers))
		for _, d := range r.Developers {
			in.Developers = append(in.Developers, services.AssignmentInput{
				DeveloperID:   d.DeveloperID,
				Cost:          d.Cost,
				IsAdvancePaid: d.IsAdvancePaid,
				IsFinalPaid:   d.IsFinalPaid,
			})
		}
	}
	if r.AdditionalCosts != nil {
		in.AdditionalCosts = make([]services.CostInput, 0, len(r.AdditionalCosts))
		for _, cost := range r.AdditionalCosts {
			in.AdditionalCosts = append(in.AdditionalCosts, services.CostInput{
				Category:    cost.Category,
				Description: cost.Description,
				Amount:      cost.Amount,
			})
		}
	}
	return in, verr.OrNil()
}

// @Summary List Projects
// @Description Get a paginated list of projects
// @Tags Projects
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by name or reference"
// @Param status query string false "Filter by status"
// @Param client_id query int false "Filter by client"
// @Param start_date query string false "Projects starting on or after (YYYY-MM-DD)"
// @Param end_date query string false "Projects starting on or before (YYYY-MM-DD)"
// @Param sort query string false "Sort as field-direction, e.g. start_date-desc"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /projects [get]
func (h *ProjectHandler) Index(c *gin.Context) {
	query := listQuery(c, "status", "client_id", "start_date", "end_date")

	projects, total, err := h.projectService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.ProjectResponse, 0, len(projects))
	for i := range projects {
		responses = append(responses, projects[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"projects": responses, "pagination": pagination(query, total)})
}

// @Summary Get Project
// @Description Get a project with its milestones, developers, costs and next statuses
// @Tags Projects
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /projects/{project_id} [get]
func (h *ProjectHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	project, err := h.projectService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"project":            project.ToResponse(),
		"available_statuses": h.projectService.AvailableStatuses(project),
	})
}

// @Summary Create Project
// @Description Create a project. Three milestones (30/30/40) are derived from revenue and dates.
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body ProjectRequest true "Project Data"
// @Success 201 {object} models.ProjectResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req ProjectRequest
	if err := BindNestedOrFlat(c, "project", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondError(c, err)
		return
	}

	project, err := h.projectService.Create(actorContext(c), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"project": project.ToResponse()})
}

// @Summary Update Project
// @Description Update a project. Untouched schedules are re-derived when revenue or dates change.
// @Tags Projects
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Param request body ProjectRequest true "Project Data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /projects/{project_id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	var req ProjectRequest
	if err := BindNestedOrFlat(c, "project", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.projectService.Update(actorContext(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project":                result.Project.ToResponse(),
		"milestones_regenerated": result.Regenerated,
		"status_change":          result.StatusChange,
	})
}

// @Summary Delete Project
// @Description Delete a project with its milestones, assignments and costs (admin only)
// @Tags Projects
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /projects/{project_id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	if err := h.projectService.Delete(actorContext(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

// @Summary Project Financials
// @Description Revenue, developer cost, additional cost and profit figures of one project
// @Tags Projects
// @Produce json
// @Param project_id path int true "Project ID"
// @Success 200 {object} finance.ProjectFinancials
// @Security BearerAuth
// @Router /projects/{project_id}/financials [get]
func (h *ProjectHandler) Financials(c *gin.Context) {
	id, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	financials, err := h.projectService.Financials(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"financials": financials})
}

// @Summary Project Status History
// @Description Recorded status changes of a project, oldest first
// @Tags Projects
// @Produce json
// @Param project_id path int true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /projects/{project_id}/status_events [get]
func (h *ProjectHandler) StatusEvents(c *gin.Context) {
	id, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	events, err := h.projectService.StatusHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if events == nil {
		events = []models.ProjectStatusEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"status_events": events})
}

// @Summary Project Invoice
// @Description Download the milestone schedule of a project as PDF
// @Tags Projects
// @Produce application/pdf
// @Param project_id path int true "Project ID"
// @Success 200 {file} file "invoice.pdf"
// @Security BearerAuth
// @Router /projects/{project_id}/invoice [get]
func (h *ProjectHandler) Invoice(c *gin.Context) {
	id, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	data, filename, err := h.exportService.InvoicePDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, "application/pdf", filename, data)
}

type PayoutRequest struct {
	IsAdvancePaid *bool `json:"is_advance_paid"`
	IsFinalPaid   *bool `json:"is_final_paid"`
}

// @Summary Update Developer Payout
// @Description Mark the 40% advance and/or the 60% final payout of a developer assignment
// @Tags Projects
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Param assignment_id path int true "Assignment ID"
// @Param request body PayoutRequest true "Payout flags"
// @Success 200 {object} models.ProjectDeveloperResponse
// @Security BearerAuth
// @Router /projects/{project_id}/developers/{assignment_id} [patch]
func (h *ProjectHandler) UpdateDeveloperPayout(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	assignmentID, ok := paramID(c, "assignment_id")
	if !ok {
		return
	}
	var req PayoutRequest
	if err := BindNestedOrFlat(c, "developer", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := h.projectService.UpdateDeveloperPayout(actorContext(c), projectID, assignmentID, services.PayoutUpdate{
		IsAdvancePaid: req.IsAdvancePaid,
		IsFinalPaid:   req.IsFinalPaid,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"developer": assignment.ToResponse(),
		"message":   fmt.Sprintf("Payout flags updated for assignment %d", assignment.ID),
	})
}
