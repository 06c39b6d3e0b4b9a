package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sjperalta/devagency-api/internal/services"
)

type PaymentHandler struct {
	projectService *services.ProjectService
}

func NewPaymentHandler(projectService *services.ProjectService) *PaymentHandler {
	return &PaymentHandler{projectService: projectService}
}

// UpdatePaymentRequest patches one milestone. Omitted fields are unchanged.
type UpdatePaymentRequest struct {
	Status   *string          `json:"status" example:"Paid"`
	PaidDate *string          `json:"paid_date" example:"2024-02-15"`
	DueDate  *string          `json:"due_date" example:"2024-02-01"`
	Amount   *decimal.Decimal `json:"amount" swaggertype:"string" example:"3000.00"`
}

func (r *UpdatePaymentRequest) toUpdate() (services.PaymentUpdate, error) {
	verr := &services.ValidationError{}
	upd := services.PaymentUpdate{
		Status:   r.Status,
		PaidDate: parseOptionalDate(verr, "paid_date", r.PaidDate),
		DueDate:  parseOptionalDate(verr, "due_date", r.DueDate),
		Amount:   r.Amount,
	}
	return upd, verr.OrNil()
}

// @Summary Update Payment
// @Description Mark a milestone paid or unpaid, or move its due date or amount. Paying the last milestone completes the project; reverting one reopens a completed project.
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Param request body UpdatePaymentRequest true "Milestone changes"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id} [patch]
func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "payment_id")
	if !ok {
		return
	}
	var req UpdatePaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	upd, err := req.toUpdate()
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.projectService.UpdatePayment(actorContext(c), id, upd)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment":        result.Payment.ToResponse(),
		"project_status": result.Project.Status,
		"status_change":  result.StatusChange,
	})
}
