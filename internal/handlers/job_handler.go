package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/devagency-api/internal/services"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobService *services.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// @Summary Get background job status
// @Description Worker counters plus the last run of each recurring job (e.g. the overdue milestone reminder)
// @Tags Jobs
// @Produce json
// @Success 200 {object} jobs.WorkerStats
// @Security BearerAuth
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": h.jobService.GetStatus()})
}
