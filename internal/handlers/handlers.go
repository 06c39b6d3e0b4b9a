package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/devagency-api/internal/finance"
	"github.com/sjperalta/devagency-api/internal/middleware"
	"github.com/sjperalta/devagency-api/internal/repository"
	"github.com/sjperalta/devagency-api/internal/services"
	"github.com/sjperalta/devagency-api/internal/statemachine"
	"github.com/sjperalta/devagency-api/pkg/logger"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Client       *ClientHandler
	Developer    *DeveloperHandler
	Project      *ProjectHandler
	Payment      *PaymentHandler
	Notification *NotificationHandler
	Report       *ReportHandler
	Audit        *AuditHandler
	Job          *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(svcs.Auth),
		User:         NewUserHandler(svcs.Auth),
		Client:       NewClientHandler(svcs.Client),
		Developer:    NewDeveloperHandler(svcs.Developer),
		Project:      NewProjectHandler(svcs.Project, svcs.Export),
		Payment:      NewPaymentHandler(svcs.Project),
		Notification: NewNotificationHandler(svcs.Notification),
		Report:       NewReportHandler(svcs.Report, svcs.Export),
		Audit:        NewAuditHandler(svcs.Audit),
		Job:          NewJobHandler(svcs.Job),
	}
}

const dateLayout = "2006-01-02"

// actorContext returns the request context carrying the signed-in user for
// the audit trail
func actorContext(c *gin.Context) context.Context {
	return services.WithActor(c.Request.Context(), services.Actor{
		UserID:    middleware.GetUserID(c),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
}

// paramID parses a positive numeric path parameter. It writes a 400 response
// and returns false when the value is invalid.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s", name)})
		return 0, false
	}
	return uint(id), true
}

// listQuery reads paging, search and sort parameters. Sort uses the
// "field-direction" format, e.g. sort=start_date-desc.
func listQuery(c *gin.Context, filters ...string) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	if search := c.Query("search"); search != "" {
		query.Search = search
	}

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	for _, name := range filters {
		if value := c.Query(name); value != "" {
			query.Filters[name] = value
		}
	}
	return query
}

func pagination(query *repository.ListQuery, total int64) gin.H {
	perPage := int64(query.PerPage)
	if perPage <= 0 {
		perPage = 20
	}
	return gin.H{
		"page":        query.Page,
		"per_page":    query.PerPage,
		"total":       total,
		"total_pages": (total + perPage - 1) / perPage,
	}
}

// parseDate parses a YYYY-MM-DD value. Failures are recorded on verr.
func parseDate(verr *services.ValidationError, field, value string) time.Time {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		verr.Add(field, "must be a date in YYYY-MM-DD format")
	}
	return t
}

// parseOptionalDate is parseDate for nullable fields. Nil and blank values
// yield nil.
func parseOptionalDate(verr *services.ValidationError, field string, value *string) *time.Time {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	t := parseDate(verr, field, *value)
	return &t
}

// respondError maps service errors onto HTTP responses
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var cerr *finance.CompletionError
	var terr *statemachine.TransitionError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": verr.Fields})
	case errors.As(err, &cerr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":         "Project cannot be completed",
			"reason":        cerr.Reason,
			"paid_amount":   cerr.PaidAmount,
			"target_amount": cerr.TargetAmount,
		})
	case errors.As(err, &terr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": terr.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInUse), errors.Is(err, services.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInactiveAccount):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		logger.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// sendFile writes a generated download
func sendFile(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, contentType, data)
}
