package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/devagency-api/internal/middleware"
	"github.com/sjperalta/devagency-api/internal/models"
	"github.com/sjperalta/devagency-api/internal/services"
)

type ClientHandler struct {
	clientService *services.ClientService
}

func NewClientHandler(clientService *services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

type ClientRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Company string  `json:"company"`
	Phone   string  `json:"phone"`
	Notes   *string `json:"notes"`
}

func (r *ClientRequest) toInput() services.ClientInput {
	return services.ClientInput{Name: r.Name, Email: r.Email, Company: r.Company, Phone: r.Phone, Notes: r.Notes}
}

// @Summary List Clients
// @Description Get a paginated list of clients
// @Tags Clients
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by name, email or company"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /clients [get]
func (h *ClientHandler) Index(c *gin.Context) {
	query := listQuery(c)
	clients, total, err := h.clientService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients, "pagination": pagination(query, total)})
}

// @Summary Get Client
// @Tags Clients
// @Produce json
// @Param client_id path int true "Client ID"
// @Success 200 {object} models.Client
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /clients/{client_id} [get]
func (h *ClientHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "client_id")
	if !ok {
		return
	}
	client, err := h.clientService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client})
}

// @Summary Create Client
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body ClientRequest true "Client Data"
// @Success 201 {object} models.Client
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req ClientRequest
	if err := BindNestedOrFlat(c, "client", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	client, err := h.clientService.Create(actorContext(c), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"client": client})
}

// @Summary Update Client
// @Tags Clients
// @Accept json
// @Produce json
// @Param client_id path int true "Client ID"
// @Param request body ClientRequest true "Client Data"
// @Success 200 {object} models.Client
// @Security BearerAuth
// @Router /clients/{client_id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "client_id")
	if !ok {
		return
	}
	var req ClientRequest
	if err := BindNestedOrFlat(c, "client", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	client, err := h.clientService.Update(actorContext(c), id, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client})
}

// @Summary Delete Client
// @Description Delete a client without projects (admin only)
// @Tags Clients
// @Produce json
// @Param client_id path int true "Client ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /clients/{client_id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "client_id")
	if !ok {
		return
	}
	if err := h.clientService.Delete(actorContext(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted"})
}

type DeveloperHandler struct {
	developerService *services.DeveloperService
}

func NewDeveloperHandler(developerService *services.DeveloperService) *DeveloperHandler {
	return &DeveloperHandler{developerService: developerService}
}

type DeveloperRequest struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Role  string  `json:"role" example:"Backend"`
	Notes *string `json:"notes"`
}

func (r *DeveloperRequest) toInput() services.DeveloperInput {
	return services.DeveloperInput{Name: r.Name, Email: r.Email, Role: r.Role, Notes: r.Notes}
}

// @Summary List Developers
// @Tags Developers
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by name or email"
// @Param role query string false "Filter by role"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /developers [get]
func (h *DeveloperHandler) Index(c *gin.Context) {
	query := listQuery(c, "role")
	developers, total, err := h.developerService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	if developers == nil {
		developers = []models.Developer{}
	}
	c.JSON(http.StatusOK, gin.H{"developers": developers, "pagination": pagination(query, total)})
}

// @Summary Get Developer
// @Tags Developers
// @Produce json
// @Param developer_id path int true "Developer ID"
// @Success 200 {object} models.Developer
// @Security BearerAuth
// @Router /developers/{developer_id} [get]
func (h *DeveloperHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "developer_id")
	if !ok {
		return
	}
	developer, err := h.developerService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"developer": developer})
}

// @Summary Create Developer
// @Tags Developers
// @Accept json
// @Produce json
// @Param request body DeveloperRequest true "Developer Data"
// @Success 201 {object} models.Developer
// @Security BearerAuth
// @Router /developers [post]
func (h *DeveloperHandler) Create(c *gin.Context) {
	var req DeveloperRequest
	if err := BindNestedOrFlat(c, "developer", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	developer, err := h.developerService.Create(actorContext(c), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"developer": developer})
}

// @Summary Update Developer
// @Tags Developers
// @Accept json
// @Produce json
// @Param developer_id path int true "Developer ID"
// @Param request body DeveloperRequest true "Developer Data"
// @Success 200 {object} models.Developer
// @Security BearerAuth
// @Router /developers/{developer_id} [put]
func (h *DeveloperHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "developer_id")
	if !ok {
		return
	}
	var req DeveloperRequest
	if err := BindNestedOrFlat(c, "developer", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	developer, err := h.developerService.Update(actorContext(c), id, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"developer": developer})
}

// @Summary Delete Developer
// @Description Delete a developer with no assignments (admin only)
// @Tags Developers
// @Produce json
// @Param developer_id path int true "Developer ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /developers/{developer_id} [delete]
func (h *DeveloperHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "developer_id")
	if !ok {
		return
	}
	if err := h.developerService.Delete(actorContext(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Developer deleted"})
}

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// @Summary List Notifications
// @Description Get a paginated list of notifications for the current user
// @Tags Notifications
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "read or unread"
// @Param notification_type query string false "Filter by type"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) Index(c *gin.Context) {
	userID := middleware.GetUserID(c)
	query := listQuery(c, "status", "notification_type")

	notifications, total, err := h.notificationService.FindByUser(c.Request.Context(), userID, query)
	if err != nil {
		respondError(c, err)
		return
	}
	unread, err := h.notificationService.CountUnread(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, notifications[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": responses,
		"unread_count":  unread,
		"pagination":    pagination(query, total),
	})
}

// @Summary Mark Notification Read
// @Description Mark one of the current user's notifications as read
// @Tags Notifications
// @Produce json
// @Param notification_id path int true "Notification ID"
// @Success 200 {object} models.NotificationResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/{notification_id}/mark_as_read [post]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, ok := paramID(c, "notification_id")
	if !ok {
		return
	}
	notification, err := h.notificationService.MarkAsRead(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notification": notification.ToResponse()})
}

// @Summary Mark All Notifications Read
// @Description Mark all notifications as read for current user
// @Tags Notifications
// @Produce json
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/mark_all_as_read [post]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.notificationService.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary List Audit Logs
// @Description Get a paginated list of system audit logs
// @Tags Audit
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param entity query string false "Project, Payment, Client, Developer, ProjectDeveloper"
// @Param entity_id query int false "Entity ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	query := listQuery(c, "entity", "entity_id")

	logs, total, err := h.auditService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}

	c.JSON(http.StatusOK, gin.H{"audits": logs, "pagination": pagination(query, total)})
}
