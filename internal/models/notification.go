package models

import (
	"time"
)

// Notification is an in-app message for one user, optionally tied to a project
type Notification struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"not null;index" json:"user_id"`
	ProjectID        *uint      `gorm:"index" json:"project_id"`
	Title            string     `gorm:"not null" json:"title"`
	Message          string     `gorm:"not null" json:"message"`
	NotificationType *string    `gorm:"index" json:"notification_type"`
	ReadAt           *time.Time `gorm:"index" json:"read_at"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}

const (
	NotificationTypeProjectStatusChanged = "project_status_changed"
	NotificationTypeProjectCompleted     = "project_completed"
	NotificationTypePaymentOverdue       = "payment_overdue"
)

// NewProjectNotification builds an unread notification about a project
func NewProjectNotification(userID, projectID uint, notifType, title, message string) *Notification {
	return &Notification{
		UserID:           userID,
		ProjectID:        &projectID,
		Title:            title,
		Message:          message,
		NotificationType: &notifType,
	}
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// MarkAsRead records the first time the notification was read
func (n *Notification) MarkAsRead(at time.Time) {
	if n.ReadAt == nil {
		n.ReadAt = &at
	}
}

type NotificationResponse struct {
	ID               uint       `json:"id"`
	ProjectID        *uint      `json:"project_id"`
	Title            string     `json:"title"`
	Message          string     `json:"message"`
	NotificationType *string    `json:"notification_type"`
	Read             bool       `json:"read"`
	ReadAt           *time.Time `json:"read_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (n *Notification) ToResponse() NotificationResponse {
	return NotificationResponse{
		ID:               n.ID,
		ProjectID:        n.ProjectID,
		Title:            n.Title,
		Message:          n.Message,
		NotificationType: n.NotificationType,
		Read:             n.IsRead(),
		ReadAt:           n.ReadAt,
		CreatedAt:        n.CreatedAt,
	}
}
