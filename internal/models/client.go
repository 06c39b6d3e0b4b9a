package models

import (
	"time"
)

// Client is a customer that commissions projects
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"index" json:"email"`
	Company   string    `json:"company"`
	Phone     string    `json:"phone"`
	Notes     *string   `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Projects []Project `gorm:"foreignKey:ClientID" json:"projects,omitempty"`
}

// TableName specifies the table name for Client
func (Client) TableName() string {
	return "clients"
}
