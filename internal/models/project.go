package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Project represents a client engagement delivered by the agency
type Project struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	GUID      string          `gorm:"column:guid;not null;uniqueIndex" json:"guid"`
	Name      string          `gorm:"not null" json:"name"`
	ClientID  uint            `gorm:"not null;index" json:"client_id"`
	Status    string          `gorm:"default:Pending;not null;index" json:"status"`
	StartDate time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate   *time.Time      `gorm:"type:date" json:"end_date"`
	Currency  string          `gorm:"size:3;default:USD;not null" json:"currency"`
	Revenue   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"revenue"`
	Notes     *string         `gorm:"type:text" json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Associations
	Client          Client             `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Payments        []Payment          `gorm:"foreignKey:ProjectID" json:"payments,omitempty"`
	Developers      []ProjectDeveloper `gorm:"foreignKey:ProjectID" json:"developers,omitempty"`
	AdditionalCosts []AdditionalCost   `gorm:"foreignKey:ProjectID" json:"additional_costs,omitempty"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "projects"
}

// Project status constants
const (
	ProjectStatusPending   = "Pending"
	ProjectStatusApproved  = "Approved"
	ProjectStatusOngoing   = "Ongoing"
	ProjectStatusOnHold    = "On Hold"
	ProjectStatusCompleted = "Completed"
	ProjectStatusCancelled = "Cancelled"
	ProjectStatusRejected  = "Rejected"

	// Legacy spellings still sent by older clients
	ProjectStatusFinished = "Finished"
	ProjectStatusActive   = "Active"
)

// ProjectStatuses lists the canonical lifecycle states
var ProjectStatuses = []string{
	ProjectStatusPending,
	ProjectStatusApproved,
	ProjectStatusOngoing,
	ProjectStatusOnHold,
	ProjectStatusCompleted,
	ProjectStatusCancelled,
	ProjectStatusRejected,
}

// NormalizeProjectStatus maps synonyms and case variants onto the canonical
// status names. It returns false for unknown values.
func NormalizeProjectStatus(status string) (string, bool) {
	s := strings.TrimSpace(status)
	switch strings.ToLower(strings.ReplaceAll(s, "_", " ")) {
	case "finished":
		return ProjectStatusCompleted, true
	case "active":
		return ProjectStatusOngoing, true
	case "onhold":
		return ProjectStatusOnHold, true
	}
	for _, canonical := range ProjectStatuses {
		if strings.EqualFold(strings.ReplaceAll(s, "_", " "), canonical) {
			return canonical, true
		}
	}
	return "", false
}

// IsTerminal returns true if no further transitions are allowed
func (p *Project) IsTerminal() bool {
	return p.Status == ProjectStatusCancelled || p.Status == ProjectStatusRejected
}

// IsCompleted returns true if project has been completed
func (p *Project) IsCompleted() bool {
	return p.Status == ProjectStatusCompleted
}

// ProjectResponse is the JSON response format for projects
type ProjectResponse struct {
	ID              uint                       `json:"id"`
	GUID            string                     `json:"guid"`
	Name            string                     `json:"name"`
	ClientID        uint                       `json:"client_id"`
	ClientName      string                     `json:"client_name,omitempty"`
	Status          string                     `json:"status"`
	StartDate       time.Time                  `json:"start_date"`
	EndDate         *time.Time                 `json:"end_date"`
	Currency        string                     `json:"currency"`
	Revenue         decimal.Decimal            `json:"revenue"`
	Notes           *string                    `json:"notes"`
	Payments        []PaymentResponse          `json:"payments"`
	Developers      []ProjectDeveloperResponse `json:"developers"`
	AdditionalCosts []AdditionalCost           `json:"additional_costs"`
	CreatedAt       time.Time                  `json:"created_at"`
}

// ToResponse converts Project to ProjectResponse
func (p *Project) ToResponse() ProjectResponse {
	resp := ProjectResponse{
		ID:              p.ID,
		GUID:            p.GUID,
		Name:            p.Name,
		ClientID:        p.ClientID,
		Status:          p.Status,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		Currency:        p.Currency,
		Revenue:         p.Revenue,
		Notes:           p.Notes,
		Payments:        make([]PaymentResponse, 0, len(p.Payments)),
		Developers:      make([]ProjectDeveloperResponse, 0, len(p.Developers)),
		AdditionalCosts: p.AdditionalCosts,
		CreatedAt:       p.CreatedAt,
	}
	if resp.AdditionalCosts == nil {
		resp.AdditionalCosts = []AdditionalCost{}
	}
	if p.Client.ID != 0 {
		resp.ClientName = p.Client.Name
	}
	for i := range p.Payments {
		resp.Payments = append(resp.Payments, p.Payments[i].ToResponse())
	}
	for i := range p.Developers {
		resp.Developers = append(resp.Developers, p.Developers[i].ToResponse())
	}
	return resp
}

// ProjectStatusEvent records a single status change of a project
type ProjectStatusEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index" json:"project_id"`
	OldStatus string    `gorm:"not null" json:"old_status"`
	NewStatus string    `gorm:"not null" json:"new_status"`
	Reason    string    `gorm:"type:text" json:"reason"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for ProjectStatusEvent
func (ProjectStatusEvent) TableName() string {
	return "project_status_events"
}
