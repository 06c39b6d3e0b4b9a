package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Developer is a contractor the agency assigns to projects
type Developer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"index" json:"email"`
	Role      string    `json:"role"`
	Notes     *string   `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Developer
func (Developer) TableName() string {
	return "developers"
}

// ProjectDeveloper assigns a developer to a project with a contracted cost.
// The advance and final flags are released independently.
type ProjectDeveloper struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ProjectID     uint            `gorm:"not null;index" json:"project_id"`
	DeveloperID   uint            `gorm:"not null;index" json:"developer_id"`
	Cost          decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"cost"`
	IsAdvancePaid bool            `gorm:"not null;default:false" json:"is_advance_paid"`
	IsFinalPaid   bool            `gorm:"not null;default:false" json:"is_final_paid"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Associations
	Developer Developer `gorm:"foreignKey:DeveloperID" json:"developer,omitempty"`
}

// TableName specifies the table name for ProjectDeveloper
func (ProjectDeveloper) TableName() string {
	return "project_developers"
}

// ProjectDeveloperResponse is the JSON response format for developer assignments
type ProjectDeveloperResponse struct {
	ID            uint            `json:"id"`
	DeveloperID   uint            `json:"developer_id"`
	DeveloperName string          `json:"developer_name,omitempty"`
	Cost          decimal.Decimal `json:"cost"`
	IsAdvancePaid bool            `json:"is_advance_paid"`
	IsFinalPaid   bool            `json:"is_final_paid"`
}

// ToResponse converts ProjectDeveloper to ProjectDeveloperResponse
func (d *ProjectDeveloper) ToResponse() ProjectDeveloperResponse {
	resp := ProjectDeveloperResponse{
		ID:            d.ID,
		DeveloperID:   d.DeveloperID,
		Cost:          d.Cost,
		IsAdvancePaid: d.IsAdvancePaid,
		IsFinalPaid:   d.IsFinalPaid,
	}
	if d.Developer.ID != 0 {
		resp.DeveloperName = d.Developer.Name
	}
	return resp
}

// AdditionalCost is a non-developer expense booked against a project
type AdditionalCost struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ProjectID   uint            `gorm:"not null;index" json:"project_id"`
	Category    string          `gorm:"not null" json:"category"`
	Description string          `gorm:"type:text" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName specifies the table name for AdditionalCost
func (AdditionalCost) TableName() string {
	return "additional_costs"
}

// Additional cost categories offered by the UI. Free-form labels are also accepted.
const (
	CostCategoryThirdParty     = "Third Party Cost"
	CostCategoryInfrastructure = "Infrastructure"
	CostCategoryLicensing      = "Licensing"
	CostCategoryMarketing      = "Marketing"
	CostCategoryOther          = "Other"
)
