package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment represents one milestone installment of a project's revenue
type Payment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProjectID uint            `gorm:"not null;index" json:"project_id"`
	Sequence  int             `gorm:"not null" json:"sequence"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	DueDate   time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	Status    string          `gorm:"default:Unpaid;not null;index" json:"status"`
	PaidDate  *time.Time      `gorm:"type:date" json:"paid_date"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Associations
	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Payment status constants
const (
	PaymentStatusPaid   = "Paid"
	PaymentStatusUnpaid = "Unpaid"
)

// IsPaid returns true if the milestone has been collected
func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}

// MayPay returns true if payment can transition to paid
func (p *Payment) MayPay() bool {
	return p.Status == PaymentStatusUnpaid
}

// MayUndo returns true if a paid payment can be reverted
func (p *Payment) MayUndo() bool {
	return p.Status == PaymentStatusPaid
}

// IsOverdue reports whether the milestone is unpaid and its due date lies
// before the calendar day of now. The reminder job queries the same rule.
func (p *Payment) IsOverdue(now time.Time) bool {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return p.Status == PaymentStatusUnpaid && p.DueDate.Before(today)
}

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID        uint            `json:"id"`
	ProjectID uint            `json:"project_id"`
	Sequence  int             `json:"sequence"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   time.Time       `json:"due_date"`
	Status    string          `json:"status"`
	PaidDate  *time.Time      `json:"paid_date"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		ProjectID: p.ProjectID,
		Sequence:  p.Sequence,
		Amount:    p.Amount,
		DueDate:   p.DueDate,
		Status:    p.Status,
		PaidDate:  p.PaidDate,
	}
}
