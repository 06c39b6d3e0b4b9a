package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	db *gorm.DB

	User         UserRepository
	Client       ClientRepository
	Developer    DeveloperRepository
	Project      ProjectRepository
	Payment      PaymentRepository
	StatusEvent  StatusEventRepository
	Notification NotificationRepository
	Audit        AuditRepository
}

// Transactor runs a unit of work inside a single database transaction
type Transactor interface {
	Transaction(ctx context.Context, fn func(repos *Repositories) error) error
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:           db,
		User:         NewUserRepository(db),
		Client:       NewClientRepository(db),
		Developer:    NewDeveloperRepository(db),
		Project:      NewProjectRepository(db),
		Payment:      NewPaymentRepository(db),
		StatusEvent:  NewStatusEventRepository(db),
		Notification: NewNotificationRepository(db),
		Audit:        NewAuditRepository(db),
	}
}

// Transaction runs fn with repositories bound to one transaction. Returning
// an error from fn rolls back every write made through those repositories.
func (r *Repositories) Transaction(ctx context.Context, fn func(repos *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// sortableColumns guards ORDER BY against arbitrary input
var sortableColumns = map[string]bool{
	"id":         true,
	"name":       true,
	"status":     true,
	"revenue":    true,
	"start_date": true,
	"end_date":   true,
	"created_at": true,
	"updated_at": true,
}

func applyListQuery(db *gorm.DB, query *ListQuery, defaultOrder string) *gorm.DB {
	if query.SortBy != "" && sortableColumns[query.SortBy] {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order(defaultOrder)
	}

	if query.PerPage > 0 {
		page := query.Page
		if page < 1 {
			page = 1
		}
		db = db.Offset((page - 1) * query.PerPage).Limit(query.PerPage)
	}
	return db
}
