package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sjperalta/devagency-api/internal/models"
)

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Project, int64, error)
	FindAllWithDetails(ctx context.Context, query *ListQuery) ([]models.Project, error)
	CountByClient(ctx context.Context, clientID uint) (int64, error)
	ReplaceDevelopers(ctx context.Context, projectID uint, devs []models.ProjectDeveloper) error
	ReplaceAdditionalCosts(ctx context.Context, projectID uint, costs []models.AdditionalCost) error
	UpdateDeveloper(ctx context.Context, dev *models.ProjectDeveloper) error
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Client").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Preload("Developers", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Developers.Developer").
		Preload("AdditionalCosts", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
}

func (r *projectRepository) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := withDetails(r.db.WithContext(ctx)).First(&project, id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Create inserts the project row only. Payments, developers and costs are
// written by their own repository calls inside the same transaction.
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(project).Error
}

func (r *projectRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	for _, child := range []interface{}{
		&models.Payment{},
		&models.ProjectDeveloper{},
		&models.AdditionalCost{},
		&models.ProjectStatusEvent{},
	} {
		if err := db.Where("project_id = ?", id).Delete(child).Error; err != nil {
			return err
		}
	}
	return db.Delete(&models.Project{}, id).Error
}

func (r *projectRepository) filtered(ctx context.Context, query *ListQuery) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&models.Project{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("projects.name ILIKE ? OR projects.guid ILIKE ?", search, search)
	}
	if val, ok := query.Filters["status"]; ok && val != "" {
		db = db.Where("projects.status = ?", val)
	}
	if val, ok := query.Filters["client_id"]; ok && val != "" {
		db = db.Where("projects.client_id = ?", val)
	}
	if val, ok := query.Filters["start_date"]; ok && val != "" {
		db = db.Where("projects.start_date >= ?", val)
	}
	if val, ok := query.Filters["end_date"]; ok && val != "" {
		db = db.Where("projects.start_date <= ?", val)
	}
	return db
}

func (r *projectRepository) List(ctx context.Context, query *ListQuery) ([]models.Project, int64, error) {
	var projects []models.Project
	var total int64

	db := r.filtered(ctx, query)

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = applyListQuery(db, query, "projects.created_at DESC")
	err := withDetails(db).Find(&projects).Error
	return projects, total, err
}

// FindAllWithDetails returns every matching project, unpaginated, for reports
func (r *projectRepository) FindAllWithDetails(ctx context.Context, query *ListQuery) ([]models.Project, error) {
	var projects []models.Project
	db := r.filtered(ctx, query).Order("projects.start_date ASC")
	err := withDetails(db).Find(&projects).Error
	return projects, err
}

func (r *projectRepository) CountByClient(ctx context.Context, clientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("client_id = ?", clientID).
		Count(&count).Error
	return count, err
}

// ReplaceDevelopers deletes every assignment of the project and inserts devs
func (r *projectRepository) ReplaceDevelopers(ctx context.Context, projectID uint, devs []models.ProjectDeveloper) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("project_id = ?", projectID).Delete(&models.ProjectDeveloper{}).Error; err != nil {
		return err
	}
	if len(devs) == 0 {
		return nil
	}
	for i := range devs {
		devs[i].ID = 0
		devs[i].ProjectID = projectID
	}
	return db.Omit(clause.Associations).Create(&devs).Error
}

// ReplaceAdditionalCosts deletes every cost row of the project and inserts costs
func (r *projectRepository) ReplaceAdditionalCosts(ctx context.Context, projectID uint, costs []models.AdditionalCost) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("project_id = ?", projectID).Delete(&models.AdditionalCost{}).Error; err != nil {
		return err
	}
	if len(costs) == 0 {
		return nil
	}
	for i := range costs {
		costs[i].ID = 0
		costs[i].ProjectID = projectID
	}
	return db.Create(&costs).Error
}

func (r *projectRepository) UpdateDeveloper(ctx context.Context, dev *models.ProjectDeveloper) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(dev).Error
}

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Payment, error)
	FindByProject(ctx context.Context, projectID uint) ([]models.Payment, error)
	CreateBatch(ctx context.Context, payments []models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	FindOverdue(ctx context.Context, asOf time.Time) ([]models.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByProject(ctx context.Context, projectID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("sequence ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) CreateBatch(ctx context.Context, payments []models.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&payments).Error
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(payment).Error
}

// FindOverdue returns unpaid milestones due before asOf on projects that are
// still active
func (r *paymentRepository) FindOverdue(ctx context.Context, asOf time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Joins("Project").
		Where("payments.status = ? AND payments.due_date < ?", models.PaymentStatusUnpaid, asOf).
		Where("\"Project\".status NOT IN ?", []string{
			models.ProjectStatusCancelled,
			models.ProjectStatusRejected,
			models.ProjectStatusCompleted,
		}).
		Order("payments.due_date ASC").
		Find(&payments).Error
	return payments, err
}

// StatusEventRepository stores project status history
type StatusEventRepository interface {
	Create(ctx context.Context, event *models.ProjectStatusEvent) error
	FindByProject(ctx context.Context, projectID uint) ([]models.ProjectStatusEvent, error)
}

type statusEventRepository struct {
	db *gorm.DB
}

// NewStatusEventRepository creates a new status event repository
func NewStatusEventRepository(db *gorm.DB) StatusEventRepository {
	return &statusEventRepository{db: db}
}

func (r *statusEventRepository) Create(ctx context.Context, event *models.ProjectStatusEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *statusEventRepository) FindByProject(ctx context.Context, projectID uint) ([]models.ProjectStatusEvent, error) {
	var events []models.ProjectStatusEvent
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	return events, err
}
