package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sjperalta/devagency-api/internal/models"
)

// ClientRepository defines the interface for client data access
type ClientRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Client, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Client, int64, error)
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) FindByID(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).First(&client, id).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(client).Error
}

func (r *clientRepository) Update(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Client{}, id).Error
}

func (r *clientRepository) List(ctx context.Context, query *ListQuery) ([]models.Client, int64, error) {
	var clients []models.Client
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Client{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR email ILIKE ? OR company ILIKE ?", search, search, search)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := applyListQuery(db, query, "name ASC").Find(&clients).Error
	return clients, total, err
}

// DeveloperRepository defines the interface for developer data access
type DeveloperRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Developer, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Developer, error)
	Create(ctx context.Context, developer *models.Developer) error
	Update(ctx context.Context, developer *models.Developer) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Developer, int64, error)
	CountAssignments(ctx context.Context, developerID uint) (int64, error)
}

type developerRepository struct {
	db *gorm.DB
}

// NewDeveloperRepository creates a new developer repository
func NewDeveloperRepository(db *gorm.DB) DeveloperRepository {
	return &developerRepository{db: db}
}

func (r *developerRepository) FindByID(ctx context.Context, id uint) (*models.Developer, error) {
	var developer models.Developer
	err := r.db.WithContext(ctx).First(&developer, id).Error
	if err != nil {
		return nil, err
	}
	return &developer, nil
}

func (r *developerRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Developer, error) {
	var developers []models.Developer
	if len(ids) == 0 {
		return developers, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&developers).Error
	return developers, err
}

func (r *developerRepository) Create(ctx context.Context, developer *models.Developer) error {
	return r.db.WithContext(ctx).Create(developer).Error
}

func (r *developerRepository) Update(ctx context.Context, developer *models.Developer) error {
	return r.db.WithContext(ctx).Save(developer).Error
}

func (r *developerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Developer{}, id).Error
}

func (r *developerRepository) List(ctx context.Context, query *ListQuery) ([]models.Developer, int64, error) {
	var developers []models.Developer
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Developer{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR email ILIKE ? OR role ILIKE ?", search, search, search)
	}
	if val, ok := query.Filters["role"]; ok && val != "" {
		db = db.Where("role = ?", val)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := applyListQuery(db, query, "name ASC").Find(&developers).Error
	return developers, total, err
}

func (r *developerRepository) CountAssignments(ctx context.Context, developerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProjectDeveloper{}).
		Where("developer_id = ?", developerID).
		Count(&count).Error
	return count, err
}
