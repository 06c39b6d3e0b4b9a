package services

import (
	"context"
	"fmt"

	"github.com/sjperalta/devagency-api/internal/models"
	"github.com/sjperalta/devagency-api/internal/repository"
)

// ClientInput carries the editable fields of a client
type ClientInput struct {
	Name    string
	Email   string
	Company string
	Phone   string
	Notes   *string
}

type ClientService struct {
	repo        repository.ClientRepository
	projectRepo repository.ProjectRepository
	audit       *AuditService
}

func NewClientService(repo repository.ClientRepository, projectRepo repository.ProjectRepository, audit *AuditService) *ClientService {
	return &ClientService{repo: repo, projectRepo: projectRepo, audit: audit}
}

func (s *ClientService) FindByID(ctx context.Context, id uint) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "client")
	}
	return client, nil
}

func (s *ClientService) List(ctx context.Context, query *repository.ListQuery) ([]models.Client, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *ClientService) Create(ctx context.Context, in ClientInput) (*models.Client, error) {
	if err := validateContact(&in.Name, &in.Email); err != nil {
		return nil, err
	}
	client := &models.Client{
		Name:    in.Name,
		Email:   in.Email,
		Company: trimmed(in.Company),
		Phone:   trimmed(in.Phone),
		Notes:   trimmedPtr(in.Notes),
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	s.audit.Log(ctx, models.AuditActionCreate, "Client", client.ID, client.Name)
	return client, nil
}

func (s *ClientService) Update(ctx context.Context, id uint, in ClientInput) (*models.Client, error) {
	if err := validateContact(&in.Name, &in.Email); err != nil {
		return nil, err
	}
	client, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	client.Name = in.Name
	client.Email = in.Email
	client.Company = trimmed(in.Company)
	client.Phone = trimmed(in.Phone)
	client.Notes = trimmedPtr(in.Notes)
	if err := s.repo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	s.audit.Log(ctx, models.AuditActionUpdate, "Client", client.ID, client.Name)
	return client, nil
}

// Delete removes a client that owns no projects
func (s *ClientService) Delete(ctx context.Context, id uint) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	count, err := s.projectRepo.CountByClient(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("client has %d project(s): %w", count, ErrInUse)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Log(ctx, models.AuditActionDelete, "Client", id, "deleted client")
	return nil
}

// DeveloperInput carries the editable fields of a developer
type DeveloperInput struct {
	Name  string
	Email string
	Role  string
	Notes *string
}

type DeveloperService struct {
	repo  repository.DeveloperRepository
	audit *AuditService
}

func NewDeveloperService(repo repository.DeveloperRepository, audit *AuditService) *DeveloperService {
	return &DeveloperService{repo: repo, audit: audit}
}

func (s *DeveloperService) FindByID(ctx context.Context, id uint) (*models.Developer, error) {
	developer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "developer")
	}
	return developer, nil
}

func (s *DeveloperService) List(ctx context.Context, query *repository.ListQuery) ([]models.Developer, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *DeveloperService) Create(ctx context.Context, in DeveloperInput) (*models.Developer, error) {
	if err := validateContact(&in.Name, &in.Email); err != nil {
		return nil, err
	}
	developer := &models.Developer{
		Name:  in.Name,
		Email: in.Email,
		Role:  trimmed(in.Role),
		Notes: trimmedPtr(in.Notes),
	}
	if err := s.repo.Create(ctx, developer); err != nil {
		return nil, fmt.Errorf("create developer: %w", err)
	}
	s.audit.Log(ctx, models.AuditActionCreate, "Developer", developer.ID, developer.Name)
	return developer, nil
}

func (s *DeveloperService) Update(ctx context.Context, id uint, in DeveloperInput) (*models.Developer, error) {
	if err := validateContact(&in.Name, &in.Email); err != nil {
		return nil, err
	}
	developer, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	developer.Name = in.Name
	developer.Email = in.Email
	developer.Role = trimmed(in.Role)
	developer.Notes = trimmedPtr(in.Notes)
	if err := s.repo.Update(ctx, developer); err != nil {
		return nil, fmt.Errorf("update developer: %w", err)
	}
	s.audit.Log(ctx, models.AuditActionUpdate, "Developer", developer.ID, developer.Name)
	return developer, nil
}

// Delete removes a developer with no project assignments
func (s *DeveloperService) Delete(ctx context.Context, id uint) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountAssignments(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("developer is assigned to %d project(s): %w", count, ErrInUse)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Log(ctx, models.AuditActionDelete, "Developer", id, "deleted developer")
	return nil
}

// validateContact trims name and email in place and checks them
func validateContact(name, email *string) error {
	verr := &ValidationError{}
	*name = trimmed(*name)
	*email = trimmed(*email)
	if *name == "" {
		verr.Add("name", "is required")
	}
	if *email != "" && !validEmail(*email) {
		verr.Add("email", "is not a valid address")
	}
	return verr.OrNil()
}
