package services

import (
	"github.com/sjperalta/devagency-api/internal/config"
	"github.com/sjperalta/devagency-api/internal/jobs"
	"github.com/sjperalta/devagency-api/internal/repository"
	"github.com/sjperalta/devagency-api/pkg/money"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	Client       *ClientService
	Developer    *DeveloperService
	Project      *ProjectService
	Notification *NotificationService
	Report       *ReportService
	Export       *ExportService
	Audit        *AuditService
	Job          *JobService
	Formatter    *money.Formatter
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, cfg *config.Config) *Services {
	formatter := money.NewFormatter(cfg.MoneySettings())
	auditSvc := NewAuditService(repos.Audit)
	notificationSvc := NewNotificationService(repos.Notification, repos.User, repos.Payment, formatter)
	reportSvc := NewReportService(repos.Project)

	return &Services{
		Auth:         NewAuthService(repos.User, cfg),
		Client:       NewClientService(repos.Client, repos.Project, auditSvc),
		Developer:    NewDeveloperService(repos.Developer, auditSvc),
		Project:      NewProjectService(repos, repos, notificationSvc, auditSvc, worker, cfg.DefaultCurrency),
		Notification: notificationSvc,
		Report:       reportSvc,
		Export:       NewExportService(reportSvc, repos.Project, formatter),
		Audit:        auditSvc,
		Job:          NewJobService(worker, notificationSvc),
		Formatter:    formatter,
	}
}
