package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sjperalta/devagency-api/internal/finance"
	"github.com/sjperalta/devagency-api/internal/models"
	"github.com/sjperalta/devagency-api/internal/repository"
	"github.com/sjperalta/devagency-api/pkg/logger"
	"github.com/sjperalta/devagency-api/pkg/money"
)

// StatusSink receives project status changes once they are committed
type StatusSink interface {
	ProjectStatusChanged(ctx context.Context, change finance.StatusChange, projectName string) error
}

type NotificationService struct {
	repo        repository.NotificationRepository
	userRepo    repository.UserRepository
	paymentRepo repository.PaymentRepository
	formatter   *money.Formatter
	now         func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository, paymentRepo repository.PaymentRepository, formatter *money.Formatter) *NotificationService {
	return &NotificationService{
		repo:        repo,
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		formatter:   formatter,
		now:         time.Now,
	}
}

func (s *NotificationService) FindByUser(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Notification, int64, error) {
	return s.repo.FindByUser(ctx, userID, query)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkAsRead marks one of the user's notifications as read
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id uint) (*models.Notification, error) {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "notification")
	}
	if notification.UserID != userID {
		return nil, fmt.Errorf("notification: %w", ErrNotFound)
	}
	if notification.IsRead() {
		return notification, nil
	}
	notification.MarkAsRead(s.now())
	if err := s.repo.Update(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// NotifyAdmins creates one in-app notification per active admin
func (s *NotificationService) NotifyAdmins(ctx context.Context, projectID uint, title, message, notifType string) error {
	admins, err := s.userRepo.FindAdmins(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, admin := range admins {
		notification := models.NewProjectNotification(admin.ID, projectID, notifType, title, message)
		if err := s.repo.Create(ctx, notification); err != nil {
			errs = append(errs, fmt.Errorf("notify admin %d: %w", admin.ID, err))
		}
	}
	return errors.Join(errs...)
}

// ProjectStatusChanged notifies admins about a committed status change
func (s *NotificationService) ProjectStatusChanged(ctx context.Context, change finance.StatusChange, projectName string) error {
	notifType := models.NotificationTypeProjectStatusChanged
	title := "Project status changed"
	if change.NewStatus == models.ProjectStatusCompleted {
		notifType = models.NotificationTypeProjectCompleted
		title = "Project completed"
	}

	message := fmt.Sprintf("%s moved from %s to %s (%s)", projectName, change.OldStatus, change.NewStatus, change.Reason)
	return s.NotifyAdmins(ctx, change.ProjectID, title, message, notifType)
}

// CheckOverduePayments notifies admins about unpaid milestones past their due
// date. Each admin gets at most one reminder per project per day.
func (s *NotificationService) CheckOverduePayments(ctx context.Context) error {
	now := s.now()
	overdue, err := s.paymentRepo.FindOverdue(ctx, finance.DateOnly(now))
	if err != nil {
		return fmt.Errorf("find overdue payments: %w", err)
	}
	if len(overdue) == 0 {
		return nil
	}

	admins, err := s.userRepo.FindAdmins(ctx)
	if err != nil {
		return err
	}

	since := now.Add(-24 * time.Hour)
	notifType := models.NotificationTypePaymentOverdue
	sent := 0
	var errs []error
	for _, payment := range overdue {
		projectID := payment.ProjectID
		message := fmt.Sprintf("Milestone %d of %s (%s) was due on %s",
			payment.Sequence,
			payment.Project.Name,
			s.formatter.Format(payment.Amount, payment.Project.Currency),
			payment.DueDate.Format("2006-01-02"),
		)

		for _, admin := range admins {
			exists, err := s.repo.ExistsSince(ctx, admin.ID, projectID, notifType, since)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if exists {
				continue
			}
			notification := models.NewProjectNotification(admin.ID, projectID, notifType, "Payment overdue", message)
			if err := s.repo.Create(ctx, notification); err != nil {
				errs = append(errs, err)
				continue
			}
			sent++
		}
	}

	logger.Info("[Job] Overdue milestone check finished", "overdue", len(overdue), "notifications", sent)
	return errors.Join(errs...)
}
