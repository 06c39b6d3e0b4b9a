package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sjperalta/devagency-api/internal/finance"
	"github.com/sjperalta/devagency-api/internal/jobs"
	"github.com/sjperalta/devagency-api/internal/models"
	"github.com/sjperalta/devagency-api/internal/repository"
	"github.com/sjperalta/devagency-api/internal/statemachine"
	"github.com/sjperalta/devagency-api/pkg/logger"
	"github.com/sjperalta/devagency-api/pkg/money"
)

// ProjectInput carries the editable fields of a project. On update a nil
// Developers or AdditionalCosts slice leaves that collection untouched; a
// non-nil slice (even empty) replaces it.
type ProjectInput struct {
	Name            string
	ClientID        uint
	Status          string
	StartDate       time.Time
	EndDate         *time.Time
	Currency        string
	Revenue         decimal.Decimal
	Notes           *string
	Developers      []AssignmentInput
	AdditionalCosts []CostInput
}

// AssignmentInput assigns a developer to a project
type AssignmentInput struct {
	DeveloperID   uint
	Cost          decimal.Decimal
	IsAdvancePaid bool
	IsFinalPaid   bool
}

// CostInput is one additional cost line
type CostInput struct {
	Category    string
	Description string
	Amount      decimal.Decimal
}

// PaymentUpdate patches a single milestone. Nil fields are left unchanged.
type PaymentUpdate struct {
	Status   *string
	PaidDate *time.Time
	DueDate  *time.Time
	Amount   *decimal.Decimal
}

// PayoutUpdate patches the payout flags of one developer assignment
type PayoutUpdate struct {
	IsAdvancePaid *bool
	IsFinalPaid   *bool
}

// UpdateResult is returned by ProjectService.Update
type UpdateResult struct {
	Project      *models.Project
	Regenerated  bool
	StatusChange *finance.StatusChange
}

// PaymentUpdateResult is returned by ProjectService.UpdatePayment
type PaymentUpdateResult struct {
	Payment      *models.Payment
	Project      *models.Project
	StatusChange *finance.StatusChange
}

type ProjectService struct {
	repos           *repository.Repositories
	tx              repository.Transactor
	sink            StatusSink
	audit           *AuditService
	worker          *jobs.Worker
	defaultCurrency string
	now             func() time.Time
}

// NewProjectService creates the project service. When worker is nil status
// notifications are delivered inline.
func NewProjectService(repos *repository.Repositories, tx repository.Transactor, sink StatusSink, audit *AuditService, worker *jobs.Worker, defaultCurrency string) *ProjectService {
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}
	return &ProjectService{
		repos:           repos,
		tx:              tx,
		sink:            sink,
		audit:           audit,
		worker:          worker,
		defaultCurrency: defaultCurrency,
		now:             time.Now,
	}
}

func (s *ProjectService) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	project, err := s.repos.Project.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "project")
	}
	return project, nil
}

func (s *ProjectService) List(ctx context.Context, query *repository.ListQuery) ([]models.Project, int64, error) {
	if err := normalizeStatusFilter(query); err != nil {
		return nil, 0, err
	}
	return s.repos.Project.List(ctx, query)
}

// normalizeStatusFilter rewrites a status filter to its canonical spelling
func normalizeStatusFilter(query *repository.ListQuery) error {
	status, ok := query.Filters["status"]
	if !ok || status == "" {
		return nil
	}
	canonical, valid := models.NormalizeProjectStatus(status)
	if !valid {
		return NewValidationError("status", "is not a known project status")
	}
	query.Filters["status"] = canonical
	return nil
}

// Financials computes the per-project figures
func (s *ProjectService) Financials(ctx context.Context, id uint) (*finance.ProjectFinancials, error) {
	project, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := finance.Summarize(project)
	return &summary, nil
}

// StatusHistory lists the recorded status changes of a project, oldest first
func (s *ProjectService) StatusHistory(ctx context.Context, id uint) ([]models.ProjectStatusEvent, error) {
	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repos.StatusEvent.FindByProject(ctx, id)
}

// AvailableStatuses lists the statuses the project may move to next
func (s *ProjectService) AvailableStatuses(project *models.Project) []string {
	return statemachine.NewProjectFSM(project).AvailableStatuses()
}

// Create writes the project, its three derived milestones, the developer
// assignments and the additional costs in one transaction.
func (s *ProjectService) Create(ctx context.Context, in ProjectInput) (*models.Project, error) {
	in, status, err := s.normalize(in, models.ProjectStatusPending)
	if err != nil {
		return nil, err
	}

	payments, err := finance.ScheduleMilestones(in.Revenue, in.StartDate, in.EndDate)
	if err != nil {
		return nil, NewValidationError("revenue", "must not be negative")
	}

	project := &models.Project{
		GUID:      uuid.NewString(),
		Name:      in.Name,
		ClientID:  in.ClientID,
		Status:    status,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Currency:  in.Currency,
		Revenue:   in.Revenue,
		Notes:     in.Notes,
		Payments:  payments,
	}
	if status == models.ProjectStatusCompleted {
		if cerr := finance.CheckProjectCompletion(project); cerr != nil {
			return nil, cerr
		}
	}

	var projectID uint
	err = s.tx.Transaction(ctx, func(repos *repository.Repositories) error {
		if err := s.checkReferences(ctx, repos, in); err != nil {
			return err
		}
		if err := repos.Project.Create(ctx, project); err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		for i := range payments {
			payments[i].ProjectID = project.ID
		}
		if err := repos.Payment.CreateBatch(ctx, payments); err != nil {
			return fmt.Errorf("create milestones: %w", err)
		}
		if err := repos.Project.ReplaceDevelopers(ctx, project.ID, toAssignments(in.Developers)); err != nil {
			return fmt.Errorf("create developer assignments: %w", err)
		}
		if err := repos.Project.ReplaceAdditionalCosts(ctx, project.ID, toCosts(in.AdditionalCosts)); err != nil {
			return fmt.Errorf("create additional costs: %w", err)
		}
		projectID = project.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, models.AuditActionCreate, "Project", created.ID, fmt.Sprintf("created project %q", created.Name))
	logger.Info("Project created", "project_id", created.ID, "revenue", created.Revenue.String())
	return created, nil
}

// Update applies an edit. Milestones are re-derived only when revenue or
// dates changed and the untouched three-milestone schedule is still in place.
// A status change to Completed that fails the payment guard rejects the whole
// edit with a *finance.CompletionError and writes nothing.
func (s *ProjectService) Update(ctx context.Context, id uint, in ProjectInput) (*UpdateResult, error) {
	in, status, err := s.normalize(in, "")
	if err != nil {
		return nil, err
	}

	result := &UpdateResult{}
	err = s.tx.Transaction(ctx, func(repos *repository.Repositories) error {
		project, err := repos.Project.FindByID(ctx, id)
		if err != nil {
			return notFound(err, "project")
		}
		if err := s.checkReferences(ctx, repos, in); err != nil {
			return err
		}

		revenueChanged := !project.Revenue.Equal(in.Revenue)
		datesChanged := !sameDay(project.StartDate, in.StartDate) || !sameDayPtr(project.EndDate, in.EndDate)

		project.Name = in.Name
		project.ClientID = in.ClientID
		project.StartDate = in.StartDate
		project.EndDate = in.EndDate
		project.Currency = in.Currency
		project.Revenue = in.Revenue
		project.Notes = in.Notes

		if finance.ShouldRegenerate(project.Payments, revenueChanged, datesChanged) {
			payments, err := finance.Reschedule(project.Payments, in.Revenue, in.StartDate, in.EndDate)
			if err != nil {
				return fmt.Errorf("reschedule milestones: %w", err)
			}
			project.Payments = payments
			result.Regenerated = true
		}

		if status != "" && status != project.Status {
			change, err := statemachine.NewProjectFSM(project).TransitionTo(ctx, status)
			if err != nil {
				return err
			}
			result.StatusChange = change
		}

		if err := repos.Project.Update(ctx, project); err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		if result.Regenerated {
			for i := range project.Payments {
				if err := repos.Payment.Update(ctx, &project.Payments[i]); err != nil {
					return fmt.Errorf("update milestone %d: %w", project.Payments[i].Sequence, err)
				}
			}
		}
		if in.Developers != nil {
			if err := repos.Project.ReplaceDevelopers(ctx, project.ID, toAssignments(in.Developers)); err != nil {
				return fmt.Errorf("replace developer assignments: %w", err)
			}
		}
		if in.AdditionalCosts != nil {
			if err := repos.Project.ReplaceAdditionalCosts(ctx, project.ID, toCosts(in.AdditionalCosts)); err != nil {
				return fmt.Errorf("replace additional costs: %w", err)
			}
		}
		if err := recordStatusChange(ctx, repos, result.StatusChange); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Project, err = s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, models.AuditActionUpdate, "Project", id, updateDetails(result))
	s.dispatch(result.StatusChange, result.Project.Name)
	return result, nil
}

// UpdatePayment patches one milestone in place. Marking the last milestone
// paid completes the project in the same transaction; reverting a milestone
// of a completed project reopens it.
func (s *ProjectService) UpdatePayment(ctx context.Context, paymentID uint, upd PaymentUpdate) (*PaymentUpdateResult, error) {
	targetStatus, err := normalizePaymentStatus(upd.Status)
	if err != nil {
		return nil, err
	}
	if upd.Amount != nil && upd.Amount.IsNegative() {
		return nil, NewValidationError("amount", "must not be negative")
	}

	result := &PaymentUpdateResult{}
	var action string
	err = s.tx.Transaction(ctx, func(repos *repository.Repositories) error {
		found, err := repos.Payment.FindByID(ctx, paymentID)
		if err != nil {
			return notFound(err, "payment")
		}
		project, err := repos.Project.FindByID(ctx, found.ProjectID)
		if err != nil {
			return notFound(err, "project")
		}

		payment := findPayment(project, paymentID)
		if payment == nil {
			project.Payments = append(project.Payments, *found)
			payment = &project.Payments[len(project.Payments)-1]
		}

		if upd.DueDate != nil {
			payment.DueDate = finance.DateOnly(*upd.DueDate)
		}

		paidFlip, unpaidFlip := false, false
		pfsm := statemachine.NewPaymentFSM(payment)
		switch {
		case targetStatus == models.PaymentStatusPaid && !payment.IsPaid():
			paidOn := s.today()
			if upd.PaidDate != nil {
				paidOn = finance.DateOnly(*upd.PaidDate)
			}
			if err := pfsm.Pay(ctx, paidOn); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidState, err)
			}
			paidFlip = true
		case targetStatus == models.PaymentStatusUnpaid && payment.IsPaid():
			if err := pfsm.Undo(ctx); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidState, err)
			}
			unpaidFlip = true
		case upd.PaidDate != nil:
			if !payment.IsPaid() {
				return NewValidationError("paid_date", "can only be set on a paid milestone")
			}
			paidOn := finance.DateOnly(*upd.PaidDate)
			payment.PaidDate = &paidOn
		}

		if upd.Amount != nil && !payment.Amount.Equal(*upd.Amount) {
			if payment.IsPaid() && !paidFlip {
				return NewValidationError("amount", "cannot change on a paid milestone")
			}
			payment.Amount = *upd.Amount
		}

		if err := repos.Payment.Update(ctx, payment); err != nil {
			return fmt.Errorf("update payment: %w", err)
		}

		switch {
		case paidFlip:
			action = models.AuditActionPay
			result.StatusChange, err = completeIfPaid(ctx, project)
		case unpaidFlip:
			action = models.AuditActionUnpay
			result.StatusChange, err = reopenIfCompleted(ctx, project)
		default:
			action = models.AuditActionUpdate
		}
		if err != nil {
			return err
		}

		if result.StatusChange != nil {
			if err := repos.Project.Update(ctx, project); err != nil {
				return fmt.Errorf("update project status: %w", err)
			}
			if err := recordStatusChange(ctx, repos, result.StatusChange); err != nil {
				return err
			}
		}

		updated := *payment
		result.Payment = &updated
		result.Project = project
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, action, "Payment", paymentID,
		fmt.Sprintf("milestone %d of project %d is %s", result.Payment.Sequence, result.Project.ID, result.Payment.Status))
	s.dispatch(result.StatusChange, result.Project.Name)
	return result, nil
}

// UpdateDeveloperPayout sets the advance and final payout flags of one
// developer assignment. The two flags move independently.
func (s *ProjectService) UpdateDeveloperPayout(ctx context.Context, projectID, assignmentID uint, upd PayoutUpdate) (*models.ProjectDeveloper, error) {
	if upd.IsAdvancePaid == nil && upd.IsFinalPaid == nil {
		return nil, NewValidationError("payout", "is_advance_paid or is_final_paid is required")
	}

	var assignment *models.ProjectDeveloper
	err := s.tx.Transaction(ctx, func(repos *repository.Repositories) error {
		project, err := repos.Project.FindByID(ctx, projectID)
		if err != nil {
			return notFound(err, "project")
		}
		for i := range project.Developers {
			if project.Developers[i].ID == assignmentID {
				assignment = &project.Developers[i]
				break
			}
		}
		if assignment == nil {
			return fmt.Errorf("developer assignment: %w", ErrNotFound)
		}

		if upd.IsAdvancePaid != nil {
			assignment.IsAdvancePaid = *upd.IsAdvancePaid
		}
		if upd.IsFinalPaid != nil {
			assignment.IsFinalPaid = *upd.IsFinalPaid
		}
		if err := repos.Project.UpdateDeveloper(ctx, assignment); err != nil {
			return fmt.Errorf("update developer payout: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	split := finance.SplitPayout(assignment.Cost)
	s.audit.Log(ctx, models.AuditActionUpdate, "ProjectDeveloper", assignment.ID,
		fmt.Sprintf("advance paid=%t (%s), final paid=%t (%s)",
			assignment.IsAdvancePaid, split.Advance.StringFixed(2),
			assignment.IsFinalPaid, split.Remaining.StringFixed(2)))
	return assignment, nil
}

// Delete removes a project and all rows it owns
func (s *ProjectService) Delete(ctx context.Context, id uint) error {
	err := s.tx.Transaction(ctx, func(repos *repository.Repositories) error {
		if _, err := repos.Project.FindByID(ctx, id); err != nil {
			return notFound(err, "project")
		}
		return repos.Project.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.audit.Log(ctx, models.AuditActionDelete, "Project", id, "deleted project")
	return nil
}

// normalize validates input and returns it with canonical values. An empty
// status resolves to defaultStatus.
func (s *ProjectService) normalize(in ProjectInput, defaultStatus string) (ProjectInput, string, error) {
	verr := &ValidationError{}

	in.Name = trimmed(in.Name)
	if in.Name == "" {
		verr.Add("name", "is required")
	}
	if in.ClientID == 0 {
		verr.Add("client_id", "is required")
	}
	if in.StartDate.IsZero() {
		verr.Add("start_date", "is required")
	} else {
		in.StartDate = finance.DateOnly(in.StartDate)
	}
	if in.EndDate != nil {
		end := finance.DateOnly(*in.EndDate)
		in.EndDate = &end
	}
	if in.Revenue.IsNegative() {
		verr.Add("revenue", "must not be negative")
	}
	in.Notes = trimmedPtr(in.Notes)

	if strings.TrimSpace(in.Currency) == "" {
		in.Currency = s.defaultCurrency
	} else if code, err := money.NormalizeCode(in.Currency); err != nil {
		verr.Add("currency", "must be an ISO 4217 code")
	} else {
		in.Currency = code
	}

	status := defaultStatus
	if strings.TrimSpace(in.Status) != "" {
		canonical, ok := models.NormalizeProjectStatus(in.Status)
		if !ok {
			verr.Add("status", "is not a known project status")
		}
		status = canonical
	}

	for i, dev := range in.Developers {
		if dev.DeveloperID == 0 {
			verr.Add(fmt.Sprintf("developers[%d].developer_id", i), "is required")
		}
		if dev.Cost.IsNegative() {
			verr.Add(fmt.Sprintf("developers[%d].cost", i), "must not be negative")
		}
	}
	for i := range in.AdditionalCosts {
		cost := &in.AdditionalCosts[i]
		cost.Category = trimmed(cost.Category)
		if cost.Category == "" {
			cost.Category = models.CostCategoryOther
		}
		if cost.Amount.IsNegative() {
			verr.Add(fmt.Sprintf("additional_costs[%d].amount", i), "must not be negative")
		}
	}

	if err := verr.OrNil(); err != nil {
		return in, "", err
	}
	return in, status, nil
}

// checkReferences verifies that the client and developers exist
func (s *ProjectService) checkReferences(ctx context.Context, repos *repository.Repositories, in ProjectInput) error {
	if _, err := repos.Client.FindByID(ctx, in.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("client_id", "does not exist")
		}
		return err
	}

	if len(in.Developers) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(in.Developers))
	for _, dev := range in.Developers {
		ids = append(ids, dev.DeveloperID)
	}
	found, err := repos.Developer.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	known := make(map[uint]bool, len(found))
	for _, dev := range found {
		known[dev.ID] = true
	}
	verr := &ValidationError{}
	for i, dev := range in.Developers {
		if !known[dev.DeveloperID] {
			verr.Add(fmt.Sprintf("developers[%d].developer_id", i), "does not exist")
		}
	}
	return verr.OrNil()
}

// dispatch hands a committed status change to the notification sink
func (s *ProjectService) dispatch(change *finance.StatusChange, projectName string) {
	if change == nil || s.sink == nil {
		return
	}
	c := *change
	job := func(ctx context.Context) error {
		return s.sink.ProjectStatusChanged(ctx, c, projectName)
	}
	if s.worker == nil {
		if err := job(context.Background()); err != nil {
			logger.Error("Failed to deliver status notification", "project_id", c.ProjectID, "error", err)
		}
		return
	}
	s.worker.EnqueueAsync(job)
}

func (s *ProjectService) today() time.Time {
	return finance.DateOnly(s.now())
}

// completeIfPaid moves an active project to Completed when the guard passes
func completeIfPaid(ctx context.Context, project *models.Project) (*finance.StatusChange, error) {
	pfsm := statemachine.NewProjectFSM(project)
	if !pfsm.Can(statemachine.EventComplete) {
		return nil, nil
	}
	if finance.CheckProjectCompletion(project) != nil {
		return nil, nil
	}
	return pfsm.Complete(ctx)
}

// reopenIfCompleted moves a completed project back to Ongoing
func reopenIfCompleted(ctx context.Context, project *models.Project) (*finance.StatusChange, error) {
	if !project.IsCompleted() {
		return nil, nil
	}
	return statemachine.NewProjectFSM(project).Reopen(ctx)
}

func recordStatusChange(ctx context.Context, repos *repository.Repositories, change *finance.StatusChange) error {
	if change == nil {
		return nil
	}
	event := &models.ProjectStatusEvent{
		ProjectID: change.ProjectID,
		OldStatus: change.OldStatus,
		NewStatus: change.NewStatus,
		Reason:    change.Reason,
	}
	if err := repos.StatusEvent.Create(ctx, event); err != nil {
		return fmt.Errorf("record status change: %w", err)
	}
	return nil
}

func normalizePaymentStatus(status *string) (string, error) {
	if status == nil {
		return "", nil
	}
	switch strings.ToLower(strings.TrimSpace(*status)) {
	case "paid":
		return models.PaymentStatusPaid, nil
	case "unpaid":
		return models.PaymentStatusUnpaid, nil
	}
	return "", NewValidationError("status", "must be Paid or Unpaid")
}

func findPayment(project *models.Project, id uint) *models.Payment {
	for i := range project.Payments {
		if project.Payments[i].ID == id {
			return &project.Payments[i]
		}
	}
	return nil
}

func toAssignments(in []AssignmentInput) []models.ProjectDeveloper {
	out := make([]models.ProjectDeveloper, 0, len(in))
	for _, dev := range in {
		out = append(out, models.ProjectDeveloper{
			DeveloperID:   dev.DeveloperID,
			Cost:          dev.Cost,
			IsAdvancePaid: dev.IsAdvancePaid,
			IsFinalPaid:   dev.IsFinalPaid,
		})
	}
	return out
}

func toCosts(in []CostInput) []models.AdditionalCost {
	out := make([]models.AdditionalCost, 0, len(in))
	for _, cost := range in {
		out = append(out, models.AdditionalCost{
			Category:    cost.Category,
			Description: cost.Description,
			Amount:      cost.Amount,
		})
	}
	return out
}

func sameDay(a, b time.Time) bool {
	return finance.DateOnly(a).Equal(finance.DateOnly(b))
}

func sameDayPtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return sameDay(*a, *b)
}

func updateDetails(result *UpdateResult) string {
	details := "updated project"
	if result.Regenerated {
		details += "; milestones regenerated"
	}
	if result.StatusChange != nil {
		details += fmt.Sprintf("; status %s -> %s", result.StatusChange.OldStatus, result.StatusChange.NewStatus)
	}
	return details
}
