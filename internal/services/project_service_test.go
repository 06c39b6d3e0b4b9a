package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/devagency-api/internal/finance"
	"github.com/sjperalta/devagency-api/internal/models"
	"github.com/sjperalta/devagency-api/internal/statemachine"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func newProjectFixture(t *testing.T) (*ProjectService, *memStore, *recordingSink) {
	t.Helper()
	store := newMemStore()
	store.clients[1] = models.Client{ID: 1, Name: "Acme"}
	store.developers[2] = models.Developer{ID: 2, Name: "Ana"}
	store.developers[3] = models.Developer{ID: 3, Name: "Bo"}
	store.nextID = 100

	sink := &recordingSink{}
	repos := store.repos()
	svc := NewProjectService(repos, store, sink, NewAuditService(repos.Audit), nil, "USD")
	svc.now = func() time.Time { return store.now }
	return svc, store, sink
}

func baseInput() ProjectInput {
	end := day(2024, time.January, 31)
	return ProjectInput{
		Name:      "Website",
		ClientID:  1,
		StartDate: day(2024, time.January, 1),
		EndDate:   &end,
		Revenue:   dec("10000"),
		Developers: []AssignmentInput{
			{DeveloperID: 2, Cost: dec("3000")},
			{DeveloperID: 3, Cost: dec("2000"), IsAdvancePaid: true},
		},
		AdditionalCosts: []CostInput{
			{Category: models.CostCategoryInfrastructure, Description: "hosting", Amount: dec("500")},
		},
	}
}

func actorCtx() context.Context {
	return WithActor(context.Background(), Actor{UserID: 9, IP: "127.0.0.1"})
}

func mustCreate(t *testing.T, svc *ProjectService, in ProjectInput) *models.Project {
	t.Helper()
	project, err := svc.Create(actorCtx(), in)
	require.NoError(t, err)
	return project
}

func pay(t *testing.T, svc *ProjectService, paymentID uint) *PaymentUpdateResult {
	t.Helper()
	res, err := svc.UpdatePayment(actorCtx(), paymentID, PaymentUpdate{Status: strPtr("Paid")})
	require.NoError(t, err)
	return res
}

func amounts(payments []models.Payment) []string {
	out := make([]string, len(payments))
	for i, p := range payments {
		out[i] = p.Amount.StringFixed(2)
	}
	return out
}

func TestProjectService_Create(t *testing.T) {
	svc, store, _ := newProjectFixture(t)

	project := mustCreate(t, svc, baseInput())

	assert.Equal(t, models.ProjectStatusPending, project.Status)
	assert.Equal(t, "USD", project.Currency)
	assert.Len(t, project.GUID, 36)
	assert.Equal(t, "Acme", project.Client.Name)

	require.Len(t, project.Payments, 3)
	assert.Equal(t, []string{"3000.00", "3000.00", "4000.00"}, amounts(project.Payments))
	assert.Equal(t, day(2024, time.January, 1), project.Payments[0].DueDate)
	assert.Equal(t, day(2024, time.January, 16), project.Payments[1].DueDate)
	assert.Equal(t, day(2024, time.January, 31), project.Payments[2].DueDate)
	for _, p := range project.Payments {
		assert.Equal(t, models.PaymentStatusUnpaid, p.Status)
		assert.Nil(t, p.PaidDate)
	}

	require.Len(t, project.Developers, 2)
	assert.Equal(t, "Ana", project.Developers[0].Developer.Name)
	assert.True(t, project.Developers[1].IsAdvancePaid)
	require.Len(t, project.AdditionalCosts, 1)
	assert.True(t, project.AdditionalCosts[0].Amount.Equal(dec("500")))

	require.Len(t, store.audits, 1)
	assert.Equal(t, models.AuditActionCreate, store.audits[0].Action)
	assert.Equal(t, uint(9), store.audits[0].UserID)
}

func TestProjectService_Create_NormalizesInput(t *testing.T) {
	svc, _, _ := newProjectFixture(t)
	in := baseInput()
	in.Status = "active"
	in.Currency = "eur"
	in.EndDate = nil
	in.Name = "  Mobile app  "

	project := mustCreate(t, svc, in)

	assert.Equal(t, models.ProjectStatusOngoing, project.Status)
	assert.Equal(t, "EUR", project.Currency)
	assert.Equal(t, "Mobile app", project.Name)
	assert.Nil(t, project.EndDate)
	assert.Equal(t, day(2024, time.February, 1), project.Payments[2].DueDate)
}

func TestProjectService_Create_ValidationWritesNothing(t *testing.T) {
	svc, store, _ := newProjectFixture(t)
	in := baseInput()
	in.Name = " "
	in.Revenue = dec("-1")
	in.Currency = "dollars"
	in.Developers[0].Cost = dec("-5")

	_, err := svc.Create(actorCtx(), in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "revenue")
	assert.Contains(t, verr.Fields, "currency")
	assert.Contains(t, verr.Fields, "developers[0].cost")
	assert.Empty(t, store.projects)
	assert.Empty(t, store.payments)
}

func TestProjectService_Create_UnknownReferences(t *testing.T) {
	svc, store, _ := newProjectFixture(t)

	in := baseInput()
	in.ClientID = 99
	_, err := svc.Create(actorCtx(), in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "client_id")

	in = baseInput()
	in.Developers = append(in.Developers, AssignmentInput{DeveloperID: 42, Cost: dec("10")})
	_, err = svc.Create(actorCtx(), in)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "developers[2].developer_id")

	assert.Empty(t, store.projects)
}

func TestProjectService_Create_CompletedIsGuarded(t *testing.T) {
	svc, store, _ := newProjectFixture(t)
	in := baseInput()
	in.Status = "Finished"

	_, err := svc.Create(actorCtx(), in)

	var cerr *finance.CompletionError
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.TargetAmount.Equal(dec("10000")))
	assert.True(t, cerr.PaidAmount.IsZero())
	assert.Empty(t, store.projects)
}

func TestProjectService_Create_RollsBackOnFailure(t *testing.T) {
	svc, store, _ := newProjectFixture(t)
	store.failOn["Project.ReplaceAdditionalCosts"] = errBoom

	_, err := svc.Create(actorCtx(), baseInput())

	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, store.projects)
	assert.Empty(t, store.payments)
	assert.Empty(t, store.assignments)
}

func TestProjectService_Update_RegeneratesUnpaidSchedule(t *testing.T) {
	svc, store, _ := newProjectFixture(t)
	created := mustCreate(t, svc, baseInput())
	ids := []uint{created.Payments[0].ID, created.Payments[1].ID, created.Payments[2].ID}

	in := baseInput()
	in.Revenue = dec("20000")
	res, err := svc.Update(actorCtx(), created.ID, in)

	require.NoError(t, err)
	assert.True(t, res.Regenerated)
	assert.Nil(t, res.StatusChange)
	assert.Equal(t, []string{"6000.00", "6000.00", "8000.00"}, amounts(res.Project.Payments))
	assert.Equal(t, ids, []uint{res.Project.Payments[0].ID, res.Project.Payments[1].ID, res.Project.Payments[2].ID})
	assert.Len(t, store.payments, 3)
}

func TestProjectService_Update_DateChangeMovesDueDates(t *testing.T) {
	svc, _, _ := newProjectFixture(t)
	created := mustCreate(t, svc, baseInput())

	in := baseInput()
	end := day(2024, time.February, 29)
	in.EndDate = &end
	res, err := svc.Update(actorCtx(), created.ID, in)

	require.NoError(t, err)
	assert.True(t, res.Regenerated)
	assert.Equal(t, day(2024, time.January, 30), res.Project.Payments[1].DueDate)
	assert.Equal(t, end, res.Project.Payments[2].DueDate)
	assert.Equal(t, []string{"3000.00", "3000.00", "4000.00"}, amounts(res.Project.Payments))
}

func TestProjectService_Update_NoScheduleChangeWithoutRevenueOrDateEdit(t *testing.T) {
	svc, _, _ := newProjectFixture(t)
	created := mustCreate(t, svc, baseInput())

	in := baseInput()
	in.Name = "Website v2"
	res, err := svc.Update(actorCtx(), created.ID, in)

	require.NoError(t, err)
	assert.False(t, res.Regenerated)
	assert.Equal(t, "Website v2", res.Project.Name)
}

func TestProjectService_Update_PaidMilestoneFreezesSchedule(t *testing.T) {
	svc, _, _ := newProjectFixture(t)
	created := mustCreate(t, svc, baseInput())
	pay(t, svc, created.Payments[0].ID)

	in := baseInput()
	in.Revenue = dec("20000")
	res, err := svc.Update(actorCtx(), created.ID, in)

	require.NoError(t, err)
	assert.False(t, res.Regenerated)
	assert.True(t, res.Project.Revenue.Equal(dec("20000")))
	assert.Equal(t, []string{"3000.00", "3000.00", "4000.00"}, amounts(res.Project.Payments))
}

func TestProjectService_Update_ReplacesCollections(t *testing.T) {
	svc, store, _ := newProjectFixture(t)
	created := mustCreate(t, svc, baseInput())

	in := baseInput()
	in.Developers = nil
	in.AdditionalCosts = []CostInput{}
	res, err := svc.Update(actorCtx(), created.ID, in)
	require.NoError(t, err)
	assert.Len(t, res.Project.Developers, 2)
	assert.Empty(t, res.Project.AdditionalCosts)

	in.Developers = []AssignmentInput{{DeveloperID: 3, Cost: dec("1000")}}
	res, err = svc.Update(actorCtx(), created.ID, in)
	require.NoError(t, err)
	require.Len(t, res.Project.Developers, 1)
	assert.Equal(t, uint(3), res.Project.Developers[0].DeveloperID)
	assert.Len(t, store.assignments, 1)
}

func TestProjectService_Update_CompletionRejectedIsNoOp(t *testing.T) {
	svc, store, sink := newProjectFixture(t)
	created := mustCreate(t, svc, baseInput())
	pay(t, svc, created.Payments[0].ID)

	in := baseInput()
	in.Name = "Renamed"
	in.Revenue = dec("12000")
	in.Developers = []AssignmentInput{}
	in.Status = models.ProjectStatusCompleted
	_, err := svc.Update(actorCtx(), created.ID, in)

	var cerr *finance.CompletionError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Reason, "2 of 3 milestones unpaid")
	assert.True(t, cerr.PaidAmount.Equal(dec("3000")))
	assert.True(t, cerr.TargetAmount.Equal(dec("12000")))

	stored, err := svc.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Website", stored.Name)
	assert.True(t, stored.Revenue.Equal(dec("10000")))
	assert.Equal(t, models.ProjectStatusPending, stored.Status)
	assert.Len(t, stored.Developers, 2)
	assert.Empty(t, store.events)
	assert.Empty(t, sink.changes)
}

func TestProjectService_Update_ManualCompletion(t *testing.T) {
	svc, store, sink := newProjectFixture(t)
	created := mustCreate(t, svc, baseInput())
	paidOn := day(2024, time.February, 1)
	for _, p := range created.Payments {
		p.Status = models.PaymentStatusPaid
		p.PaidDate = &paidOn
		store.payments[p.ID] = p
	}

	in := baseInput()
	in.Status = "Finished"
	res, err := svc.Update(actorCtx(), created.ID, in)

	require.NoError(t, err)
	require.NotNil(t, res.StatusChange)
	assert.Equal(t, finance.StatusChange{
		ProjectID: created.ID,
		OldStatus: models.ProjectStatusPending,
		NewStatus: models.ProjectStatusCompleted,
		Reason:    finance.ReasonManualUpdate,
	}, *res.StatusChange)
	assert.Equal(t, models.ProjectStatusCompleted, res.Project.Status)
	require.Len(t, store.events, 1)
	assert.Equal(t, models.ProjectStatusCompleted, store.events[0].NewStatus)
	require.Len(t, sink.changes, 1)
	assert.Equal(t, "Website", sink.names[0])
}

func TestProjectService_Update_IllegalTransition(t *testing.T) {
	svc, store, _ := newProjectFixture(t)
	in := baseInput()
	in.Status = models.ProjectStatusCancelled
	created := mustCreate(t, svc, in)

	in.Status = models.ProjectStatusOngoing
	_, err := svc.Update(actorCtx(), created.ID, in)

	var terr *statemachine.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, models.ProjectStatusCancelled, terr.From)
	assert.Empty(t, store.events)
}

func TestProjectService_Update_NotFound(t *testing.T) {
	svc, _, _ := newProjectFixture(t)

	_, err := svc.Update(actorCtx(), 404, baseInput())

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectService_UpdatePayment_CascadesToCompleted(t *testing.T) {
	svc, store, sink := newProjectFixture(t)
	created := mustCreate(t, svc, baseInput())

	first := pay(t, svc, created.Payments[0].ID)
	assert.Nil(t, first.StatusChange)
	assert.Equal(t, day(2024, time.March, 1), *first.Payment.PaidDate)

	second := pay(t, svc, created.Payments[1].ID)
	assert.Nil(t, second.StatusChange)
	assert.Equal(t, models.ProjectStatusPending, second.Project.Status)

	paidOn := day(2024, time.February, 15)
	last, err := svc.UpdatePayment(actorCtx(), created.Payments[2].ID, PaymentUpdate{
		Status:   strPtr("paid"),
		PaidDate: &paidOn,
	})
	require.NoError(t, err)

	require.NotNil(t, last.StatusChange)
	assert.Equal(t, models.ProjectStatusPending, last.StatusChange.OldStatus)
	assert.Equal(t, models.ProjectStatusCompleted, last.StatusChange.NewStatus)
	assert.Equal(t, finance.ReasonAllMilestonesPaid, last.StatusChange.Reason)
	assert.Equal(t, paidOn, *last.Payment.PaidDate)
	assert.Equal(t, models.ProjectStatusCompleted, store.projects[created.ID].Status)
	require.Len(t, store.events, 1)
	require.Len(t, sink.changes, 1)
	assert.Equal(t, *last.StatusChange, sink.changes[0])

	var actions []string
	for _, a := range store.audits {
		actions = append(actions, a.Action)
	}
	assert.Contains(t, actions, models.AuditActionPay)
}

func TestProjectService_UpdatePayment_ShortfallBlocksCascade(t *testing.T) {
	svc, store, sink := newProjectFixture(t)
	created := mustCreate(t, svc, baseInput())
	pay(t, svc, created.Payments[0].ID)

	in := baseInput()
	in.Revenue = dec("10500")
	_, err := svc.Update(actorCtx(), created.ID, in)
	require.NoError(t, err)

	pay(t, svc, created.Payments[1].ID)
	last := pay(t, svc, created.Payments[2].ID)

	assert.Nil(t, last.StatusChange)
	assert.Equal(t, models.ProjectStatusPending, store.projects[created.ID].Status)
	assert.Empty(t, sink.changes)
}

func TestProjectService_UpdatePayment_NoCascadeForCancelledProject(t *testing.T) {
	svc, store, _ := newProjectFixture(t)
	in := baseInput()
	in.Status = models.ProjectStatusCancelled
	created := mustCreate(t, svc, in)

	for _, p := range created.Payments {
		res := pay(t, svc, p.ID)
		assert.Nil(t, res.StatusChange)
	}
	assert.Equal(t, models.ProjectStatusCancelled, store.projects[created.ID].Status)
}

func TestProjectService_UpdatePayment_RevertReopensCompleted(t *testing.T) {
	svc, store, sink := newProjectFixture(t)
	created := mustCreate(t, svc, baseInput())
	for _, p := range created.Payments {
		pay(t, svc, p.ID)
	}
	require.Equal(t, models.ProjectStatusCompleted, store.projects[created.ID].Status)

	res, err := svc.UpdatePayment(actorCtx(), created.Payments[1].ID, PaymentUpdate{Status: strPtr("Unpaid")})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusUnpaid, res.Payment.Status)
	assert.Nil(t, res.Payment.PaidDate)
	require.NotNil(t, res.StatusChange)
	assert.Equal(t, models.ProjectStatusCompleted, res.StatusChange.OldStatus)
	assert.Equal(t, models.ProjectStatusOngoing, res.StatusChange.NewStatus)
	assert.Equal(t, finance.ReasonMilestoneReverted, res.StatusChange.Reason)
	assert.Equal(t, models.ProjectStatusOngoing, store.projects[created.ID].Status)
	assert.Len(t, sink.changes, 2)

	history, err := svc.StatusHistory(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.ProjectStatusCompleted, history[0].NewStatus)
	assert.Equal(t, models.ProjectStatusOngoing, history[1].NewStatus)
}

func TestProjectService_UpdatePayment_RollsBackWhenStatusEventFails(t *testing.T) {
	svc, store, sink := newProjectFixture(t)
	created := mustCreate(t, svc, baseInput())
	pay(t, svc, created.Payments[0].ID)
	pay(t, svc, created.Payments[1].ID)
	store.failOn["StatusEvent.Create"] = errBoom

	_, err := svc.UpdatePayment(actorCtx(), created.Payments[2].ID, PaymentUpdate{Status: strPtr("Paid")})

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, models.PaymentStatusUnpaid, store.payments[created.Payments[2].ID].Status)
	assert.Equal(t, models.ProjectStatusPending, store.projects[created.ID].Status)
	assert.Empty(t, sink.changes)
}

func TestProjectService_UpdatePayment_Validation(t *testing.T) {
	svc, _, _ := newProjectFixture(t)
	created := mustCreate(t, svc, baseInput())
	paidOn := day(2024, time.January, 5)

	_, err := svc.UpdatePayment(actorCtx(), created.Payments[0].ID, PaymentUpdate{Status: strPtr("Pending")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "status")

	_, err = svc.UpdatePayment(actorCtx(), created.Payments[0].ID, PaymentUpdate{PaidDate: &paidOn})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "paid_date")

	amount := dec("-1")
	_, err = svc.UpdatePayment(actorCtx(), created.Payments[0].ID, PaymentUpdate{Amount: &amount})
	require.ErrorAs(t, err, &verr)

	pay(t, svc, created.Payments[0].ID)
	amount = dec("2500")
	_, err = svc.UpdatePayment(actorCtx(), created.Payments[0].ID, PaymentUpdate{Amount: &amount})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "amount")

	_, err = svc.UpdatePayment(actorCtx(), 4040, PaymentUpdate{Status: strPtr("Paid")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectService_UpdatePayment_PatchesUnpaidMilestone(t *testing.T) {
	svc, store, _ := newProjectFixture(t)
	created := mustCreate(t, svc, baseInput())
	due := day(2024, time.January, 20)
	amount := dec("3500")

	res, err := svc.UpdatePayment(actorCtx(), created.Payments[1].ID, PaymentUpdate{DueDate: &due, Amount: &amount})

	require.NoError(t, err)
	assert.Nil(t, res.StatusChange)
	stored := store.payments[created.Payments[1].ID]
	assert.Equal(t, due, stored.DueDate)
	assert.True(t, stored.Amount.Equal(amount))
	assert.Equal(t, models.PaymentStatusUnpaid, stored.Status)
}

func TestProjectService_UpdateDeveloperPayout(t *testing.T) {
	svc, _, _ := newProjectFixture(t)
	created := mustCreate(t, svc, baseInput())
	anaID := created.Developers[0].ID

	before, err := svc.Financials(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, before.DeveloperPaid.Equal(dec("800")), before.DeveloperPaid.String())

	dev, err := svc.UpdateDeveloperPayout(actorCtx(), created.ID, anaID, PayoutUpdate{IsFinalPaid: boolPtr(true)})
	require.NoError(t, err)
	assert.False(t, dev.IsAdvancePaid)
	assert.True(t, dev.IsFinalPaid)

	after, err := svc.Financials(context.Background(), created.ID)
	require.NoError(t, err)
	// 800 advance for Bo plus 1800 final for Ana
	assert.True(t, after.DeveloperPaid.Equal(dec("2600")), after.DeveloperPaid.String())
	assert.True(t, after.DeveloperOutstanding.Equal(dec("2400")))

	_, err = svc.UpdateDeveloperPayout(actorCtx(), created.ID, 9999, PayoutUpdate{IsAdvancePaid: boolPtr(true)})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateDeveloperPayout(actorCtx(), created.ID, anaID, PayoutUpdate{})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestProjectService_UpdateDeveloperPayout_RunsInTransaction(t *testing.T) {
	svc, store, _ := newProjectFixture(t)
	created := mustCreate(t, svc, baseInput())
	anaID := created.Developers[0].ID

	before := store.transactions
	_, err := svc.UpdateDeveloperPayout(actorCtx(), created.ID, anaID, PayoutUpdate{IsAdvancePaid: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, before+1, store.transactions)
	assert.True(t, store.assignments[anaID].IsAdvancePaid)

	store.failOn["Project.UpdateDeveloper"] = errBoom
	_, err = svc.UpdateDeveloperPayout(actorCtx(), created.ID, anaID, PayoutUpdate{IsAdvancePaid: boolPtr(false), IsFinalPaid: boolPtr(true)})
	require.ErrorIs(t, err, errBoom)
	assert.True(t, store.assignments[anaID].IsAdvancePaid)
	assert.False(t, store.assignments[anaID].IsFinalPaid)

	_, err = svc.UpdateDeveloperPayout(actorCtx(), 9999, anaID, PayoutUpdate{IsFinalPaid: boolPtr(true)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectService_Financials(t *testing.T) {
	svc, _, _ := newProjectFixture(t)
	created := mustCreate(t, svc, baseInput())
	pay(t, svc, created.Payments[0].ID)

	fin, err := svc.Financials(context.Background(), created.ID)
	require.NoError(t, err)

	assert.True(t, fin.Revenue.Equal(dec("10000")))
	assert.True(t, fin.CollectedRevenue.Equal(dec("3000")))
	assert.True(t, fin.OutstandingRevenue.Equal(dec("7000")))
	assert.True(t, fin.DeveloperContracted.Equal(dec("5000")))
	assert.True(t, fin.AdditionalCosts.Equal(dec("500")))
	assert.True(t, fin.EstimatedProfit.Equal(dec("4500")))
	assert.True(t, fin.RealizedProfit.Equal(dec("8700")))
	assert.Equal(t, "45.00", fin.EstimatedMargin.StringFixed(2))
	assert.Equal(t, "87.00", fin.RealizedMargin.StringFixed(2))
	assert.Equal(t, 1, fin.PaidMilestones)
	assert.Equal(t, "Acme", fin.ClientName)
}

func TestProjectService_Delete(t *testing.T) {
	svc, store, _ := newProjectFixture(t)
	created := mustCreate(t, svc, baseInput())

	require.NoError(t, svc.Delete(actorCtx(), created.ID))

	payments, assignments, costs := store.projectRows(created.ID)
	assert.Zero(t, payments+assignments+costs)
	_, err := svc.FindByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(actorCtx(), created.ID), ErrNotFound)
}

func TestProjectService_List_NormalizesStatusFilter(t *testing.T) {
	svc, _, _ := newProjectFixture(t)
	in := baseInput()
	in.Status = "Ongoing"
	mustCreate(t, svc, in)
	mustCreate(t, svc, baseInput())

	query := newQuery(map[string]string{"status": "active"})
	projects, total, err := svc.List(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, models.ProjectStatusOngoing, projects[0].Status)

	_, _, err = svc.List(context.Background(), newQuery(map[string]string{"status": "someday"}))
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestProjectService_AvailableStatuses(t *testing.T) {
	svc, _, _ := newProjectFixture(t)
	created := mustCreate(t, svc, baseInput())

	statuses := svc.AvailableStatuses(created)

	assert.Contains(t, statuses, models.ProjectStatusApproved)
	assert.Contains(t, statuses, models.ProjectStatusCompleted)
	assert.NotContains(t, statuses, models.ProjectStatusPending)
}
